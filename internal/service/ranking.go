package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/ranking"
	"github.com/xpump/platform/internal/repository"
)

// Standing is a member's leaderboard position plus the gap to the leader.
type Standing struct {
	domain.RankedMember
	PointsToFirstPlace float64 `json:"points_to_first_place"`
}

// RankingService serves group leaderboards.
type RankingService struct {
	db      repository.DBTX
	ranking *ranking.Service
}

func NewRankingService(db repository.DBTX, r *ranking.Service) *RankingService {
	return &RankingService{db: db, ranking: r}
}

// Leaderboard returns the accepted members of the group in rank order.
func (s *RankingService) Leaderboard(ctx context.Context, groupID uuid.UUID) ([]domain.RankedMember, error) {
	ranked, err := s.ranking.Rank(ctx, s.db, groupID)
	if err != nil {
		return nil, internalUnlessApp("rank group", err)
	}
	return ranked, nil
}

// Standing returns the user's position in the group.
func (s *RankingService) Standing(ctx context.Context, groupID, userID uuid.UUID) (*Standing, error) {
	pos, err := s.ranking.UserPosition(ctx, s.db, groupID, userID)
	if err != nil {
		return nil, internalUnlessApp("rank group", err)
	}
	gap, err := s.ranking.PointsToFirstPlace(ctx, s.db, groupID, userID)
	if err != nil {
		return nil, internalUnlessApp("points to first place", err)
	}
	return &Standing{RankedMember: *pos, PointsToFirstPlace: gap}, nil
}
