// Package ranking orders group members by score.
package ranking

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

// Rank sorts members by score descending, breaking ties by user id ascending,
// and assigns 1-based positions. The input slice is not modified.
func Rank(members []domain.MemberScore) []domain.RankedMember {
	sorted := make([]domain.MemberScore, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return bytes.Compare(sorted[i].UserID[:], sorted[j].UserID[:]) < 0
	})

	ranked := make([]domain.RankedMember, len(sorted))
	for i, m := range sorted {
		ranked[i] = domain.RankedMember{Position: i + 1, MemberScore: m}
	}
	return ranked
}

// Service answers ranking queries against stored memberships and scores.
type Service struct {
	groups repository.GroupRepository
	scores repository.ScoreRepository
}

// NewService creates a ranking service.
func NewService(groups repository.GroupRepository, scores repository.ScoreRepository) *Service {
	return &Service{groups: groups, scores: scores}
}

// MemberScores returns the accepted members of the group with their scores.
// Members who never earned XP score 0.
func (s *Service) MemberScores(ctx context.Context, db repository.DBTX, groupID uuid.UUID) ([]domain.MemberScore, error) {
	group, err := s.groups.FindByID(ctx, db, groupID)
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	if group == nil {
		return nil, domain.ErrNotFound("group", groupID.String())
	}

	memberships, err := s.groups.ListMembers(ctx, db, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	userIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		if m.Pending {
			continue
		}
		userIDs = append(userIDs, m.UserID)
	}

	states, err := s.scores.FindByUserIDs(ctx, db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load member scores: %w", err)
	}

	out := make([]domain.MemberScore, 0, len(userIDs))
	for _, id := range userIDs {
		st := states[id]
		out = append(out, domain.MemberScore{UserID: id, Score: st.Score, Level: st.Level})
	}
	return out, nil
}

// Rank returns the full leaderboard of the group.
func (s *Service) Rank(ctx context.Context, db repository.DBTX, groupID uuid.UUID) ([]domain.RankedMember, error) {
	members, err := s.MemberScores(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	return Rank(members), nil
}

// UserPosition returns the user's ranked entry in the group.
func (s *Service) UserPosition(ctx context.Context, db repository.DBTX, groupID, userID uuid.UUID) (*domain.RankedMember, error) {
	ranked, err := s.Rank(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if ranked[i].UserID == userID {
			return &ranked[i], nil
		}
	}
	return nil, domain.ErrNotFound("group member", userID.String())
}

// PointsFirstPlace returns the leader's score, or 0 for a group without accepted members.
func (s *Service) PointsFirstPlace(ctx context.Context, db repository.DBTX, groupID uuid.UUID) (float64, error) {
	members, err := s.MemberScores(ctx, db, groupID)
	if err != nil {
		return 0, err
	}
	return leaderScore(members), nil
}

// PointsToFirstPlace returns how far the user trails the leader. The leader gets 0.
func (s *Service) PointsToFirstPlace(ctx context.Context, db repository.DBTX, groupID, userID uuid.UUID) (float64, error) {
	members, err := s.MemberScores(ctx, db, groupID)
	if err != nil {
		return 0, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return leaderScore(members) - m.Score, nil
		}
	}
	return 0, domain.ErrNotFound("group member", userID.String())
}

func leaderScore(members []domain.MemberScore) float64 {
	best := 0.0
	for _, m := range members {
		if m.Score > best {
			best = m.Score
		}
	}
	return best
}
