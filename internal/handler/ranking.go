package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/service"
)

// RankingService serves group leaderboards.
type RankingService interface {
	Leaderboard(ctx context.Context, groupID uuid.UUID) ([]domain.RankedMember, error)
	Standing(ctx context.Context, groupID, userID uuid.UUID) (*service.Standing, error)
}

// RankingHandler handles group ranking endpoints.
type RankingHandler struct {
	svc RankingService
}

func NewRankingHandler(svc RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

// Leaderboard handles GET /groups/{id}/ranking.
func (h *RankingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	ranked, err := h.svc.Leaderboard(r.Context(), groupID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if ranked == nil {
		ranked = []domain.RankedMember{}
	}
	RespondJSON(w, http.StatusOK, ranked)
}

// MyStanding handles GET /groups/{id}/ranking/me.
func (h *RankingHandler) MyStanding(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	groupID, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	st, err := h.svc.Standing(r.Context(), groupID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, st)
}
