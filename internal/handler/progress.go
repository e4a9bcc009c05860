package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
)

// ProgressService returns a user's progress read model.
type ProgressService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Progress, error)
}

// StreakService updates streak preferences.
type StreakService interface {
	SetWorkoutFrequency(ctx context.Context, userID uuid.UUID, frequency int) (*domain.WorkoutStreak, error)
}

// HistoryService lists a user's xp entries.
type HistoryService interface {
	History(ctx context.Context, userID uuid.UUID) ([]domain.XPEntry, error)
}

// ProgressHandler handles the /me endpoints.
type ProgressHandler struct {
	progress ProgressService
	streaks  StreakService
	history  HistoryService
}

func NewProgressHandler(progress ProgressService, streaks StreakService, history HistoryService) *ProgressHandler {
	return &ProgressHandler{progress: progress, streaks: streaks, history: history}
}

// GetMine handles GET /me/progress.
func (h *ProgressHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	p, err := h.progress.Get(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// GetHistory handles GET /me/xp-entries.
func (h *ProgressHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	entries, err := h.history.History(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.XPEntry{}
	}
	RespondJSON(w, http.StatusOK, entries)
}

// SetWorkoutFrequency handles PUT /me/streaks/workout/frequency.
func (h *ProgressHandler) SetWorkoutFrequency(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req struct {
		Frequency int `json:"frequency"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	st, err := h.streaks.SetWorkoutFrequency(r.Context(), userID, req.Frequency)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, st)
}
