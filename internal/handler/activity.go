package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xpump/platform/internal/auth"
	"github.com/xpump/platform/internal/domain"
)

// ActivityService is the ingestion surface the handler needs.
type ActivityService interface {
	LogWorkout(ctx context.Context, params domain.WorkoutCheckinParams) (*domain.ActivityResult, error)
	LogMeal(ctx context.Context, params domain.MealLogParams) (*domain.ActivityResult, error)
	DeleteWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*domain.XPChangeResult, error)
	DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) (*domain.XPChangeResult, error)
}

// ActivityHandler handles workout and meal endpoints.
type ActivityHandler struct {
	svc ActivityService
}

func NewActivityHandler(svc ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

type workoutRequest struct {
	CheckedInAt     *time.Time `json:"checked_in_at"`
	DurationSeconds int        `json:"duration_seconds"`
	Comments        string     `json:"comments"`
}

// LogWorkout handles POST /workouts. A missing checked_in_at means now.
func (h *ActivityHandler) LogWorkout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req workoutRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	at := time.Now()
	if req.CheckedInAt != nil {
		at = *req.CheckedInAt
	}

	res, err := h.svc.LogWorkout(r.Context(), domain.WorkoutCheckinParams{
		UserID:          userID,
		CheckedInAt:     at,
		DurationSeconds: req.DurationSeconds,
		Comments:        req.Comments,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, res)
}

type mealRequest struct {
	MealConfigID uuid.UUID  `json:"meal_config_id"`
	MealTime     *time.Time `json:"meal_time"`
	Comments     string     `json:"comments"`
}

// LogMeal handles POST /meals.
func (h *ActivityHandler) LogMeal(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req mealRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	at := time.Now()
	if req.MealTime != nil {
		at = *req.MealTime
	}

	res, err := h.svc.LogMeal(r.Context(), domain.MealLogParams{
		UserID:   userID,
		SlotID:   req.MealConfigID,
		MealTime: at,
		Comments: req.Comments,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, res)
}

// DeleteWorkout handles DELETE /workouts/{id}.
func (h *ActivityHandler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.svc.DeleteWorkout)
}

// DeleteMeal handles DELETE /meals/{id}.
func (h *ActivityHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.svc.DeleteMeal)
}

func (h *ActivityHandler) delete(w http.ResponseWriter, r *http.Request, del func(context.Context, uuid.UUID, uuid.UUID) (*domain.XPChangeResult, error)) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	res, err := del(r.Context(), userID, id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"revoked": res.Entry.Amount,
		"score":   res.After.Score,
		"level":   res.After.Level,
	})
}

// userIDFromContext extracts the authenticated user id.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	id := auth.SubjectFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	return id, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + name)
	}
	return id, nil
}
