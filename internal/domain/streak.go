package domain

import (
	"time"

	"github.com/google/uuid"
)

// StreakKind identifies which streak a state belongs to.
type StreakKind string

const (
	StreakWorkout StreakKind = "workout"
	StreakMeal    StreakKind = "meal"
)

// WorkoutStreak counts check-ins while the user keeps a weekly cadence.
// Frequency is the target number of workouts per week.
type WorkoutStreak struct {
	UserID         uuid.UUID  `json:"user_id"`
	Current        int        `json:"current_streak"`
	Longest        int        `json:"longest_streak"`
	LastActivityAt *time.Time `json:"last_workout_at,omitempty"`
	Frequency      int        `json:"frequency"`
}

// NewWorkoutStreak returns the state created on a user's first check-in.
func NewWorkoutStreak(userID uuid.UUID, frequency int) *WorkoutStreak {
	return &WorkoutStreak{UserID: userID, Frequency: frequency}
}

// MealStreak counts consecutive meal slots. LastSlotOrder is the slot of the last logged meal.
type MealStreak struct {
	UserID         uuid.UUID  `json:"user_id"`
	Current        int        `json:"current_streak"`
	Longest        int        `json:"longest_streak"`
	LastActivityAt *time.Time `json:"last_meal_at,omitempty"`
	LastSlotOrder  *int       `json:"last_slot_order,omitempty"`
}

// NewMealStreak returns the state created on a user's first meal log.
func NewMealStreak(userID uuid.UUID) *MealStreak {
	return &MealStreak{UserID: userID}
}

// MealSlot is one configured meal of the day (meal_configs). Order is 1-based.
type MealSlot struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Order         int       `json:"order"`
	IntervalStart string    `json:"interval_start,omitempty"` // "07:00"
	IntervalEnd   string    `json:"interval_end,omitempty"`
}
