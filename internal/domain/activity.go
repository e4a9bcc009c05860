package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workout is a persisted check-in. BasePoints is the XP it awarded.
type Workout struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	CheckedInAt     time.Time `json:"checked_in_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Comments        string    `json:"comments,omitempty"`
	BasePoints      float64   `json:"base_points"`
	CreatedAt       time.Time `json:"created_at"`
}

// Meal is a persisted meal log. BasePoints is the XP it awarded.
type Meal struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	SlotID     uuid.UUID `json:"meal_config_id"`
	MealTime   time.Time `json:"meal_time"`
	Comments   string    `json:"comments,omitempty"`
	BasePoints float64   `json:"base_points"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkoutCheckinParams is the input of the workout ingestion flow.
type WorkoutCheckinParams struct {
	UserID          uuid.UUID
	CheckedInAt     time.Time
	DurationSeconds int
	Comments        string
}

// MealLogParams is the input of the meal ingestion flow.
type MealLogParams struct {
	UserID   uuid.UUID
	SlotID   uuid.UUID
	MealTime time.Time
	Comments string
}

// ActivityResult summarises one ingested activity.
type ActivityResult struct {
	ActivityID    uuid.UUID    `json:"activity_id"`
	Kind          ActivityKind `json:"kind"`
	Awarded       float64      `json:"awarded"`
	Score         float64      `json:"score"`
	Level         int          `json:"level"`
	LeveledUp     bool         `json:"leveled_up"`
	CurrentStreak int          `json:"current_streak"`
	LongestStreak int          `json:"longest_streak"`
	DailyCapped   bool         `json:"daily_capped,omitempty"`
}

// Progress is the read model for a user's gamification state.
type Progress struct {
	UserID        uuid.UUID      `json:"user_id"`
	Score         float64        `json:"score"`
	Level         int            `json:"level"`
	XPToNextLevel int            `json:"xp_to_next_level"`
	ProgressPct   float64        `json:"progress_pct"`
	WorkoutStreak *WorkoutStreak `json:"workout_streak,omitempty"`
	MealStreak    *MealStreak    `json:"meal_streak,omitempty"`
}
