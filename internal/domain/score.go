package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScoreState is a user's cumulative XP and derived level (score_states).
type ScoreState struct {
	UserID    uuid.UUID `json:"user_id"`
	Score     float64   `json:"score"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewScoreState is the state of a user who has never earned XP.
func NewScoreState(userID uuid.UUID) *ScoreState {
	return &ScoreState{UserID: userID}
}

// XPEntryType distinguishes awards from revocations in xp_entries.
type XPEntryType string

const (
	XPEntryAward  XPEntryType = "award"
	XPEntryRevoke XPEntryType = "revoke"
)

// ActivityKind is the source of an XP change.
type ActivityKind string

const (
	ActivityWorkout ActivityKind = "workout"
	ActivityMeal    ActivityKind = "meal"
	ActivityManual  ActivityKind = "manual"
)

// XPEntry is an append-only audit row written for every score mutation.
type XPEntry struct {
	ID         int64        `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Type       XPEntryType  `json:"type"`
	Source     ActivityKind `json:"source"`
	ActivityID *uuid.UUID   `json:"activity_id,omitempty"`
	Amount     float64      `json:"amount"`
	ScoreAfter float64      `json:"score_after"`
	LevelAfter int          `json:"level_after"`
	CreatedAt  time.Time    `json:"created_at"`
}

// XPChangeParams describes one ledger mutation.
type XPChangeParams struct {
	UserID     uuid.UUID
	Type       XPEntryType
	Source     ActivityKind
	ActivityID *uuid.UUID
	Amount     float64
}

// XPChangeResult is returned by the ledger after a mutation.
type XPChangeResult struct {
	Entry      *XPEntry      `json:"entry"`
	Before     ScoreState    `json:"before"`
	After      ScoreState    `json:"after"`
	LeveledUp  bool          `json:"leveled_up"`
	Idempotent bool          `json:"idempotent"`
	Events     []OutboxDraft `json:"-"`
}
