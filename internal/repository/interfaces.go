package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xpump/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// SettingsRepository provides access to the settings table.
type SettingsRepository interface {
	// FindActive returns the single active settings row, or nil when none exists.
	FindActive(ctx context.Context, db DBTX) (*domain.Settings, error)

	// Activate deactivates the current row and inserts s as the new active one.
	// Must run inside a transaction. Returns the stored row with ID and Version set.
	Activate(ctx context.Context, tx pgx.Tx, s *domain.Settings) (*domain.Settings, error)
}

// ScoreRepository provides access to score_states.
type ScoreRepository interface {
	// EnsureAndLock creates the row when missing and locks it (SELECT FOR UPDATE).
	EnsureAndLock(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.ScoreState, error)

	// Find returns the score row, or nil when the user has never earned XP.
	Find(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.ScoreState, error)

	// Update persists score and level.
	Update(ctx context.Context, db DBTX, state domain.ScoreState) error

	// FindByUserIDs returns existing rows keyed by user.
	FindByUserIDs(ctx context.Context, db DBTX, userIDs []uuid.UUID) (map[uuid.UUID]domain.ScoreState, error)
}

// StreakRepository provides access to workout_streaks and meal_streaks.
type StreakRepository interface {
	// FindWorkout returns the workout streak, or nil when none exists.
	FindWorkout(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.WorkoutStreak, error)

	// SaveWorkout upserts the workout streak.
	SaveWorkout(ctx context.Context, db DBTX, s domain.WorkoutStreak) error

	// FindMeal returns the meal streak, or nil when none exists.
	FindMeal(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.MealStreak, error)

	// SaveMeal upserts the meal streak.
	SaveMeal(ctx context.Context, db DBTX, s domain.MealStreak) error

	// ListWorkoutUserIDs returns users with a running workout streak.
	ListWorkoutUserIDs(ctx context.Context, db DBTX) ([]uuid.UUID, error)
}

// SeasonRepository provides access to seasons.
type SeasonRepository interface {
	// FindActiveForClient returns every season of the client covering day.
	FindActiveForClient(ctx context.Context, db DBTX, clientID uuid.UUID, day time.Time) ([]domain.Season, error)
}

// GroupRepository provides access to groups and group_members.
type GroupRepository interface {
	// FindByID returns a group, or nil if not found.
	FindByID(ctx context.Context, db DBTX, groupID uuid.UUID) (*domain.Group, error)

	// ListMembers returns every membership of the group, pending ones included.
	ListMembers(ctx context.Context, db DBTX, groupID uuid.UUID) ([]domain.GroupMembership, error)

	// FindMainGroupsForUser returns the main groups the user is an accepted member of.
	FindMainGroupsForUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Group, error)
}

// ProfileRepository provides read access to profiles.
type ProfileRepository interface {
	// FindByUserID returns a profile, or nil if not found.
	FindByUserID(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Profile, error)
}

// WorkoutRepository provides access to workouts.
type WorkoutRepository interface {
	Insert(ctx context.Context, db DBTX, w *domain.Workout) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Workout, error)
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// SumBasePoints totals the XP awarded to the user's workouts in [from, to).
	SumBasePoints(ctx context.Context, db DBTX, userID uuid.UUID, from, to time.Time) (float64, error)

	// CountBetween counts the user's workouts in [from, to).
	CountBetween(ctx context.Context, db DBTX, userID uuid.UUID, from, to time.Time) (int, error)
}

// MealRepository provides access to meals.
type MealRepository interface {
	Insert(ctx context.Context, db DBTX, m *domain.Meal) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Meal, error)
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// ExistsForSlot reports whether the user already logged slotID in [from, to).
	ExistsForSlot(ctx context.Context, db DBTX, userID, slotID uuid.UUID, from, to time.Time) (bool, error)
}

// MealConfigRepository provides read access to meal_configs.
type MealConfigRepository interface {
	// ListSlots returns all slots ordered by slot_order.
	ListSlots(ctx context.Context, db DBTX) ([]domain.MealSlot, error)
}

// XPEntryRepository provides access to the append-only xp_entries table.
type XPEntryRepository interface {
	// FindByActivity checks the idempotency index for a previous mutation.
	FindByActivity(ctx context.Context, db DBTX, activityID uuid.UUID, entryType domain.XPEntryType) (*domain.XPEntry, error)

	// Insert writes an entry with the post-mutation snapshot.
	Insert(ctx context.Context, db DBTX, params domain.XPChangeParams, after domain.ScoreState) (*domain.XPEntry, error)

	// ListByUser returns the user's entries oldest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.XPEntry, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the score change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished stamps publishedAt on the given rows.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
