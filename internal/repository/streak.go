package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

type streakRepo struct{}

// NewStreakRepository returns a pgx-backed StreakRepository.
func NewStreakRepository() StreakRepository {
	return &streakRepo{}
}

func (r *streakRepo) FindWorkout(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.WorkoutStreak, error) {
	s := &domain.WorkoutStreak{}
	err := db.QueryRow(ctx, `
		SELECT user_id, current_streak, longest_streak, last_activity_at, frequency
		FROM workout_streaks WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.Current, &s.Longest, &s.LastActivityAt, &s.Frequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workout streak: %w", err)
	}
	return s, nil
}

func (r *streakRepo) SaveWorkout(ctx context.Context, db DBTX, s domain.WorkoutStreak) error {
	_, err := db.Exec(ctx, `
		INSERT INTO workout_streaks (user_id, current_streak, longest_streak, last_activity_at, frequency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_activity_at = EXCLUDED.last_activity_at,
			frequency = EXCLUDED.frequency,
			updated_at = now()`,
		s.UserID, s.Current, s.Longest, s.LastActivityAt, s.Frequency)
	if err != nil {
		return fmt.Errorf("save workout streak: %w", err)
	}
	return nil
}

func (r *streakRepo) FindMeal(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.MealStreak, error) {
	s := &domain.MealStreak{}
	err := db.QueryRow(ctx, `
		SELECT user_id, current_streak, longest_streak, last_activity_at, last_slot_order
		FROM meal_streaks WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.Current, &s.Longest, &s.LastActivityAt, &s.LastSlotOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find meal streak: %w", err)
	}
	return s, nil
}

func (r *streakRepo) SaveMeal(ctx context.Context, db DBTX, s domain.MealStreak) error {
	_, err := db.Exec(ctx, `
		INSERT INTO meal_streaks (user_id, current_streak, longest_streak, last_activity_at, last_slot_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_activity_at = EXCLUDED.last_activity_at,
			last_slot_order = EXCLUDED.last_slot_order,
			updated_at = now()`,
		s.UserID, s.Current, s.Longest, s.LastActivityAt, s.LastSlotOrder)
	if err != nil {
		return fmt.Errorf("save meal streak: %w", err)
	}
	return nil
}

func (r *streakRepo) ListWorkoutUserIDs(ctx context.Context, db DBTX) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `
		SELECT user_id FROM workout_streaks
		WHERE current_streak > 0
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list workout streaks: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect workout streak users: %w", err)
	}
	return ids, nil
}
