package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra"
)

type workoutRepo struct{}

// NewWorkoutRepository returns a pgx-backed WorkoutRepository.
func NewWorkoutRepository() WorkoutRepository {
	return &workoutRepo{}
}

func (r *workoutRepo) Insert(ctx context.Context, db DBTX, w *domain.Workout) error {
	err := db.QueryRow(ctx, `
		INSERT INTO workouts (id, user_id, checked_in_at, duration_seconds, comments, base_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		w.ID, w.UserID, w.CheckedInAt, w.DurationSeconds, w.Comments, infra.Float64ToNumeric(w.BasePoints),
	).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

func (r *workoutRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Workout, error) {
	var w domain.Workout
	var points pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT id, user_id, checked_in_at, duration_seconds, comments, base_points, created_at
		FROM workouts WHERE id = $1`, id,
	).Scan(&w.ID, &w.UserID, &w.CheckedInAt, &w.DurationSeconds, &w.Comments, &points, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workout: %w", err)
	}
	if w.BasePoints, err = infra.NumericToFloat64(points); err != nil {
		return nil, fmt.Errorf("convert base_points: %w", err)
	}
	return &w, nil
}

func (r *workoutRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	if _, err := db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

func (r *workoutRepo) SumBasePoints(ctx context.Context, db DBTX, userID uuid.UUID, from, to time.Time) (float64, error) {
	var total pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(base_points), 0)
		FROM workouts
		WHERE user_id = $1 AND checked_in_at >= $2 AND checked_in_at < $3`,
		userID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum workout points: %w", err)
	}
	return infra.NumericToFloat64(total)
}

func (r *workoutRepo) CountBetween(ctx context.Context, db DBTX, userID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := db.QueryRow(ctx, `
		SELECT count(*) FROM workouts
		WHERE user_id = $1 AND checked_in_at >= $2 AND checked_in_at < $3`,
		userID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return n, nil
}

type mealRepo struct{}

// NewMealRepository returns a pgx-backed MealRepository.
func NewMealRepository() MealRepository {
	return &mealRepo{}
}

func (r *mealRepo) Insert(ctx context.Context, db DBTX, m *domain.Meal) error {
	err := db.QueryRow(ctx, `
		INSERT INTO meals (id, user_id, meal_config_id, meal_time, comments, base_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.UserID, m.SlotID, m.MealTime, m.Comments, infra.Float64ToNumeric(m.BasePoints),
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert meal: %w", err)
	}
	return nil
}

func (r *mealRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Meal, error) {
	var m domain.Meal
	var points pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT id, user_id, meal_config_id, meal_time, comments, base_points, created_at
		FROM meals WHERE id = $1`, id,
	).Scan(&m.ID, &m.UserID, &m.SlotID, &m.MealTime, &m.Comments, &points, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find meal: %w", err)
	}
	if m.BasePoints, err = infra.NumericToFloat64(points); err != nil {
		return nil, fmt.Errorf("convert base_points: %w", err)
	}
	return &m, nil
}

func (r *mealRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	if _, err := db.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

func (r *mealRepo) ExistsForSlot(ctx context.Context, db DBTX, userID, slotID uuid.UUID, from, to time.Time) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM meals
			WHERE user_id = $1 AND meal_config_id = $2 AND meal_time >= $3 AND meal_time < $4)`,
		userID, slotID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check meal slot: %w", err)
	}
	return exists, nil
}

type mealConfigRepo struct{}

// NewMealConfigRepository returns a pgx-backed MealConfigRepository.
func NewMealConfigRepository() MealConfigRepository {
	return &mealConfigRepo{}
}

func (r *mealConfigRepo) ListSlots(ctx context.Context, db DBTX) ([]domain.MealSlot, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, slot_order, interval_start, interval_end
		FROM meal_configs ORDER BY slot_order`)
	if err != nil {
		return nil, fmt.Errorf("list meal slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MealSlot, error) {
		var s domain.MealSlot
		err := row.Scan(&s.ID, &s.Name, &s.Order, &s.IntervalStart, &s.IntervalEnd)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan meal slot: %w", err)
	}
	return slots, nil
}
