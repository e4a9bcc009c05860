package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

const settingsColumns = `id, version, xp_base, exponential_factor, max_level,
	workout_minutes_base, workout_xp, max_workout_xp_per_day, meal_xp,
	workout_streak_multipliers, meal_streak_multipliers,
	months_to_end_season, season_bonus_percentage, percentage_from_first_position, created_at`

type settingsRepo struct{}

// NewSettingsRepository returns a pgx-backed SettingsRepository.
func NewSettingsRepository() SettingsRepository {
	return &settingsRepo{}
}

func (r *settingsRepo) FindActive(ctx context.Context, db DBTX) (*domain.Settings, error) {
	row := db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE active`)
	return scanSettings(row)
}

func (r *settingsRepo) Activate(ctx context.Context, tx pgx.Tx, s *domain.Settings) (*domain.Settings, error) {
	workoutTiers, err := json.Marshal(s.WorkoutStreakMultipliers)
	if err != nil {
		return nil, fmt.Errorf("encode workout tiers: %w", err)
	}
	mealTiers, err := json.Marshal(s.MealStreakMultipliers)
	if err != nil {
		return nil, fmt.Errorf("encode meal tiers: %w", err)
	}

	var version int64
	err = tx.QueryRow(ctx, `
		UPDATE settings SET active = false WHERE active
		RETURNING version`).Scan(&version)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("deactivate settings: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO settings (
			version, active, xp_base, exponential_factor, max_level,
			workout_minutes_base, workout_xp, max_workout_xp_per_day, meal_xp,
			workout_streak_multipliers, meal_streak_multipliers,
			months_to_end_season, season_bonus_percentage, percentage_from_first_position)
		VALUES ($1, true, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+settingsColumns,
		version+1,
		s.XPBase, s.ExponentialFactor, s.MaxLevel,
		s.WorkoutMinutesBase, s.WorkoutXP, s.MaxWorkoutXPPerDay, s.MealXP,
		workoutTiers, mealTiers,
		s.MonthsToEndSeason, s.SeasonBonusPercentage, s.PercentageFromFirstPosition,
	)
	stored, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("insert settings: %w", err)
	}
	return stored, nil
}

func scanSettings(row pgx.Row) (*domain.Settings, error) {
	var s domain.Settings
	var workoutTiers, mealTiers []byte
	err := row.Scan(
		&s.ID, &s.Version, &s.XPBase, &s.ExponentialFactor, &s.MaxLevel,
		&s.WorkoutMinutesBase, &s.WorkoutXP, &s.MaxWorkoutXPPerDay, &s.MealXP,
		&workoutTiers, &mealTiers,
		&s.MonthsToEndSeason, &s.SeasonBonusPercentage, &s.PercentageFromFirstPosition, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	if err := json.Unmarshal(workoutTiers, &s.WorkoutStreakMultipliers); err != nil {
		return nil, fmt.Errorf("decode workout_streak_multipliers: %w", err)
	}
	if err := json.Unmarshal(mealTiers, &s.MealStreakMultipliers); err != nil {
		return nil, fmt.Errorf("decode meal_streak_multipliers: %w", err)
	}
	return &s, nil
}
