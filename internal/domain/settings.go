package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// MultiplierTier maps an inclusive streak range to a reward multiplier.
// A nil Max makes the tier open-ended.
type MultiplierTier struct {
	Min        int     `json:"min" toml:"min"`
	Max        *int    `json:"max,omitempty" toml:"max,omitempty"`
	Multiplier float64 `json:"multiplier" toml:"multiplier"`
}

// Contains reports whether n falls inside [Min, Max].
func (t MultiplierTier) Contains(n int) bool {
	if n < t.Min {
		return false
	}
	return t.Max == nil || n <= *t.Max
}

// TierTable is an ordered set of multiplier tiers.
type TierTable []MultiplierTier

// Resolve returns the multiplier for count n. Among all tiers containing n the one
// with the highest Min wins; when nothing matches the multiplier is 1.0.
func (tt TierTable) Resolve(n int) float64 {
	best := -1
	for i, tier := range tt {
		if !tier.Contains(n) {
			continue
		}
		if best == -1 || tier.Min > tt[best].Min {
			best = i
		}
	}
	if best == -1 {
		return 1.0
	}
	return tt[best].Multiplier
}

// Validate checks that the tiers cover 0..∞ without gaps or overlaps.
func (tt TierTable) Validate() error {
	if len(tt) == 0 {
		return fmt.Errorf("tier table is empty")
	}

	sorted := make(TierTable, len(tt))
	copy(sorted, tt)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if sorted[0].Min != 0 {
		return fmt.Errorf("tier table must start at 0, starts at %d", sorted[0].Min)
	}

	for i, tier := range sorted {
		if math.IsNaN(tier.Multiplier) || math.IsInf(tier.Multiplier, 0) || tier.Multiplier < 0 {
			return fmt.Errorf("tier starting at %d has invalid multiplier %v", tier.Min, tier.Multiplier)
		}
		if tier.Max != nil && *tier.Max < tier.Min {
			return fmt.Errorf("tier starting at %d ends before it starts (%d)", tier.Min, *tier.Max)
		}

		last := i == len(sorted)-1
		if tier.Max == nil {
			if !last {
				return fmt.Errorf("open-ended tier starting at %d overlaps tier starting at %d", tier.Min, sorted[i+1].Min)
			}
			continue
		}
		if last {
			return fmt.Errorf("tier table must end with an open-ended tier, last tier ends at %d", *tier.Max)
		}

		next := sorted[i+1]
		switch {
		case next.Min <= *tier.Max:
			return fmt.Errorf("tier %d-%d overlaps tier starting at %d", tier.Min, *tier.Max, next.Min)
		case next.Min > *tier.Max+1:
			return fmt.Errorf("gap between %d and %d", *tier.Max, next.Min)
		}
	}
	return nil
}

// Settings is the process-wide gamification configuration. A loaded value is
// treated as immutable; reloads replace the whole snapshot.
type Settings struct {
	ID      int64 `json:"id" toml:"-"`
	Version int64 `json:"version" toml:"-"`

	XPBase            float64 `json:"xp_base" toml:"xp_base"`
	ExponentialFactor float64 `json:"exponential_factor" toml:"exponential_factor"`
	MaxLevel          int     `json:"max_level" toml:"max_level"`

	WorkoutMinutesBase int     `json:"workout_minutes_base" toml:"workout_minutes_base"`
	WorkoutXP          float64 `json:"workout_xp" toml:"workout_xp"`
	MaxWorkoutXPPerDay float64 `json:"max_workout_xp_per_day" toml:"max_workout_xp_per_day"`
	MealXP             float64 `json:"meal_xp" toml:"meal_xp"`

	WorkoutStreakMultipliers TierTable `json:"workout_streak_multipliers" toml:"workout_streak_multipliers"`
	MealStreakMultipliers    TierTable `json:"meal_streak_multipliers" toml:"meal_streak_multipliers"`

	MonthsToEndSeason           float64 `json:"months_to_end_season" toml:"months_to_end_season"`
	SeasonBonusPercentage       float64 `json:"season_bonus_percentage" toml:"season_bonus_percentage"`
	PercentageFromFirstPosition float64 `json:"percentage_from_first_position" toml:"percentage_from_first_position"`

	CreatedAt time.Time `json:"created_at" toml:"-"`
}

// Curve returns the level curve described by these settings.
func (s *Settings) Curve() LevelCurve {
	return LevelCurve{XPBase: s.XPBase, ExponentialFactor: s.ExponentialFactor}
}

// ClampLevel caps level at MaxLevel when a maximum is configured.
func (s *Settings) ClampLevel(level int) int {
	if s.MaxLevel > 0 && level > s.MaxLevel {
		return s.MaxLevel
	}
	return level
}

// Validate reports every configuration problem found in s.
func (s *Settings) Validate() error {
	var errs []error
	if s.XPBase <= 0 {
		errs = append(errs, fmt.Errorf("xp_base must be positive, got %v", s.XPBase))
	}
	if s.ExponentialFactor <= 0 {
		errs = append(errs, fmt.Errorf("exponential_factor must be positive, got %v", s.ExponentialFactor))
	}
	if s.MaxLevel < 0 {
		errs = append(errs, fmt.Errorf("max_level must not be negative, got %d", s.MaxLevel))
	}
	if s.WorkoutMinutesBase <= 0 {
		errs = append(errs, fmt.Errorf("workout_minutes_base must be positive, got %d", s.WorkoutMinutesBase))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"workout_xp", s.WorkoutXP},
		{"max_workout_xp_per_day", s.MaxWorkoutXPPerDay},
		{"meal_xp", s.MealXP},
		{"months_to_end_season", s.MonthsToEndSeason},
		{"season_bonus_percentage", s.SeasonBonusPercentage},
		{"percentage_from_first_position", s.PercentageFromFirstPosition},
	} {
		if f.value < 0 || math.IsNaN(f.value) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", f.name, f.value))
		}
	}
	if err := s.WorkoutStreakMultipliers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("workout_streak_multipliers: %w", err))
	}
	if err := s.MealStreakMultipliers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("meal_streak_multipliers: %w", err))
	}
	return errors.Join(errs...)
}

// DefaultSettings returns the settings seeded by a fresh install.
func DefaultSettings() Settings {
	return Settings{
		XPBase:             100,
		ExponentialFactor:  1.5,
		MaxLevel:           100,
		WorkoutMinutesBase: 50,
		WorkoutXP:          50,
		MaxWorkoutXPPerDay: 100,
		MealXP:             10,
		WorkoutStreakMultipliers: TierTable{
			{Min: 0, Max: intPtr(2), Multiplier: 1.0},
			{Min: 3, Max: intPtr(5), Multiplier: 1.1},
			{Min: 6, Max: intPtr(9), Multiplier: 1.25},
			{Min: 10, Multiplier: 1.5},
		},
		MealStreakMultipliers: TierTable{
			{Min: 0, Max: intPtr(6), Multiplier: 1.0},
			{Min: 7, Max: intPtr(13), Multiplier: 1.1},
			{Min: 14, Max: intPtr(29), Multiplier: 1.25},
			{Min: 30, Multiplier: 1.5},
		},
		MonthsToEndSeason:           1,
		SeasonBonusPercentage:       20,
		PercentageFromFirstPosition: 60,
	}
}

func intPtr(v int) *int { return &v }
