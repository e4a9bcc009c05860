package settings

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xpump/platform/internal/domain"
)

// Decode reads a TOML settings document. Keys that are absent keep their
// DefaultSettings value; unknown keys are rejected so typos do not go live.
func Decode(r io.Reader) (domain.Settings, error) {
	def := domain.DefaultSettings()
	s := def
	// Tables are decoded into fresh slices so a shorter file table does not
	// inherit bounds from the default tiers.
	s.WorkoutStreakMultipliers = nil
	s.MealStreakMultipliers = nil

	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if !md.IsDefined("workout_streak_multipliers") {
		s.WorkoutStreakMultipliers = def.WorkoutStreakMultipliers
	}
	if !md.IsDefined("meal_streak_multipliers") {
		s.MealStreakMultipliers = def.MealStreakMultipliers
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return domain.Settings{}, fmt.Errorf("decode settings: unknown keys %s", strings.Join(keys, ", "))
	}
	return s, nil
}

// LoadFile decodes and validates the settings file at path.
func LoadFile(path string) (domain.Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("open settings file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return domain.Settings{}, domain.ErrInvalidConfiguration(err)
	}
	return s, nil
}

// Encode writes s as TOML.
func Encode(w io.Writer, s *domain.Settings) error {
	return toml.NewEncoder(w).Encode(s)
}
