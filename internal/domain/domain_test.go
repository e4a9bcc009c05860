package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateDurationSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		wantErr bool
	}{
		{"zero", 0, false},
		{"base workout", 3000, false},
		{"full day", 24 * 3600, false},
		{"twenty-five hours", 25 * 3600, false},
		{"huge", math.MaxInt32, false},
		{"negative", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDurationSeconds(tt.seconds)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, HasCode(err, CodeInvalidDuration))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePositiveXP(t *testing.T) {
	assert.NoError(t, ValidatePositiveXP(0))
	assert.NoError(t, ValidatePositiveXP(12.5))
	assert.Error(t, ValidatePositiveXP(-0.01))
	assert.Error(t, ValidatePositiveXP(math.NaN()))
	assert.Error(t, ValidatePositiveXP(math.Inf(1)))
}

func TestValidateFrequency(t *testing.T) {
	for f := 1; f <= 7; f++ {
		assert.NoError(t, ValidateFrequency(f), "frequency %d", f)
	}
	assert.Error(t, ValidateFrequency(0))
	assert.Error(t, ValidateFrequency(8))
}

func TestValidateWorkoutCheckin(t *testing.T) {
	valid := WorkoutCheckinParams{UserID: uuid.New(), CheckedInAt: time.Now(), DurationSeconds: 1800}
	assert.NoError(t, ValidateWorkoutCheckin(valid))

	noUser := valid
	noUser.UserID = uuid.Nil
	assert.True(t, HasCode(ValidateWorkoutCheckin(noUser), CodeValidation))

	noTime := valid
	noTime.CheckedInAt = time.Time{}
	assert.True(t, HasCode(ValidateWorkoutCheckin(noTime), CodeValidation))

	negative := valid
	negative.DurationSeconds = -60
	assert.True(t, HasCode(ValidateWorkoutCheckin(negative), CodeInvalidDuration))
}

func TestValidateMealLog(t *testing.T) {
	valid := MealLogParams{UserID: uuid.New(), SlotID: uuid.New(), MealTime: time.Now()}
	assert.NoError(t, ValidateMealLog(valid))

	noSlot := valid
	noSlot.SlotID = uuid.Nil
	err := ValidateMealLog(noSlot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meal_config_id")
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("workout", "abc-123")
		assert.Equal(t, "NOT_FOUND: workout abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("log meal: %w", ErrConflict("Lunch already logged"))
	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("meal", "123"), CodeNotFound, 404},
		{"ErrConflict", ErrConflict("already logged"), CodeConflict, 409},
		{"ErrValidation", ErrValidation("bad input"), CodeValidation, 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), CodeUnauthorized, 401},
		{"ErrForbidden", ErrForbidden("not allowed"), CodeForbidden, 403},
		{"ErrRateLimited", ErrRateLimited("slow down"), CodeRateLimited, 429},
		{"ErrInternal", ErrInternal("oops", nil), CodeInternal, 500},
		{"ErrNoActiveSeason", ErrNoActiveSeason("client-1"), CodeNoActiveSeason, 422},
		{"ErrMultipleActiveSeasons", ErrMultipleActiveSeasons("client-1", 2), CodeMultipleSeasons, 409},
		{"ErrMultipleMainGroups", ErrMultipleMainGroups("user-1", 2), CodeMultipleMainGroups, 409},
		{"ErrInvalidDuration", ErrInvalidDuration("negative"), CodeInvalidDuration, 400},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration(errors.New("xp_base")), CodeInvalidConfiguration, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// --- Level Curve Tests ---

func TestLevelCurve(t *testing.T) {
	c := LevelCurve{XPBase: 100, ExponentialFactor: 1.5}

	tests := []struct {
		xp   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{99.99, 0},
		{100, 1},
		{282.84, 1},
		{282.85, 2},
		{1000, 4},
		{10000, 21},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.LevelForXP(tt.xp), "xp=%v", tt.xp)
	}
}

func TestLevelCurve_ExactThresholds(t *testing.T) {
	c := LevelCurve{XPBase: 50, ExponentialFactor: 2}
	for level := 1; level <= 200; level++ {
		assert.Equal(t, level, c.LevelForXP(c.XPForLevel(level)), "level %d", level)
	}
}

func TestLevelCurve_MonotonicAndNeverOvershoots(t *testing.T) {
	curves := []LevelCurve{
		{XPBase: 100, ExponentialFactor: 1.5},
		{XPBase: 6, ExponentialFactor: 1.5},
		{XPBase: 50, ExponentialFactor: 2},
		{XPBase: 7.3, ExponentialFactor: 1.17},
		{XPBase: 1000, ExponentialFactor: 0.8},
	}
	for _, c := range curves {
		prev := 0
		for i := 0; i <= 50000; i++ {
			// Irregular step so samples rarely land on a threshold.
			xp := float64(i) * 3.7013
			level := c.LevelForXP(xp)
			require.GreaterOrEqual(t, level, prev, "curve %+v xp=%v", c, xp)
			require.LessOrEqual(t, c.XPForLevel(level), xp, "curve %+v xp=%v", c, xp)
			require.Greater(t, c.XPForLevel(level+1), xp, "curve %+v xp=%v", c, xp)
			prev = level
		}
	}
}

func TestLevelCurve_Progress(t *testing.T) {
	c := LevelCurve{XPBase: 100, ExponentialFactor: 1.5}

	assert.Equal(t, 100, c.XPToNextLevel(0, 0))
	assert.Equal(t, 72, c.XPToNextLevel(1, 210))
	assert.InDelta(t, 60.16, c.ProgressPct(1, 210), 0.01)
	assert.Equal(t, 0.0, c.ProgressPct(1, 50))
}

func TestLevelCurve_Degenerate(t *testing.T) {
	assert.Equal(t, 0, LevelCurve{}.LevelForXP(500))
	assert.Equal(t, 0, LevelCurve{XPBase: 100}.LevelForXP(500))
}

// --- Tier Table Tests ---

func TestTierTable_Resolve(t *testing.T) {
	tt := DefaultSettings().WorkoutStreakMultipliers
	assert.Equal(t, 1.0, tt.Resolve(0))
	assert.Equal(t, 1.0, tt.Resolve(2))
	assert.Equal(t, 1.1, tt.Resolve(3))
	assert.Equal(t, 1.25, tt.Resolve(9))
	assert.Equal(t, 1.5, tt.Resolve(500))
}

func TestTierTable_DefaultTablesCoverEveryCount(t *testing.T) {
	def := DefaultSettings()
	for name, table := range map[string]TierTable{
		"workout": def.WorkoutStreakMultipliers,
		"meal":    def.MealStreakMultipliers,
	} {
		for n := 0; n <= 100000; n++ {
			matches := 0
			for _, tier := range table {
				if tier.Contains(n) {
					matches++
				}
			}
			require.Equal(t, 1, matches, "%s table, n=%d", name, n)
			require.GreaterOrEqual(t, table.Resolve(n), 1.0, "%s table, n=%d", name, n)
		}
	}
}

func TestTierTable_ResolveHighestMinWins(t *testing.T) {
	tt := TierTable{
		{Min: 0, Multiplier: 1.0},
		{Min: 5, Max: intPtr(8), Multiplier: 2.0},
	}
	assert.Equal(t, 2.0, tt.Resolve(6))
	assert.Equal(t, 1.0, tt.Resolve(9))
	assert.Equal(t, 1.0, TierTable{}.Resolve(3))
}

func TestTierTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   TierTable
		wantErr string
	}{
		{"defaults", DefaultSettings().MealStreakMultipliers, ""},
		{"single open tier", TierTable{{Min: 0, Multiplier: 1}}, ""},
		{"unsorted input", TierTable{{Min: 3, Multiplier: 2}, {Min: 0, Max: intPtr(2), Multiplier: 1}}, ""},
		{"empty", TierTable{}, "empty"},
		{"starts late", TierTable{{Min: 1, Multiplier: 1}}, "must start at 0"},
		{"gap", TierTable{{Min: 0, Max: intPtr(2), Multiplier: 1}, {Min: 4, Multiplier: 2}}, "gap"},
		{"overlap", TierTable{{Min: 0, Max: intPtr(3), Multiplier: 1}, {Min: 3, Multiplier: 2}}, "overlaps"},
		{"closed end", TierTable{{Min: 0, Max: intPtr(3), Multiplier: 1}}, "open-ended"},
		{"two open", TierTable{{Min: 0, Multiplier: 1}, {Min: 3, Multiplier: 2}}, "overlaps"},
		{"inverted", TierTable{{Min: 0, Max: intPtr(0), Multiplier: 1}, {Min: 1, Max: intPtr(0), Multiplier: 1}, {Min: 2, Multiplier: 1}}, "ends before"},
		{"negative multiplier", TierTable{{Min: 0, Multiplier: -1}}, "invalid multiplier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// --- Settings Tests ---

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, LevelCurve{XPBase: 100, ExponentialFactor: 1.5}, s.Curve())
}

func TestSettings_ValidateCollectsAll(t *testing.T) {
	s := DefaultSettings()
	s.XPBase = 0
	s.MealXP = -1
	s.WorkoutMinutesBase = 0
	s.WorkoutStreakMultipliers = nil

	err := s.Validate()
	require.Error(t, err)
	for _, field := range []string{"xp_base", "meal_xp", "workout_minutes_base", "workout_streak_multipliers"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestSettings_ClampLevel(t *testing.T) {
	s := DefaultSettings()
	s.MaxLevel = 10
	assert.Equal(t, 10, s.ClampLevel(42))
	assert.Equal(t, 7, s.ClampLevel(7))

	s.MaxLevel = 0
	assert.Equal(t, 42, s.ClampLevel(42))
}

// --- Season Tests ---

func TestSeason(t *testing.T) {
	s := Season{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, s.Covers(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.True(t, s.Covers(time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)))
	assert.False(t, s.Covers(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	today := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, s.DaysRemaining(today))
	assert.Equal(t, 1.0, s.MonthsRemaining(today))
}

func TestDateOf_UsesLocalCalendar(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)

	late := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC).In(zurich)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), DateOf(late))
}

// --- Event Tests ---

func TestNewXPChangedEvent(t *testing.T) {
	userID := uuid.New()
	award := &XPEntry{UserID: userID, Type: XPEntryAward, Source: ActivityWorkout, Amount: 50, ScoreAfter: 50}

	evt := NewXPChangedEvent(award)
	assert.Equal(t, EventXPAwarded, evt.EventType)
	assert.Equal(t, AggregateUser, evt.AggregateType)
	assert.Equal(t, userID.String(), evt.AggregateID)
	assert.Equal(t, userID.String(), evt.PartitionKey)

	var payload XPEntry
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, 50.0, payload.Amount)

	revoke := *award
	revoke.Type = XPEntryRevoke
	assert.Equal(t, EventXPRevoked, NewXPChangedEvent(&revoke).EventType)
}

func TestNewStreakResetEvent(t *testing.T) {
	userID := uuid.New()
	evt := NewStreakResetEvent(userID, StreakMeal, 6, 12)
	assert.Equal(t, EventStreakReset, evt.EventType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "meal", payload["kind"])
	assert.Equal(t, 6.0, payload["previous"])
	assert.Equal(t, 12.0, payload["longest"])
}

func TestNewSettingsReloadedEvent(t *testing.T) {
	s := DefaultSettings()
	s.ID, s.Version = 4, 7
	evt := NewSettingsReloadedEvent(&s)
	assert.Equal(t, AggregateSettings, evt.AggregateType)
	assert.Equal(t, EventSettingsReloaded, evt.EventType)
	assert.JSONEq(t, `{"settings_id":4,"version":7}`, string(evt.Payload))
}
