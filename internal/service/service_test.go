package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/ledger"
	"github.com/xpump/platform/internal/scoring"
	"github.com/xpump/platform/internal/settings"
)

var (
	breakfast = domain.MealSlot{ID: uuid.New(), Name: "Breakfast", Order: 1}
	lunch     = domain.MealSlot{ID: uuid.New(), Name: "Lunch", Order: 2}
	dinner    = domain.MealSlot{ID: uuid.New(), Name: "Dinner", Order: 3}
)

// 2026-03-01 is a Sunday.
func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

type harness struct {
	db       *fakeDB
	scores   *fakeScores
	entries  *fakeEntries
	outbox   *fakeOutbox
	streaks  *fakeStreaks
	workouts *fakeWorkouts
	meals    *fakeMeals
	cfg      *domain.Settings

	activity *ActivityService
	streak   *StreakService
	progress *ProgressService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := domain.DefaultSettings()
	h := &harness{
		db:       &fakeDB{},
		scores:   newFakeScores(),
		entries:  &fakeEntries{},
		outbox:   &fakeOutbox{},
		streaks:  newFakeStreaks(),
		workouts: newFakeWorkouts(),
		meals:    newFakeMeals(),
		cfg:      &cfg,
	}
	engine := ledger.NewEngine(h.scores, h.entries, h.outbox)
	src := staticSettings{cfg: h.cfg}
	logger := discardLogger()

	h.activity = NewActivityService(h.db, src, engine,
		scoring.NewWorkoutScorer(flatBonus{}, false),
		scoring.NewMealScorer(flatBonus{}),
		ActivityRepos{
			Workouts:    h.workouts,
			Meals:       h.meals,
			MealConfigs: fakeSlots{breakfast, lunch, dinner},
			Streaks:     h.streaks,
			Outbox:      h.outbox,
		},
		time.UTC, 3, logger)
	h.streak = NewStreakService(h.db, engine, h.streaks, h.workouts, h.outbox, time.UTC, 3, logger)
	h.progress = NewProgressService(h.db, src, h.scores, h.streaks)
	return h
}

func (h *harness) workout(t *testing.T, userID uuid.UUID, when time.Time, minutes int) *domain.ActivityResult {
	t.Helper()
	res, err := h.activity.LogWorkout(context.Background(), domain.WorkoutCheckinParams{
		UserID: userID, CheckedInAt: when, DurationSeconds: minutes * 60,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) meal(t *testing.T, userID uuid.UUID, slot domain.MealSlot, when time.Time) *domain.ActivityResult {
	t.Helper()
	res, err := h.activity.LogMeal(context.Background(), domain.MealLogParams{
		UserID: userID, SlotID: slot.ID, MealTime: when,
	})
	require.NoError(t, err)
	return res
}

func TestLogWorkout_FirstCheckin(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	res := h.workout(t, userID, at(2, 7), 50)

	assert.Equal(t, 50.0, res.Awarded)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 0, res.Level)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.False(t, res.DailyCapped)

	assert.Equal(t, 1, h.db.commits)
	assert.Equal(t, 50.0, h.scores.states[userID].Score)
	assert.Equal(t, 50.0, h.workouts.rows[res.ActivityID].BasePoints)
	assert.Equal(t, 3, h.streaks.workouts[userID].Frequency)
	assert.Equal(t, 1, h.outbox.count(domain.EventXPAwarded))
	require.Len(t, h.entries.rows, 1)
	assert.Equal(t, res.ActivityID, *h.entries.rows[0].ActivityID)
}

func TestLogWorkout_SmallCurveScenario(t *testing.T) {
	h := newHarness(t)
	h.cfg.XPBase = 6
	h.cfg.ExponentialFactor = 1.5
	h.cfg.WorkoutXP = 2
	h.cfg.WorkoutMinutesBase = 50
	h.cfg.MaxWorkoutXPPerDay = 100
	userID := uuid.New()

	res := h.workout(t, userID, at(2, 7), 50)

	assert.Equal(t, 2.0, res.Awarded)
	assert.Equal(t, 2.0, res.Score)
	assert.Equal(t, 0, res.Level)
	assert.False(t, res.DailyCapped)
	assert.Equal(t, 2.0, h.scores.states[userID].Score)
}

func TestLogWorkout_DailyCap(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	first := h.workout(t, userID, at(2, 7), 100)
	assert.Equal(t, 100.0, first.Awarded)
	assert.False(t, first.DailyCapped)

	second := h.workout(t, userID, at(2, 18), 100)
	assert.Equal(t, 0.0, second.Awarded)
	assert.True(t, second.DailyCapped)
	assert.Equal(t, 100.0, second.Score)

	// a new calendar day resets the cap
	third := h.workout(t, userID, at(3, 7), 25)
	assert.Equal(t, 25.0, third.Awarded)
}

func TestLogWorkout_CapTruncatesRemainder(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	h.workout(t, userID, at(2, 7), 60) // extended tier: 75
	res := h.workout(t, userID, at(2, 9), 60)

	assert.Equal(t, 25.0, res.Awarded)
	assert.True(t, res.DailyCapped)
}

func TestLogWorkout_LevelUp(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	first := h.workout(t, userID, at(2, 7), 50)
	assert.False(t, first.LeveledUp)
	res := h.workout(t, userID, at(3, 7), 100)

	assert.Equal(t, 150.0, res.Score)
	assert.Equal(t, 1, res.Level)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, h.outbox.count(domain.EventLevelUp))
}

func TestLogWorkout_Rejections(t *testing.T) {
	t.Run("negative duration", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.activity.LogWorkout(context.Background(), domain.WorkoutCheckinParams{
			UserID: uuid.New(), CheckedInAt: at(2, 7), DurationSeconds: -1,
		})
		assert.True(t, domain.HasCode(err, domain.CodeInvalidDuration))
		assert.Zero(t, h.db.begins)
	})

	t.Run("missing user", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.activity.LogWorkout(context.Background(), domain.WorkoutCheckinParams{
			CheckedInAt: at(2, 7), DurationSeconds: 60,
		})
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("settings unavailable", func(t *testing.T) {
		h := newHarness(t)
		h.activity.settings = staticSettings{err: domain.ErrInvalidConfiguration(assert.AnError)}
		_, err := h.activity.LogWorkout(context.Background(), domain.WorkoutCheckinParams{
			UserID: uuid.New(), CheckedInAt: at(2, 7), DurationSeconds: 60,
		})
		assert.True(t, domain.HasCode(err, domain.CodeInvalidConfiguration))
		assert.Zero(t, h.db.begins)
	})
}

func TestLogWorkout_StreakAcrossWeeks(t *testing.T) {
	t.Run("cadence met", func(t *testing.T) {
		h := newHarness(t)
		userID := uuid.New()
		h.streaks.workouts[userID] = *domain.NewWorkoutStreak(userID, 1)

		h.workout(t, userID, at(2, 7), 30)
		res := h.workout(t, userID, at(10, 7), 30)

		assert.Equal(t, 2, res.CurrentStreak)
		assert.Zero(t, h.outbox.count(domain.EventStreakReset))
	})

	t.Run("cadence missed", func(t *testing.T) {
		h := newHarness(t)
		userID := uuid.New()

		h.workout(t, userID, at(2, 7), 30)
		h.workout(t, userID, at(3, 7), 30)
		res := h.workout(t, userID, at(10, 7), 30)

		assert.Equal(t, 1, res.CurrentStreak)
		assert.Equal(t, 2, res.LongestStreak)
		assert.Equal(t, 1, h.outbox.count(domain.EventStreakReset))
	})

	t.Run("gap of a whole week", func(t *testing.T) {
		h := newHarness(t)
		userID := uuid.New()
		h.streaks.workouts[userID] = *domain.NewWorkoutStreak(userID, 1)

		h.workout(t, userID, at(2, 7), 30)
		res := h.workout(t, userID, at(17, 7), 30)

		assert.Equal(t, 1, res.CurrentStreak)
		assert.Equal(t, 1, h.outbox.count(domain.EventStreakReset))
	})
}

func TestLogMeal_Streak(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	h.meal(t, userID, breakfast, at(2, 8))
	h.meal(t, userID, lunch, at(2, 13))
	h.meal(t, userID, dinner, at(2, 19))
	res := h.meal(t, userID, breakfast, at(3, 8))

	assert.Equal(t, 4, res.CurrentStreak)
	assert.Equal(t, 10.0, res.Awarded)
	assert.Equal(t, 40.0, res.Score)
	assert.Zero(t, h.outbox.count(domain.EventStreakReset))
}

func TestLogMeal_MultiplierUsesUpdatedStreak(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	last := at(1, 19)
	slot := dinner.Order
	h.streaks.meals[userID] = domain.MealStreak{UserID: userID, Current: 6, Longest: 6, LastActivityAt: &last, LastSlotOrder: &slot}

	res := h.meal(t, userID, breakfast, at(2, 8))

	assert.Equal(t, 7, res.CurrentStreak)
	assert.InDelta(t, 11.0, res.Awarded, 1e-9)
}

func TestLogMeal_SkippedSlotResets(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	h.meal(t, userID, breakfast, at(2, 8))
	res := h.meal(t, userID, dinner, at(2, 19))

	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 1, res.LongestStreak)
	assert.Equal(t, 1, h.outbox.count(domain.EventStreakReset))
}

func TestLogMeal_Rejections(t *testing.T) {
	t.Run("unknown slot", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.activity.LogMeal(context.Background(), domain.MealLogParams{
			UserID: uuid.New(), SlotID: uuid.New(), MealTime: at(2, 8),
		})
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
		assert.Zero(t, h.db.begins)
	})

	t.Run("slot already logged today", func(t *testing.T) {
		h := newHarness(t)
		userID := uuid.New()
		h.meal(t, userID, breakfast, at(2, 8))

		_, err := h.activity.LogMeal(context.Background(), domain.MealLogParams{
			UserID: userID, SlotID: breakfast.ID, MealTime: at(2, 10),
		})
		assert.True(t, domain.HasCode(err, domain.CodeConflict))
		assert.Equal(t, 1, h.db.commits)
		assert.Equal(t, 10.0, h.scores.states[userID].Score)
	})
}

func TestDeleteWorkout(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	res := h.workout(t, userID, at(2, 7), 100)

	t.Run("other user", func(t *testing.T) {
		_, err := h.activity.DeleteWorkout(context.Background(), uuid.New(), res.ActivityID)
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
		assert.Contains(t, h.workouts.rows, res.ActivityID)
	})

	t.Run("owner", func(t *testing.T) {
		xp, err := h.activity.DeleteWorkout(context.Background(), userID, res.ActivityID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, xp.After.Score)
		assert.NotContains(t, h.workouts.rows, res.ActivityID)
		assert.Equal(t, 1, h.outbox.count(domain.EventXPRevoked))
		assert.Equal(t, 1, h.streaks.workouts[userID].Current)
	})

	t.Run("already deleted", func(t *testing.T) {
		_, err := h.activity.DeleteWorkout(context.Background(), userID, res.ActivityID)
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})
}

func TestDeleteMeal_FloorsAtZero(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	res := h.meal(t, userID, breakfast, at(2, 8))
	h.scores.states[userID] = domain.ScoreState{UserID: userID, Score: 4}

	xp, err := h.activity.DeleteMeal(context.Background(), userID, res.ActivityID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, xp.After.Score)
	assert.Equal(t, 0, xp.After.Level)
}

func TestSweepWorkoutStreaks(t *testing.T) {
	h := newHarness(t)
	short, steady, idle := uuid.New(), uuid.New(), uuid.New()
	h.streaks.workouts[steady] = *domain.NewWorkoutStreak(steady, 1)
	h.streaks.workouts[idle] = *domain.NewWorkoutStreak(idle, 1)

	h.workout(t, short, at(2, 7), 30)
	h.workout(t, steady, at(2, 7), 30)
	h.workout(t, idle, at(2, 7), 30)
	h.workout(t, steady, at(9, 7), 30)

	res, err := h.streak.SweepWorkoutStreaks(context.Background(), at(10, 0))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 1, res.Reset)
	assert.Equal(t, 0, h.streaks.workouts[short].Current)
	assert.Equal(t, 1, h.streaks.workouts[short].Longest)
	assert.Equal(t, 2, h.streaks.workouts[steady].Current)
	assert.Equal(t, 1, h.streaks.workouts[idle].Current)

	res, err = h.streak.SweepWorkoutStreaks(context.Background(), at(15, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, 1, res.Reset)
	assert.Equal(t, 0, h.streaks.workouts[idle].Current)
	assert.Equal(t, 2, h.outbox.count(domain.EventStreakReset))
}

func TestSetWorkoutFrequency(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	_, err := h.streak.SetWorkoutFrequency(context.Background(), userID, 8)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	st, err := h.streak.SetWorkoutFrequency(context.Background(), userID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Frequency)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 5, h.streaks.workouts[userID].Frequency)
}

func TestProgress(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	p, err := h.progress.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, 100, p.XPToNextLevel)
	assert.Nil(t, p.WorkoutStreak)

	h.workout(t, userID, at(2, 7), 100)
	h.workout(t, userID, at(3, 7), 100)
	h.meal(t, userID, breakfast, at(3, 8))

	p, err = h.progress.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 210.0, p.Score)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 72, p.XPToNextLevel) // 100 * 2^1.5 = 282.84
	require.NotNil(t, p.WorkoutStreak)
	assert.Equal(t, 2, p.WorkoutStreak.Current)
	require.NotNil(t, p.MealStreak)
	assert.Equal(t, 1, p.MealStreak.Current)
}

func TestSettingsService(t *testing.T) {
	initial := domain.DefaultSettings()
	initial.ID, initial.Version = 1, 1
	repo := &fakeSettingsRepo{active: &initial}
	db := &fakeDB{}
	outbox := &fakeOutbox{}
	provider := settings.NewProvider(repo, db, discardLogger())
	svc := NewSettingsService(db, provider, repo, outbox, discardLogger())

	_, err := svc.Get()
	assert.True(t, domain.HasCode(err, domain.CodeInvalidConfiguration))

	cfg, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Version)
	assert.Equal(t, 1, outbox.count(domain.EventSettingsReloaded))

	t.Run("apply", func(t *testing.T) {
		next := domain.DefaultSettings()
		next.MealXP = 15
		cfg, err := svc.Apply(context.Background(), next)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cfg.Version)

		current, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, 15.0, current.MealXP)
		assert.Equal(t, 2, outbox.count(domain.EventSettingsReloaded))
	})

	t.Run("invalid settings are refused", func(t *testing.T) {
		bad := domain.DefaultSettings()
		bad.MealStreakMultipliers = bad.MealStreakMultipliers[1:]
		_, err := svc.Apply(context.Background(), bad)
		assert.True(t, domain.HasCode(err, domain.CodeInvalidConfiguration))

		current, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, 15.0, current.MealXP)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo.fail = true
		defer func() { repo.fail = false }()
		_, err := svc.Apply(context.Background(), domain.DefaultSettings())
		assert.True(t, domain.HasCode(err, domain.CodeInternal))
	})
}

func TestAuditVerify(t *testing.T) {
	h := newHarness(t)
	audit := NewAuditService(h.db, staticSettings{cfg: h.cfg}, h.scores, h.entries)
	userID := uuid.New()

	_, err := audit.Verify(context.Background(), userID)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))

	w := h.workout(t, userID, at(2, 7), 100)
	h.meal(t, userID, breakfast, at(2, 8))
	_, err = h.activity.DeleteWorkout(context.Background(), userID, w.ActivityID)
	require.NoError(t, err)

	res, err := audit.Verify(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, res.AllPassed)
	assert.Equal(t, 3, res.EntryCount)
	assert.InDelta(t, 10.0, res.Replayed, 1e-9)

	h.scores.states[userID] = domain.ScoreState{UserID: userID, Score: 500, Level: 6}
	res, err = audit.Verify(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, res.AllPassed)
}
