package streak

import (
	"time"

	"github.com/xpump/platform/internal/domain"
)

// Continuation decides whether a check-in at next extends a streak whose last
// check-in was at last, given the user's weekly frequency.
type Continuation func(last, next time.Time, frequency int) bool

// SameOrNextCadenceWeek continues a streak while check-ins stay in the same
// Sunday-start week or the one right after it. Under-frequency weeks are caught
// separately by Workout.Ended.
func SameOrNextCadenceWeek(loc *time.Location) Continuation {
	return func(last, next time.Time, _ int) bool {
		weeks := weeksBetween(last, next, loc)
		return weeks >= -1 && weeks <= 1
	}
}

// Workout tracks weekly-cadence workout streaks.
type Workout struct {
	loc       *time.Location
	continues Continuation
}

// NewWorkout creates a tracker. A nil continuation selects SameOrNextCadenceWeek.
func NewWorkout(loc *time.Location, continues Continuation) *Workout {
	if loc == nil {
		loc = time.UTC
	}
	if continues == nil {
		continues = SameOrNextCadenceWeek(loc)
	}
	return &Workout{loc: loc, continues: continues}
}

// Update applies a check-in at `at` and reports whether the streak restarted.
// A backdated check-in never moves LastActivityAt backwards.
func (w *Workout) Update(state domain.WorkoutStreak, at time.Time) (domain.WorkoutStreak, bool) {
	restarted := false
	switch {
	case state.LastActivityAt == nil:
		state.Current = 1
	case w.continues(*state.LastActivityAt, at, state.Frequency):
		state.Current++
	default:
		restarted = state.Current > 0
		state.Current = 1
	}

	if state.Current > state.Longest {
		state.Longest = state.Current
	}
	if state.LastActivityAt == nil || at.After(*state.LastActivityAt) {
		ts := at
		state.LastActivityAt = &ts
	}
	return state, restarted
}

// TrackedWeek returns the week holding the last check-in.
func (w *Workout) TrackedWeek(state domain.WorkoutStreak) (start, end time.Time, ok bool) {
	if state.LastActivityAt == nil {
		return time.Time{}, time.Time{}, false
	}
	start, end = WeekBounds(*state.LastActivityAt, w.loc)
	return start, end, true
}

// Ended reports whether the user missed their weekly cadence. weekCount is the
// number of check-ins logged in TrackedWeek. The streak ends once that week has
// closed with fewer than Frequency check-ins, or once a whole following week has
// closed with none.
func (w *Workout) Ended(state domain.WorkoutStreak, weekCount int, ref time.Time) bool {
	_, end, ok := w.TrackedWeek(state)
	if !ok || state.Current == 0 || state.Frequency <= 0 {
		return false
	}
	if ref.Before(end) {
		return false
	}
	if weekCount < state.Frequency {
		return true
	}
	return !ref.Before(end.AddDate(0, 0, 7))
}

// Reset zeroes the current streak and keeps the high-water mark.
func (w *Workout) Reset(state domain.WorkoutStreak) domain.WorkoutStreak {
	state.Current = 0
	return state
}
