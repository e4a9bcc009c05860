package streak

import (
	"time"

	"github.com/xpump/platform/internal/domain"
)

// Meal tracks meal-slot streaks. Slots are ordered 1..slotCount within a day;
// the last slot of one day wraps to the first slot of the next.
type Meal struct {
	loc *time.Location
}

// NewMeal creates a tracker that reads calendar days in loc.
func NewMeal(loc *time.Location) *Meal {
	if loc == nil {
		loc = time.UTC
	}
	return &Meal{loc: loc}
}

// Ended reports whether a meal in slotOrder at `at` breaks the streak.
func (m *Meal) Ended(state domain.MealStreak, slotOrder int, at time.Time, slotCount int) bool {
	if state.LastActivityAt == nil || state.LastSlotOrder == nil {
		return false
	}
	lastSlot := *state.LastSlotOrder
	lastDay := domain.DateOf(state.LastActivityAt.In(m.loc))
	day := domain.DateOf(at.In(m.loc))

	if day.Equal(lastDay) && slotOrder == lastSlot+1 {
		return false
	}
	if lastSlot == slotCount && slotOrder == 1 && day.Equal(lastDay.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Update counts a meal and reports whether the streak was reset first. A reset
// still counts the new meal, so the streak restarts at 1. A backdated meal never
// moves the last-meal cursor backwards.
func (m *Meal) Update(state domain.MealStreak, slotOrder int, at time.Time, slotCount int) (domain.MealStreak, bool) {
	reset := m.Ended(state, slotOrder, at, slotCount)
	if reset {
		state.Current = 0
	}
	state.Current++

	if state.Current > state.Longest {
		state.Longest = state.Current
	}
	if state.LastActivityAt == nil || !at.Before(*state.LastActivityAt) {
		ts := at
		slot := slotOrder
		state.LastActivityAt = &ts
		state.LastSlotOrder = &slot
	}
	return state, reset
}
