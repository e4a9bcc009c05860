// Package streak implements the workout and meal streak state machines.
// Trackers are pure: they take a state value and return the next one, leaving
// persistence and locking to the caller.
package streak

import (
	"time"

	"github.com/xpump/platform/internal/domain"
)

// WeekStart returns midnight of the Sunday that starts t's week in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// WeekBounds returns [start, end) of t's Sunday-start week in loc.
func WeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(t, loc)
	return start, start.AddDate(0, 0, 7)
}

// weeksBetween counts whole Sunday-start weeks from a to b (negative when b is earlier).
func weeksBetween(a, b time.Time, loc *time.Location) int {
	days := domain.DateOf(WeekStart(b, loc)).Sub(domain.DateOf(WeekStart(a, loc))).Hours() / 24
	return int(days) / 7
}

// DayBounds returns [start, end) of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
