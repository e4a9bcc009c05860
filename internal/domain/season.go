package domain

import (
	"time"

	"github.com/google/uuid"
)

// Season is a bounded competitive period owned by one client (employer).
// StartDate and EndDate are calendar dates, both inclusive.
type Season struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description,omitempty"`
}

// Covers reports whether day falls inside the season.
func (s Season) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(s.StartDate)) && !d.After(DateOf(s.EndDate))
}

// DaysRemaining returns the whole days between today and EndDate.
func (s Season) DaysRemaining(today time.Time) int {
	return int(DateOf(s.EndDate).Sub(DateOf(today)).Hours() / 24)
}

// MonthsRemaining uses 30-day months.
func (s Season) MonthsRemaining(today time.Time) float64 {
	return float64(s.DaysRemaining(today)) / 30
}

// Profile is the externally owned user record the engine reads.
type Profile struct {
	UserID   uuid.UUID `json:"user_id"`
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name,omitempty"`
}

// DateOf truncates t to midnight UTC of its calendar date in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
