package models

import "time"

// Request is a caller's ask to place a session (or a recurring series).
type Request struct {
	Title         string          `json:"title" yaml:"title"`
	Date          string          `json:"date" yaml:"date"` // YYYY-MM-DD format
	Time          string          `json:"time" yaml:"time"` // HH:MM format
	DurationMin   int             `json:"duration" yaml:"duration"`
	Category      string          `json:"category" yaml:"category"`
	Notes         string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Notifications bool            `json:"notifications" yaml:"notifications"`
	Recurring     *RecurrenceRule `json:"recurring,omitempty" yaml:"recurring,omitempty"`
	// Force evicts conflicting sessions instead of resolving automatically.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// Candidate builds the upcoming session the request describes.
func (r Request) Candidate(id string, createdAt time.Time) Session {
	return Session{
		ID:            id,
		Title:         r.Title,
		Date:          r.Date,
		Time:          r.Time,
		DurationMin:   r.DurationMin,
		Category:      r.Category,
		Notes:         r.Notes,
		Status:        StatusUpcoming,
		Notifications: r.Notifications,
		CreatedAt:     createdAt,
	}
}

// WithSlot returns a copy of the request moved to the given date and time.
func (r Request) WithSlot(date, clock string) Request {
	r.Date = date
	r.Time = clock
	return r
}
