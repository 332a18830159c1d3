package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

type SessionStatus string

const (
	StatusUpcoming   SessionStatus = "upcoming"
	StatusActive     SessionStatus = "active"
	StatusCompleted  SessionStatus = "completed"
	StatusMissed     SessionStatus = "missed"
	StatusCancelled  SessionStatus = "cancelled"
	StatusIncomplete SessionStatus = "incomplete"
)

// FragmentMarker separates a split session's parent ID from its part number.
const FragmentMarker = "_part"

// FragmentID names part n of the session with the given parent ID.
func FragmentID(parent string, n int) string {
	return fmt.Sprintf("%s%s%d", parent, FragmentMarker, n)
}

// ShortID abbreviates id for display. A fragment keeps its part suffix so
// the parts of one split session stay distinguishable.
func ShortID(id string) string {
	head, part, fragment := strings.Cut(id, FragmentMarker)
	if len(head) > 8 {
		head = head[:8]
	}
	if fragment {
		return head + FragmentMarker + part
	}
	return head
}

// MatchesShortID reports whether id is named by short, an ID prefix as
// printed by ShortID.
func MatchesShortID(id, short string) bool {
	head, part, fragment := strings.Cut(short, FragmentMarker)
	if !fragment {
		return strings.HasPrefix(id, short)
	}
	idHead, idPart, ok := strings.Cut(id, FragmentMarker)
	return ok && idPart == part && strings.HasPrefix(idHead, head)
}

// IsTerminal reports whether a session in this status no longer occupies its time slot.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusMissed:
		return true
	default:
		return false
	}
}

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusCompleted, StatusMissed, StatusCancelled, StatusIncomplete:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (SessionStatus, error) {
	status := SessionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid session status: %s", s)
	}
	return status, nil
}

type Session struct {
	ID             string        `json:"id" yaml:"id"`
	Title          string        `json:"title" yaml:"title"`
	Date           string        `json:"date" yaml:"date"` // YYYY-MM-DD format
	Time           string        `json:"time" yaml:"time"` // HH:MM format
	DurationMin    int           `json:"duration" yaml:"duration"`
	Category       string        `json:"category" yaml:"category"`
	Notes          string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Status         SessionStatus `json:"status" yaml:"status"`
	RecurringGroup string        `json:"recurring_group,omitempty" yaml:"recurring_group,omitempty"`
	Notifications  bool          `json:"notifications" yaml:"notifications"`
	CreatedAt      time.Time     `json:"created_at" yaml:"created_at"`
	StartedAt      *time.Time    `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Bounds returns the half-open wall-clock interval [start, end) the session
// occupies. ok is false when the stored date, time or duration is malformed.
func (s Session) Bounds() (start, end time.Time, ok bool) {
	if s.DurationMin <= 0 {
		return time.Time{}, time.Time{}, false
	}
	start, err := utils.WallClock(s.Date, s.Time)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, start.Add(time.Duration(s.DurationMin) * time.Minute), true
}

// Start returns the session start, or the zero time for malformed sessions.
func (s Session) Start() time.Time {
	start, _, _ := s.Bounds()
	return start
}

// End returns the session end, or the zero time for malformed sessions.
func (s Session) End() time.Time {
	_, end, _ := s.Bounds()
	return end
}

// At returns a copy of the session moved to start at t.
func (s Session) At(t time.Time) Session {
	s.Date = t.Format(constants.DateFormat)
	s.Time = t.Format(constants.TimeFormat)
	return s
}
