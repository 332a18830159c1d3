package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func TestOverlaps(t *testing.T) {
	base := session("a", "2024-01-15", "10:00", 60)
	cancelled := session("c", "2024-01-15", "10:15", 30)
	cancelled.Status = models.StatusCancelled

	tests := []struct {
		name  string
		other models.Session
		want  bool
	}{
		{"identical", session("b", "2024-01-15", "10:00", 60), true},
		{"partial overlap", session("b", "2024-01-15", "10:30", 60), true},
		{"contained", session("b", "2024-01-15", "10:15", 15), true},
		{"touching end", session("b", "2024-01-15", "11:00", 30), false},
		{"touching start", session("b", "2024-01-15", "09:00", 60), false},
		{"other day", session("b", "2024-01-16", "10:00", 60), false},
		{"terminal status", cancelled, false},
		{"malformed", session("b", "2024-01-15", "late", 60), false},
		{"crosses midnight into", session("b", "2024-01-14", "23:30", 660), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(base, tt.other))
			assert.Equal(t, Overlaps(base, tt.other), Overlaps(tt.other, base), "overlap must be symmetric")
		})
	}
}

func TestOverlapsTerminalStatuses(t *testing.T) {
	for _, status := range []models.SessionStatus{models.StatusCompleted, models.StatusCancelled, models.StatusMissed} {
		a := session("a", "2024-01-15", "10:00", 60)
		b := session("b", "2024-01-15", "10:00", 60)
		b.Status = status
		assert.False(t, Overlaps(a, b), status)
	}
	for _, status := range []models.SessionStatus{models.StatusActive, models.StatusIncomplete} {
		a := session("a", "2024-01-15", "10:00", 60)
		b := session("b", "2024-01-15", "10:00", 60)
		b.Status = status
		assert.True(t, Overlaps(a, b), status)
	}
}

func TestFindConflicts(t *testing.T) {
	done := session("done", "2024-01-15", "10:00", 30)
	done.Status = models.StatusCompleted
	sessions := []models.Session{
		session("late", "2024-01-15", "11:00", 60),
		session("early", "2024-01-15", "09:30", 60),
		done,
		session("self", "2024-01-15", "10:00", 60),
		session("free", "2024-01-15", "13:00", 60),
	}
	candidate := session("self", "2024-01-15", "10:00", 90)

	conflicts := FindConflicts(candidate, sessions)

	var ids []string
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"early", "late"}, ids)
}

func TestFindConflictsEmptyStore(t *testing.T) {
	assert.Empty(t, FindConflicts(session("x", "2024-01-15", "10:00", 60), nil))
}
