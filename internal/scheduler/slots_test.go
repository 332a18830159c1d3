package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func defaultPrefs() models.Preferences {
	return models.DefaultPreferences()
}

func TestFindOptimalTime(t *testing.T) {
	cancelled := session("x", "2024-01-15", "09:00", 60)
	cancelled.Status = models.StatusCancelled

	tests := []struct {
		name     string
		duration int
		prefs    func(p *models.Preferences)
		sessions []models.Session
		want     string
		found    bool
	}{
		{
			name:     "empty day takes the first preferred hour",
			duration: 60,
			want:     "09:00",
			found:    true,
		},
		{
			name:     "gap pushes past neighbours",
			duration: 60,
			sessions: []models.Session{session("a", "2024-01-15", "09:00", 60)},
			want:     "11:00",
			found:    true,
		},
		{
			name:     "terminal sessions are ignored",
			duration: 60,
			sessions: []models.Session{cancelled},
			want:     "09:00",
			found:    true,
		},
		{
			name:     "avoided hours are skipped",
			duration: 30,
			prefs: func(p *models.Preferences) {
				p.PreferredHours = []int{12, 14}
				p.AvoidHours = []int{12}
			},
			want:  "14:00",
			found: true,
		},
		{
			name:     "out of range hours are skipped",
			duration: 30,
			prefs: func(p *models.Preferences) {
				p.PreferredHours = []int{25, -1, 8}
			},
			want:  "08:00",
			found: true,
		},
		{
			name:     "preference order is the ranking",
			duration: 30,
			prefs: func(p *models.Preferences) {
				p.PreferredHours = []int{16, 9}
			},
			want:  "16:00",
			found: true,
		},
		{
			name:     "daily cap reached",
			duration: 30,
			sessions: []models.Session{
				session("a", "2024-01-15", "06:00", 30),
				session("b", "2024-01-15", "07:00", 30),
				session("c", "2024-01-15", "19:00", 30),
				session("d", "2024-01-15", "20:00", 30),
			},
			found: false,
		},
		{
			name:     "no preferred hour free",
			duration: 60,
			prefs: func(p *models.Preferences) {
				p.PreferredHours = []int{9}
			},
			sessions: []models.Session{session("a", "2024-01-15", "10:15", 30)},
			found:    false,
		},
		{
			name:     "zero duration",
			duration: 0,
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := defaultPrefs()
			if tt.prefs != nil {
				tt.prefs(&prefs)
			}
			got, ok := FindOptimalTime("2024-01-15", tt.duration, prefs, tt.sessions)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindOptimalTimeCapIgnoresTerminalSessions(t *testing.T) {
	var sessions []models.Session
	for i, clock := range []string{"06:00", "07:00", "19:00", "20:00"} {
		s := session(string(rune('a'+i)), "2024-01-15", clock, 30)
		s.Status = models.StatusCompleted
		sessions = append(sessions, s)
	}
	got, ok := FindOptimalTime("2024-01-15", 30, defaultPrefs(), sessions)
	assert.True(t, ok)
	assert.Equal(t, "09:00", got)
}

func TestFindOptimalTimeInvalidDate(t *testing.T) {
	_, ok := FindOptimalTime("15/01/2024", 30, defaultPrefs(), nil)
	assert.False(t, ok)
}
