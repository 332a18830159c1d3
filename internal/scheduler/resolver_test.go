package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func resolve(candidate models.Session, existing []models.Session) Decision {
	return NewResolver().Resolve(candidate, FindConflicts(candidate, existing), existing)
}

func TestResolveRejectsWhenConflictsCoverCandidate(t *testing.T) {
	existing := []models.Session{session("a", "2024-01-15", "10:00", 60)}
	candidate := session("b", "2024-01-15", "10:30", 60)

	d := resolve(candidate, existing)

	reject, ok := d.(Reject)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, "too many conflicts to resolve automatically", reject.Reason)
}

func TestResolveAdjust(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.Session
		want     string
	}{
		{
			// [09:30, 10:30) still overlaps [10:00, 10:30), so the +30 probe wins
			name:     "earlier probe blocked by the conflict itself",
			existing: []models.Session{session("a", "2024-01-15", "10:00", 30)},
			want:     "10:30",
		},
		{
			name:     "first probe free",
			existing: []models.Session{session("a", "2024-01-15", "10:30", 15)},
			want:     "09:30",
		},
		{
			name: "later probe after earlier ones are blocked",
			existing: []models.Session{
				session("a", "2024-01-15", "10:30", 15),
				session("x", "2024-01-15", "09:45", 15),
				session("y", "2024-01-15", "11:15", 15),
			},
			want: "08:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := session("b", "2024-01-15", "10:00", 60)
			d := resolve(candidate, tt.existing)

			adjust, ok := d.(Adjust)
			require.True(t, ok, "got %T", d)
			assert.Equal(t, tt.want, adjust.Candidate.Time)
			assert.Equal(t, "2024-01-15", adjust.Candidate.Date)
			assert.Equal(t, candidate.ID, adjust.Candidate.ID)
			assert.Equal(t, 60, adjust.Candidate.DurationMin)
			assert.Empty(t, FindConflicts(adjust.Candidate, tt.existing))
		})
	}
}

func TestResolveSkipsProbesThatChangeDate(t *testing.T) {
	existing := []models.Session{session("a", "2024-01-15", "00:40", 10)}
	candidate := session("b", "2024-01-15", "00:10", 60)

	d := resolve(candidate, existing)

	adjust, ok := d.(Adjust)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, "2024-01-15", adjust.Candidate.Date)
	assert.Equal(t, "01:10", adjust.Candidate.Time)
}

func TestResolveAfterSkipsProbesNotAfterFloor(t *testing.T) {
	existing := []models.Session{session("a", "2024-01-15", "10:30", 30)}
	candidate := session("b", "2024-01-15", "10:00", 60)
	conflicts := FindConflicts(candidate, existing)

	d := NewResolver().ResolveAfter(candidate, conflicts, existing, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))

	adjust, ok := d.(Adjust)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, "11:00", adjust.Candidate.Time, "09:30 and 09:00 are not after the floor")

	d = NewResolver().ResolveAfter(candidate, conflicts, existing, time.Time{})
	adjust, ok = d.(Adjust)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, "09:30", adjust.Candidate.Time)
}

// splitScenario blocks every probe around a 10:00-12:00 candidate.
func splitScenario() (models.Session, []models.Session) {
	candidate := session("c", "2024-01-15", "10:00", 120)
	existing := []models.Session{
		session("a", "2024-01-15", "10:30", 30),
		session("b", "2024-01-15", "12:00", 15),
		session("d", "2024-01-15", "08:30", 15),
	}
	return candidate, existing
}

func TestResolveFallsBackToSplit(t *testing.T) {
	candidate, existing := splitScenario()

	d := resolve(candidate, existing)

	split, ok := d.(Split)
	require.True(t, ok, "got %T", d)
	require.Len(t, split.Fragments, 2)
	assert.Equal(t, "10:00", split.Fragments[0].Time)
	assert.Equal(t, 30, split.Fragments[0].DurationMin)
	assert.Equal(t, "11:00", split.Fragments[1].Time)
	assert.Equal(t, 90, split.Fragments[1].DurationMin)
}

func TestResolveIsDeterministic(t *testing.T) {
	candidate, existing := splitScenario()
	first := resolve(candidate, existing)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, resolve(candidate, existing))
	}
}

func TestResolveNeverReplaces(t *testing.T) {
	scenarios := [][]models.Session{
		{session("a", "2024-01-15", "10:00", 60)},
		{session("a", "2024-01-15", "10:00", 30)},
	}
	for _, existing := range scenarios {
		d := resolve(session("b", "2024-01-15", "10:00", 60), existing)
		_, isReplace := d.(Replace)
		assert.False(t, isReplace)
	}
}

func TestForceReplace(t *testing.T) {
	r := NewResolver()
	d := r.ForceReplace([]models.Session{
		session("a", "2024-01-15", "10:00", 60),
		session("b", "2024-01-15", "11:00", 60),
	})
	assert.Equal(t, Replace{IDs: []string{"a", "b"}}, d)
}
