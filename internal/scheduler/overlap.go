package scheduler

import (
	"sort"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// Overlaps reports whether two sessions occupy intersecting time. Intervals
// are half-open, so back-to-back sessions do not overlap, and sessions in a
// terminal status never overlap anything.
func Overlaps(a, b models.Session) bool {
	if a.Status.IsTerminal() || b.Status.IsTerminal() {
		return false
	}
	aStart, aEnd, ok := a.Bounds()
	if !ok {
		return false
	}
	bStart, bEnd, ok := b.Bounds()
	if !ok {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflicts returns the sessions that overlap candidate, ordered by start
// time. The candidate's own ID is never reported against itself.
func FindConflicts(candidate models.Session, sessions []models.Session) []models.Session {
	var conflicts []models.Session
	for _, s := range sessions {
		if s.ID != "" && s.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, s) {
			conflicts = append(conflicts, s)
		}
	}
	sortByStart(conflicts)
	return conflicts
}

// occupied reports whether [start, end) intersects any non-terminal session.
func occupied(start, end time.Time, sessions []models.Session) bool {
	for _, s := range sessions {
		if s.Status.IsTerminal() {
			continue
		}
		sStart, sEnd, ok := s.Bounds()
		if !ok {
			continue
		}
		if start.Before(sEnd) && sStart.Before(end) {
			return true
		}
	}
	return false
}

func sortByStart(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Start().Before(sessions[j].Start())
	})
}
