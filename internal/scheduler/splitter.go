package scheduler

import (
	"fmt"
	"slices"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// SplitAroundConflicts divides candidate into fragments that fill the gaps
// between conflicts, carrying any leftover duration past the last conflict.
// Gaps shorter than constants.MinFragmentMin are dropped, so the fragments
// never add up to more than the candidate's duration.
func SplitAroundConflicts(candidate models.Session, conflicts []models.Session) []models.Session {
	start, _, ok := candidate.Bounds()
	if !ok {
		return nil
	}

	ordered := slices.Clone(conflicts)
	sortByStart(ordered)

	var fragments []models.Session
	emit := func(at time.Time, minutes int) {
		part := len(fragments) + 1
		frag := candidate.At(at)
		frag.ID = models.FragmentID(candidate.ID, part)
		frag.Title = fmt.Sprintf("%s (Part %d)", candidate.Title, part)
		frag.DurationMin = minutes
		fragments = append(fragments, frag)
	}

	cursor := start
	remaining := candidate.DurationMin
	for _, c := range ordered {
		cStart, cEnd, ok := c.Bounds()
		if !ok {
			continue
		}
		gap := int(cStart.Sub(cursor) / time.Minute)
		if length := min(gap, remaining); length >= constants.MinFragmentMin {
			emit(cursor, length)
			remaining -= length
		}
		if cEnd.After(cursor) {
			cursor = cEnd
		}
	}
	if remaining >= constants.MinFragmentMin {
		emit(cursor, remaining)
	}
	return fragments
}
