package scheduler

import (
	"slices"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

const rejectReason = "too many conflicts to resolve automatically"

// Decision is the outcome of conflict resolution. The concrete types are
// Reject, Adjust, Replace and Split.
type Decision interface {
	decision()
}

// Reject means the candidate cannot be placed automatically.
type Reject struct {
	Reason string
}

// Adjust moves the candidate to a nearby conflict-free start.
type Adjust struct {
	Candidate models.Session
}

// Replace evicts the listed sessions so the candidate keeps its slot.
type Replace struct {
	IDs []string
}

// Split places the candidate as fragments around its conflicts.
type Split struct {
	Fragments []models.Session
}

func (Reject) decision()  {}
func (Adjust) decision()  {}
func (Replace) decision() {}
func (Split) decision()   {}

// Resolver chooses how to place a candidate that collides with existing sessions.
type Resolver struct {
	offsets []int
}

func NewResolver() *Resolver {
	return &Resolver{offsets: slices.Clone(constants.ResolutionOffsetsMin)}
}

// Resolve picks a Decision for candidate. Shifts are probed in a fixed order
// against existing and must stay on the candidate's calendar date; the first
// free one wins. Resolve never returns Replace.
func (r *Resolver) Resolve(candidate models.Session, conflicts, existing []models.Session) Decision {
	return r.ResolveAfter(candidate, conflicts, existing, time.Time{})
}

// ResolveAfter is Resolve with shifted starts at or before notBefore
// skipped. A zero notBefore allows any start.
func (r *Resolver) ResolveAfter(candidate models.Session, conflicts, existing []models.Session, notBefore time.Time) Decision {
	total := 0
	for _, c := range conflicts {
		total += c.DurationMin
	}
	if total >= candidate.DurationMin {
		return Reject{Reason: rejectReason}
	}

	if start, _, ok := candidate.Bounds(); ok {
		for _, offset := range r.offsets {
			shifted := start.Add(time.Duration(offset) * time.Minute)
			if shifted.Format(constants.DateFormat) != candidate.Date {
				continue
			}
			if !notBefore.IsZero() && !shifted.After(notBefore) {
				continue
			}
			moved := candidate.At(shifted)
			if len(FindConflicts(moved, existing)) == 0 {
				return Adjust{Candidate: moved}
			}
		}
	}

	return Split{Fragments: SplitAroundConflicts(candidate, conflicts)}
}

// ForceReplace builds the caller-directed eviction of every conflict.
func (r *Resolver) ForceReplace(conflicts []models.Session) Replace {
	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	return Replace{IDs: ids}
}
