// Package validation audits a session collection for problems the
// scheduler would never create itself but that imports, manual edits or
// older releases can leave behind.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/scheduler"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingSessions ConflictType = "overlapping_sessions"
	ConflictDuplicateID         ConflictType = "duplicate_id"
	ConflictInvalidDateTime     ConflictType = "invalid_datetime"
	ConflictInvalidDuration     ConflictType = "invalid_duration"
	ConflictInvalidStatus       ConflictType = "invalid_status"
	ConflictShortTitle          ConflictType = "short_title"
	ConflictOvercommitted       ConflictType = "overcommitted"
)

// Conflict is one detected problem.
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD, if applicable
	SessionIDs  []string // sessions involved, oldest first for overlaps
}

type Result struct {
	Conflicts []Conflict
}

func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Count returns how many conflicts of type t were found.
func (r *Result) Count(t ConflictType) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Validator audits sessions. MaxPerDay of zero disables the daily limit.
type Validator struct {
	MaxPerDay int
}

func New(prefs models.Preferences) *Validator {
	return &Validator{MaxPerDay: prefs.MaxSessionsPerDay}
}

// ValidateSessions checks every session on its own, then pairwise for
// overlaps and per day against the daily limit.
func (v *Validator) ValidateSessions(sessions []models.Session) Result {
	result := Result{Conflicts: []Conflict{}}

	seen := make(map[string]int)
	for _, s := range sessions {
		seen[s.ID]++
	}
	dupes := make([]string, 0)
	for id, n := range seen {
		if n > 1 {
			dupes = append(dupes, id)
		}
	}
	sort.Strings(dupes)
	for _, id := range dupes {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateID,
			Description: fmt.Sprintf("Session ID %q is used by %d sessions", id, seen[id]),
			SessionIDs:  []string{id},
		})
	}

	var valid []models.Session
	for _, s := range sessions {
		if c, ok := checkSession(s); !ok {
			result.Conflicts = append(result.Conflicts, c)
			continue
		}
		valid = append(valid, s)
	}

	result.Conflicts = append(result.Conflicts, overlaps(valid)...)
	if v.MaxPerDay > 0 {
		result.Conflicts = append(result.Conflicts, v.overcommitted(valid)...)
	}
	return result
}

func checkSession(s models.Session) (Conflict, bool) {
	label := fmt.Sprintf("Session %q (%s)", s.Title, s.ID)
	switch {
	case !utils.ValidateDateFormat(s.Date) || !utils.ValidateTimeFormat(s.Time):
		return Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("%s has invalid date/time: %q %q", label, s.Date, s.Time),
			Date:        s.Date,
			SessionIDs:  []string{s.ID},
		}, false
	case s.DurationMin <= 0:
		return Conflict{
			Type:        ConflictInvalidDuration,
			Description: fmt.Sprintf("%s has non-positive duration %d", label, s.DurationMin),
			Date:        s.Date,
			SessionIDs:  []string{s.ID},
		}, false
	case !s.Status.Valid():
		return Conflict{
			Type:        ConflictInvalidStatus,
			Description: fmt.Sprintf("%s has unknown status %q", label, s.Status),
			Date:        s.Date,
			SessionIDs:  []string{s.ID},
		}, false
	case len(strings.TrimSpace(s.Title)) < constants.MinTitleLength:
		return Conflict{
			Type:        ConflictShortTitle,
			Description: fmt.Sprintf("%s has a title shorter than %d characters", label, constants.MinTitleLength),
			Date:        s.Date,
			SessionIDs:  []string{s.ID},
		}, false
	}
	return Conflict{}, true
}

// overlaps reports each overlapping pair once, older session first.
func overlaps(sessions []models.Session) []Conflict {
	ordered := append([]models.Session(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start().Before(ordered[j].Start())
	})

	var conflicts []Conflict
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			a, b := ordered[i], ordered[j]
			if !b.Start().Before(a.End()) {
				break
			}
			if !scheduler.Overlaps(a, b) {
				continue
			}
			older, newer := a, b
			if newer.CreatedAt.Before(older.CreatedAt) {
				older, newer = newer, older
			}
			conflicts = append(conflicts, Conflict{
				Type: ConflictOverlappingSessions,
				Description: fmt.Sprintf("%q (%s–%s) overlaps %q (%s–%s) on %s",
					a.Title, a.Time, a.End().Format(constants.TimeFormat),
					b.Title, b.Time, b.End().Format(constants.TimeFormat), a.Date),
				Date:       a.Date,
				SessionIDs: []string{older.ID, newer.ID},
			})
		}
	}
	return conflicts
}

func (v *Validator) overcommitted(sessions []models.Session) []Conflict {
	perDay := make(map[string][]string)
	for _, s := range sessions {
		if s.Status.IsTerminal() {
			continue
		}
		perDay[s.Date] = append(perDay[s.Date], s.ID)
	}

	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var conflicts []Conflict
	for _, d := range dates {
		if n := len(perDay[d]); n > v.MaxPerDay {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictOvercommitted,
				Description: fmt.Sprintf("%s has %d sessions, more than the limit of %d", d, n, v.MaxPerDay),
				Date:        d,
				SessionIDs:  perDay[d],
			})
		}
	}
	return conflicts
}

// FixAction records one change made by AutoFixOverlaps.
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// AutoFixOverlaps cancels the newer session of every overlapping pair,
// skipping pairs already resolved by an earlier cancellation.
func AutoFixOverlaps(result Result, cancel func(id string) error) []FixAction {
	cancelled := make(map[string]bool)
	var actions []FixAction
	for _, c := range result.Conflicts {
		if c.Type != ConflictOverlappingSessions || len(c.SessionIDs) != 2 {
			continue
		}
		older, newer := c.SessionIDs[0], c.SessionIDs[1]
		if cancelled[older] || cancelled[newer] {
			continue
		}
		if err := cancel(newer); err != nil {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to cancel session %s: %v", newer, err),
				SourceConflict: c,
			})
			continue
		}
		cancelled[newer] = true
		actions = append(actions, FixAction{
			Action:         fmt.Sprintf("Cancelled session %s (kept %s)", newer, older),
			SourceConflict: c,
		})
	}
	return actions
}
