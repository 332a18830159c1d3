package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// ParsePattern parses the compact text form of a custom pattern. Entries
// suffixed with "w" are weekday indices (0=Sunday); bare numbers are days of
// the month. Mixing both forms is rejected.
func ParsePattern(s string) (models.PatternKind, []int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, qerrors.Recurrence("custom pattern is empty")
	}

	var kind models.PatternKind
	var values []int
	for _, raw := range strings.Split(s, ",") {
		entry := strings.ToLower(strings.TrimSpace(raw))
		if entry == "" {
			continue
		}
		entryKind := models.PatternMonthDay
		if strings.HasSuffix(entry, "w") {
			entryKind = models.PatternWeekday
			entry = strings.TrimSuffix(entry, "w")
		}
		if kind == "" {
			kind = entryKind
		} else if kind != entryKind {
			return "", nil, qerrors.Recurrence("custom pattern %q mixes weekdays and days of month", s)
		}
		v, err := strconv.Atoi(entry)
		if err != nil {
			return "", nil, qerrors.Recurrence("invalid custom pattern entry %q", raw)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return "", nil, qerrors.Recurrence("custom pattern is empty")
	}

	rule := models.RecurrenceRule{Type: models.RecurrenceCustom, CustomKind: kind, CustomPattern: values}
	if err := validatePattern(rule); err != nil {
		return "", nil, err
	}
	return kind, values, nil
}

// Validate checks that the rule can be expanded.
func Validate(rule models.RecurrenceRule) error {
	switch rule.Type {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly, models.RecurrenceWeekdays:
	case models.RecurrenceCustom:
		if err := validatePattern(rule); err != nil {
			return err
		}
	case "":
		return qerrors.Recurrence("recurrence type is required")
	default:
		return qerrors.Recurrence("invalid recurrence type: %s", rule.Type)
	}
	if rule.EndDate != "" {
		if _, err := time.Parse(constants.DateFormat, rule.EndDate); err != nil {
			return qerrors.Recurrence("invalid recurrence end date %q, expected YYYY-MM-DD", rule.EndDate)
		}
	}
	return nil
}

func validatePattern(rule models.RecurrenceRule) error {
	if len(rule.CustomPattern) == 0 {
		return qerrors.Recurrence("custom pattern is empty")
	}
	lo, hi := 0, 0
	switch rule.CustomKind {
	case models.PatternWeekday:
		lo, hi = 0, 6
	case models.PatternMonthDay:
		lo, hi = 1, 31
	default:
		return qerrors.Recurrence("invalid custom pattern kind: %q", rule.CustomKind)
	}
	for _, v := range rule.CustomPattern {
		if v < lo || v > hi {
			return qerrors.Recurrence("custom pattern index %d out of range %d-%d for %s", v, lo, hi, rule.CustomKind)
		}
	}
	return nil
}

// Matches reports whether date is an occurrence of rule anchored at base.
// Dates before base never match.
func Matches(rule models.RecurrenceRule, base, date time.Time) bool {
	if date.Before(base) {
		return false
	}
	switch rule.Type {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly:
		return date.Weekday() == base.Weekday()
	case models.RecurrenceMonthly:
		// Months without base's day are skipped rather than clamped
		return date.Day() == base.Day()
	case models.RecurrenceWeekdays:
		wd := date.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case models.RecurrenceCustom:
		idx := date.Day()
		if rule.CustomKind == models.PatternWeekday {
			idx = int(date.Weekday())
		}
		for _, v := range rule.CustomPattern {
			if v == idx {
				return true
			}
		}
		return false
	default:
		return false
	}
}
