package recurrence

import (
	"iter"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// Horizon resolves the last date (inclusive) an expansion may reach: the
// rule's end date when set, otherwise one calendar year after base.
func Horizon(rule models.RecurrenceRule, base time.Time) (time.Time, error) {
	if rule.EndDate == "" {
		return base.AddDate(1, 0, 0), nil
	}
	end, err := utils.ParseDate(rule.EndDate)
	if err != nil {
		return time.Time{}, qerrors.Recurrence("invalid recurrence end date %q, expected YYYY-MM-DD", rule.EndDate)
	}
	return end, nil
}

// Expand returns the occurrence dates of rule from base through end, both
// inclusive, capped at constants.MaxOccurrences. A zero end falls back to
// Horizon. The sequence is lazy and can be ranged over any number of times.
func Expand(rule models.RecurrenceRule, base, end time.Time) (iter.Seq[time.Time], error) {
	if err := Validate(rule); err != nil {
		return nil, err
	}
	base = utils.StartOfDay(base)
	if end.IsZero() {
		var err error
		if end, err = Horizon(rule, base); err != nil {
			return nil, err
		}
	}
	end = utils.StartOfDay(end)
	if end.Before(base) {
		return nil, qerrors.Recurrence("recurrence end %s is before start %s",
			end.Format(constants.DateFormat), base.Format(constants.DateFormat))
	}

	var walk func(yield func(time.Time) bool)
	switch rule.Type {
	case models.RecurrenceWeekly:
		walk = func(yield func(time.Time) bool) {
			for d := base; !d.After(end); d = d.AddDate(0, 0, 7) {
				if !yield(d) {
					return
				}
			}
		}
	case models.RecurrenceMonthly:
		walk = func(yield func(time.Time) bool) {
			// Each occurrence is derived from base so short months cannot drift the day
			for k := 0; ; k++ {
				if time.Date(base.Year(), base.Month()+time.Month(k), 1, 0, 0, 0, 0, base.Location()).After(end) {
					return
				}
				d := base.AddDate(0, k, 0)
				if d.Day() != base.Day() || d.After(end) {
					continue
				}
				if !yield(d) {
					return
				}
			}
		}
	default:
		walk = func(yield func(time.Time) bool) {
			for d := base; !d.After(end); d = d.AddDate(0, 0, 1) {
				if Matches(rule, base, d) && !yield(d) {
					return
				}
			}
		}
	}

	return func(yield func(time.Time) bool) {
		n := 0
		for d := range walk {
			if n >= constants.MaxOccurrences || !yield(d) {
				return
			}
			n++
		}
	}, nil
}

// Generate collects Expand into a slice.
func Generate(rule models.RecurrenceRule, base, end time.Time) ([]time.Time, error) {
	seq, err := Expand(rule, base, end)
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for d := range seq {
		dates = append(dates, d)
	}
	return dates, nil
}
