package models

import (
	"fmt"
	"strconv"
	"strings"
)

type RecurrenceType string

const (
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
	RecurrenceWeekdays RecurrenceType = "weekdays"
	RecurrenceCustom   RecurrenceType = "custom"
)

// PatternKind tells how the indices of a custom pattern are interpreted.
type PatternKind string

const (
	PatternWeekday  PatternKind = "weekday"  // 0=Sunday .. 6=Saturday
	PatternMonthDay PatternKind = "monthday" // 1 .. 31
)

type RecurrenceRule struct {
	Type          RecurrenceType `json:"type" yaml:"type"`
	EndDate       string         `json:"end_date,omitempty" yaml:"end_date,omitempty"` // YYYY-MM-DD format
	CustomPattern []int          `json:"custom_pattern,omitempty" yaml:"custom_pattern,omitempty"`
	CustomKind    PatternKind    `json:"custom_kind,omitempty" yaml:"custom_kind,omitempty"`
}

// FormatPattern renders a custom pattern in its compact text form
// ("1w,3w,5w" for weekdays, "1,15" for days of month).
func (r RecurrenceRule) FormatPattern() string {
	parts := make([]string, len(r.CustomPattern))
	for i, p := range r.CustomPattern {
		parts[i] = strconv.Itoa(p)
		if r.CustomKind == PatternWeekday {
			parts[i] += "w"
		}
	}
	return strings.Join(parts, ",")
}

// String returns a human-readable description of the rule.
func (r RecurrenceRule) String() string {
	var desc string
	switch r.Type {
	case RecurrenceDaily:
		desc = "daily"
	case RecurrenceWeekly:
		desc = "weekly"
	case RecurrenceMonthly:
		desc = "monthly"
	case RecurrenceWeekdays:
		desc = "weekdays"
	case RecurrenceCustom:
		desc = fmt.Sprintf("custom (%s)", r.FormatPattern())
	default:
		desc = "unknown"
	}
	if r.EndDate != "" {
		desc += " until " + r.EndDate
	}
	return desc
}
