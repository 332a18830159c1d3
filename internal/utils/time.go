package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM). Both hour
// digits are required; time.Parse alone would accept "9:30".
func ParseTime(timeStr string) (time.Time, error) {
	if len(timeStr) != len(constants.TimeFormat) {
		return time.Time{}, fmt.Errorf("time %q is not in HH:MM format", timeStr)
	}
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate parses a date string (YYYY-MM-DD) as a wall-clock midnight.
func ParseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, dateStr, time.UTC)
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified location.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := ParseTime(timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// WallClock combines a date and time into a naive wall-clock instant.
// UTC is used purely as a calendar so arithmetic never crosses a DST jump.
func WallClock(dateStr, timeStr string) (time.Time, error) {
	return CombineDateAndTime(dateStr, timeStr, time.UTC)
}

// ToWallClock reinterprets t's local reading as a naive wall-clock instant.
func ToWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfDay truncates a wall-clock instant to midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatHour renders an hour of day as "HH:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

// FormatIntList renders a list of integers as "9,10,11".
func FormatIntList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParseIntList parses a comma-separated list of integers. Blank input yields nil.
func ParseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var values []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}
