package scheduler

import (
	"slices"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// FindOptimalTime returns the first preferred hour on date where a session of
// duration minutes, padded by prefs.MinGapMin on both sides, touches no
// existing session. The order of prefs.PreferredHours is the ranking.
func FindOptimalTime(date string, duration int, prefs models.Preferences, sessions []models.Session) (string, bool) {
	if duration <= 0 {
		return "", false
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return "", false
	}

	if prefs.MaxSessionsPerDay > 0 {
		count := 0
		for _, s := range sessions {
			if s.Date == date && !s.Status.IsTerminal() {
				count++
			}
		}
		if count >= prefs.MaxSessionsPerDay {
			return "", false
		}
	}

	gap := time.Duration(max(prefs.MinGapMin, 0)) * time.Minute
	length := time.Duration(duration) * time.Minute
	for _, hour := range prefs.PreferredHours {
		if hour < 0 || hour > 23 || slices.Contains(prefs.AvoidHours, hour) {
			continue
		}
		start := day.Add(time.Duration(hour) * time.Hour)
		if !occupied(start.Add(-gap), start.Add(length+gap), sessions) {
			return utils.FormatHour(hour), true
		}
	}
	return "", false
}
