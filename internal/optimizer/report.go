package optimizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Minutes  int    `json:"minutes"`
}

// Report summarises a session history.
type Report struct {
	GeneratedAt        time.Time       `json:"generated_at"`
	TotalSessions      int             `json:"total_sessions"`
	CompletedSessions  int             `json:"completed_sessions"`
	UpcomingSessions   int             `json:"upcoming_sessions"`
	MissedSessions     int             `json:"missed_sessions"`
	CompletionRate     float64         `json:"completion_rate"` // percent
	TotalHours         float64         `json:"total_hours"`
	AverageSessionMin  float64         `json:"average_session_min"`
	MostProductiveHour int             `json:"most_productive_hour"` // -1 when unknown
	TopCategory        string          `json:"top_category,omitempty"`
	Categories         []CategoryCount `json:"categories"`
	Streak             int             `json:"streak"`
}

// Summarize builds a Report over all sessions as of today.
func Summarize(sessions []models.Session, today time.Time) Report {
	r := Report{
		GeneratedAt:        today,
		TotalSessions:      len(sessions),
		MostProductiveHour: -1,
	}

	patterns := AnalyzeHistorical(sessions)
	byCategory := make(map[string]*CategoryCount)
	completedMinutes := 0
	for _, s := range sessions {
		switch s.Status {
		case models.StatusUpcoming:
			r.UpcomingSessions++
		case models.StatusMissed:
			r.MissedSessions++
		case models.StatusCompleted:
			r.CompletedSessions++
			completedMinutes += s.DurationMin
			name := s.Category
			if name == "" {
				name = "uncategorized"
			}
			c, ok := byCategory[name]
			if !ok {
				c = &CategoryCount{Category: name}
				byCategory[name] = c
			}
			c.Count++
			c.Minutes += s.DurationMin
		}
	}

	if r.TotalSessions > 0 {
		r.CompletionRate = float64(r.CompletedSessions) / float64(r.TotalSessions) * 100
	}
	r.TotalHours = float64(completedMinutes) / 60
	if r.CompletedSessions > 0 {
		r.AverageSessionMin = float64(completedMinutes) / float64(r.CompletedSessions)
	}

	best := 0
	for hour, n := range patterns.Hour {
		// Ties go to the earlier hour so the result is stable
		if n > best || (n == best && hour < r.MostProductiveHour) {
			best = n
			r.MostProductiveHour = hour
		}
	}

	for _, c := range byCategory {
		r.Categories = append(r.Categories, *c)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if r.Categories[i].Count != r.Categories[j].Count {
			return r.Categories[i].Count > r.Categories[j].Count
		}
		return r.Categories[i].Category < r.Categories[j].Category
	})
	if len(r.Categories) > 0 {
		r.TopCategory = r.Categories[0].Category
	}

	r.Streak = Streak(sessions, today)
	return r
}

// Streak counts consecutive days, ending today, with at least one completed session.
func Streak(sessions []models.Session, today time.Time) int {
	days := make(map[string]bool)
	for _, s := range sessions {
		if s.Status == models.StatusCompleted {
			days[s.Date] = true
		}
	}

	streak := 0
	for d := today; days[d.Format(constants.DateFormat)]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// Insights renders short observations about a report.
func Insights(r Report) []string {
	if r.CompletedSessions == 0 {
		return []string{"Start completing sessions to get personalized insights!"}
	}

	var insights []string
	if r.MostProductiveHour >= 0 {
		insights = append(insights, fmt.Sprintf("Your most productive time is around %s", formatHour12(r.MostProductiveHour)))
	}

	switch {
	case r.AverageSessionMin < 45:
		insights = append(insights, "You prefer shorter, focused sessions")
	case r.AverageSessionMin > 90:
		insights = append(insights, "You excel at longer, deep work sessions")
	default:
		insights = append(insights, "You maintain good balance with medium-length sessions")
	}

	switch {
	case r.Streak >= 7:
		insights = append(insights, fmt.Sprintf("Excellent consistency! You're on a %d-day streak", r.Streak))
	case r.Streak >= 3:
		insights = append(insights, fmt.Sprintf("Good momentum with a %d-day streak", r.Streak))
	}

	if r.TopCategory != "" {
		insights = append(insights, fmt.Sprintf("You focus most on %s sessions", strings.ToLower(r.TopCategory)))
	}
	return insights
}

func formatHour12(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3 PM")
}
