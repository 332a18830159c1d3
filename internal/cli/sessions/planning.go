package sessions

import (
	"encoding/json"
	"fmt"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/optimizer"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

func errInvalidDate(date string) error {
	return qerrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
}

// SlotCmd finds the best free preferred hour on a date.
type SlotCmd struct {
	Date     string `arg:"" help:"Date to search (YYYY-MM-DD)."`
	Duration int    `short:"m" help:"Session length in minutes (default from settings)."`
}

func (c *SlotCmd) Run(ctx *cli.Context) error {
	if !utils.ValidateDateFormat(c.Date) {
		return errInvalidDate(c.Date)
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	duration := c.Duration
	if duration == 0 {
		duration = settings.Preferences.SessionDurationMin
	}
	if duration <= 0 {
		return qerrors.Validation("duration must be greater than zero")
	}

	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	clock, ok, err := sched.FindOptimalTime(c.Date, duration, settings.Preferences)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Printf("No free preferred slot on %s for %d minutes.\n", c.Date, duration)
		return nil
	}
	ctx.Printf("Best slot on %s: %s (%d min)\n", c.Date, clock, duration)
	return nil
}

// SuggestCmd proposes a slot for each of the next seven days.
type SuggestCmd struct{}

func (c *SuggestCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	suggestions, err := sched.SuggestSchedule(settings.Preferences)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		ctx.Println("No free slots in the coming week.")
		return nil
	}
	ctx.Println("Suggested sessions (best match first):")
	for _, s := range suggestions {
		ctx.Printf("  %s %s  %3.0f%% confidence\n", s.Date, s.Time, s.Confidence*100)
	}
	return nil
}

// StatsCmd prints the session report and insights.
type StatsCmd struct {
	JSON bool `help:"Print the report as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return err
	}
	report := optimizer.Summarize(sessions, utils.ToWallClock(ctx.Clock()))

	if c.JSON {
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	ctx.Printf("Sessions:        %d total, %d completed, %d upcoming, %d missed\n",
		report.TotalSessions, report.CompletedSessions, report.UpcomingSessions, report.MissedSessions)
	ctx.Printf("Completion rate: %.0f%%\n", report.CompletionRate)
	ctx.Printf("Focused time:    %.1f hours (avg %.0f min)\n", report.TotalHours, report.AverageSessionMin)
	ctx.Printf("Streak:          %d day(s)\n", report.Streak)
	if len(report.Categories) > 0 {
		ctx.Println("Categories:")
		for _, cat := range report.Categories {
			ctx.Printf("  %-15s %3d sessions  %s\n", cat.Category, cat.Count, formatMinutes(cat.Minutes))
		}
	}

	insights := optimizer.Insights(report)
	if len(insights) > 0 {
		ctx.Println("Insights:")
		for _, line := range insights {
			ctx.Println("  • " + line)
		}
	}
	return nil
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
