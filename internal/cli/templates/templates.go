package templates

import (
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

type SaveCmd struct {
	Name     string `arg:"" help:"Template name."`
	Title    string `help:"Session title." required:""`
	Time     string `short:"t" help:"Default start time (HH:MM)."`
	Duration int    `short:"m" help:"Duration in minutes." default:"60"`
	Category string `short:"c" help:"Category label."`
	Notes    string `short:"n" help:"Free-form notes."`
	NoNotify bool   `help:"Do not queue reminders for sessions made from this template."`
	Recur    string `short:"r" help:"Recurrence (daily|weekly|monthly|weekdays|custom)."`
	Until    string `short:"u" help:"Last date of the recurrence (YYYY-MM-DD)."`
	Pattern  string `short:"p" help:"Custom pattern ('1w,3w' or '1,15')."`
}

func (c *SaveCmd) Run(ctx *cli.Context) error {
	if c.Time != "" && !utils.ValidateTimeFormat(c.Time) {
		return qerrors.Validation("invalid time %q, expected HH:MM", c.Time)
	}
	rule, err := cli.ParseRecurrence(c.Recur, c.Until, c.Pattern)
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	req := models.Request{
		Title:         c.Title,
		Time:          c.Time,
		DurationMin:   c.Duration,
		Category:      c.Category,
		Notes:         c.Notes,
		Notifications: !c.NoNotify,
		Recurring:     rule,
	}
	if err := sched.SaveTemplate(c.Name, req); err != nil {
		return err
	}
	ctx.Printf("✓ Saved template %q\n", c.Name)
	return nil
}

// UseCmd schedules a session from a template. Without a time from the flag
// or the template, the best free slot on the date is used.
type UseCmd struct {
	Name string `arg:"" help:"Template name."`
	Date string `short:"d" help:"Date (YYYY-MM-DD)." required:""`
	Time string `short:"t" help:"Start time (HH:MM), overriding the template."`
}

func (c *UseCmd) Run(ctx *cli.Context) error {
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	req, err := sched.LoadTemplate(c.Name)
	if err != nil {
		return err
	}

	clock := c.Time
	if clock == "" {
		clock = req.Time
	}
	if clock == "" {
		settings, err := ctx.Settings()
		if err != nil {
			return err
		}
		found, ok, err := sched.FindOptimalTime(c.Date, req.DurationMin, settings.Preferences)
		if err != nil {
			return err
		}
		if !ok {
			return qerrors.Validation("template %q has no time and %s has no free preferred slot", c.Name, c.Date)
		}
		clock = found
	}

	sessions, err := sched.ScheduleSession(req.WithSlot(c.Date, clock))
	if err != nil {
		return err
	}
	ctx.Printf("✓ Scheduled %d session(s) from template %q\n", len(sessions), c.Name)
	for _, s := range sessions {
		ctx.Println("  " + cli.FormatSession(s))
	}
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	templates, err := sched.GetTemplates()
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		ctx.Println("No templates saved.")
		return nil
	}
	for _, t := range templates {
		line := t.Name + ": " + t.Request.Title
		if t.Request.Time != "" {
			line += " at " + t.Request.Time
		}
		ctx.Printf("%s (%d min)", line, t.Request.DurationMin)
		if t.Request.Recurring != nil {
			ctx.Printf(", %s", t.Request.Recurring)
		}
		ctx.Println()
	}
	return nil
}
