package sessions

import (
	"sort"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

type ListCmd struct {
	Status string `short:"s" help:"Only sessions with this status."`
	Date   string `short:"d" help:"Only sessions on this date (YYYY-MM-DD)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var status models.SessionStatus
	if c.Status != "" {
		parsed, err := models.ParseStatus(c.Status)
		if err != nil {
			return err
		}
		status = parsed
	}
	if c.Date != "" && !utils.ValidateDateFormat(c.Date) {
		return errInvalidDate(c.Date)
	}

	all, err := ctx.Store.GetAllSessions()
	if err != nil {
		return err
	}

	var sessions []models.Session
	for _, s := range all {
		if status != "" && s.Status != status {
			continue
		}
		if c.Date != "" && s.Date != c.Date {
			continue
		}
		sessions = append(sessions, s)
	}

	if len(sessions) == 0 {
		ctx.Println("No sessions found.")
		return nil
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Start().Before(sessions[j].Start())
	})
	for _, s := range sessions {
		ctx.Println(cli.FormatSession(s))
	}
	return nil
}

type StartCmd struct {
	ID string `arg:"" help:"Session ID or unique prefix."`
}

func (c *StartCmd) Run(ctx *cli.Context) error {
	return transition(ctx, c.ID, "Started", func(id string) (models.Session, error) {
		sched, err := ctx.Scheduler()
		if err != nil {
			return models.Session{}, err
		}
		return sched.StartSession(id)
	})
}

type CompleteCmd struct {
	ID    string `arg:"" help:"Session ID or unique prefix."`
	Break bool   `short:"b" help:"Queue a break reminder after completing."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	session, err := sched.CompleteSession(id)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Completed %q\n", session.Title)
	if !c.Break {
		return nil
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	task, err := sched.ScheduleBreak(id, settings.BreakMinutes)
	if err != nil {
		return err
	}
	ctx.Printf("  Break reminder queued for %s\n", task.DueAt.Format("15:04"))
	return nil
}

type CancelCmd struct {
	ID string `arg:"" help:"Session ID or unique prefix."`
}

func (c *CancelCmd) Run(ctx *cli.Context) error {
	return transition(ctx, c.ID, "Cancelled", func(id string) (models.Session, error) {
		sched, err := ctx.Scheduler()
		if err != nil {
			return models.Session{}, err
		}
		return sched.CancelSession(id)
	})
}

type DeleteCmd struct {
	ID string `arg:"" help:"Session ID or unique prefix."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	if err := sched.DeleteSession(id); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted session %s\n", id)
	return nil
}

type SnoozeCmd struct {
	ID      string `arg:"" help:"Session ID or unique prefix."`
	Minutes int    `short:"m" help:"Minutes to snooze (default from settings)."`
}

func (c *SnoozeCmd) Run(ctx *cli.Context) error {
	minutes := c.Minutes
	if minutes == 0 {
		settings, err := ctx.Settings()
		if err != nil {
			return err
		}
		minutes = settings.SnoozeMinutes
	}
	id, err := ctx.ResolveID(c.ID)
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	task, err := sched.Snooze(id, minutes)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Reminder snoozed until %s\n", task.DueAt.Format("15:04"))
	return nil
}

func transition(ctx *cli.Context, prefix, verb string, fn func(id string) (models.Session, error)) error {
	id, err := ctx.ResolveID(prefix)
	if err != nil {
		return err
	}
	session, err := fn(id)
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s %q\n", verb, session.Title)
	return nil
}
