package sessions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type ScheduleCmd struct {
	Title    string `arg:"" help:"Session title (at least 3 characters)."`
	Date     string `short:"d" help:"Date (YYYY-MM-DD)." required:""`
	Time     string `short:"t" help:"Start time (HH:MM, 24h)." required:""`
	Duration int    `short:"m" help:"Duration in minutes." default:"60"`
	Category string `short:"c" help:"Category label."`
	Notes    string `short:"n" help:"Free-form notes."`
	NoNotify bool   `help:"Do not queue a reminder for this session."`
	Recur    string `short:"r" help:"Recurrence (daily|weekly|monthly|weekdays|custom)."`
	Until    string `short:"u" help:"Last date of the recurrence (YYYY-MM-DD)."`
	Pattern  string `short:"p" help:"Custom pattern: weekdays as '1w,3w,5w' or days of month as '1,15'."`
	Force    bool   `short:"f" help:"Remove conflicting sessions instead of resolving automatically."`
}

func (c *ScheduleCmd) Request() (models.Request, error) {
	rule, err := cli.ParseRecurrence(c.Recur, c.Until, c.Pattern)
	if err != nil {
		return models.Request{}, err
	}
	return models.Request{
		Title:         c.Title,
		Date:          c.Date,
		Time:          c.Time,
		DurationMin:   c.Duration,
		Category:      c.Category,
		Notes:         c.Notes,
		Notifications: !c.NoNotify,
		Recurring:     rule,
		Force:         c.Force,
	}, nil
}

func (c *ScheduleCmd) Run(ctx *cli.Context) error {
	req, err := c.Request()
	if err != nil {
		return err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}

	sessions, err := sched.ScheduleSession(req)
	if err != nil {
		return err
	}
	printScheduled(ctx, req, sessions)
	return nil
}

func printScheduled(ctx *cli.Context, req models.Request, sessions []models.Session) {
	switch {
	case len(sessions) == 0:
		ctx.Println("No occurrences could be scheduled; every date conflicted.")
		return
	case req.Recurring != nil:
		ctx.Printf("✓ Scheduled %d occurrence(s) of %q (%s)\n", len(sessions), req.Title, req.Recurring)
	case len(sessions) > 1:
		ctx.Printf("✓ Split %q into %d sessions around existing ones\n", req.Title, len(sessions))
	case sessions[0].Time != req.Time:
		ctx.Printf("✓ Moved %q from %s to %s to avoid a conflict\n", req.Title, req.Time, sessions[0].Time)
	default:
		ctx.Printf("✓ Scheduled %q\n", req.Title)
	}
	for _, s := range sessions {
		ctx.Println("  " + cli.FormatSession(s))
	}
}

// BatchCmd schedules a YAML or JSON list of requests.
type BatchCmd struct {
	File string `arg:"" help:"YAML or JSON file holding a list of requests." type:"existingfile"`
}

func (c *BatchCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return qerrors.IO(err, "failed to read batch file")
	}
	// JSON is valid YAML, so one decoder handles both.
	var reqs []models.Request
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return qerrors.Validation("invalid batch file %s: %v", c.File, err)
	}
	if len(reqs) == 0 {
		return qerrors.Validation("batch file %s contains no requests", c.File)
	}

	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	result := sched.BatchSchedule(reqs)

	ctx.Printf("Scheduled %d session(s), %d request(s) failed\n", len(result.Successful), len(result.Failed))
	for _, s := range result.Successful {
		ctx.Println("  ✓ " + cli.FormatSession(s))
	}
	for _, f := range result.Failed {
		ctx.Printf("  ✗ #%d %q: %s\n", f.Index+1, f.Request.Title, f.Reason)
	}
	if len(result.Successful) == 0 {
		return fmt.Errorf("no requests could be scheduled")
	}
	return nil
}
