package system

import (
	"fmt"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Cancel the newer session of every overlapping pair."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	ctx.Printf("Validating %d session(s)...\n\n", len(sessions))
	result := validation.New(settings.Preferences).ValidateSessions(sessions)
	ctx.Println(result.FormatReport())

	if !cmd.Fix || !result.HasConflicts() {
		return nil
	}

	sched, err := ctx.Scheduler()
	if err != nil {
		return err
	}
	actions := validation.AutoFixOverlaps(result, func(id string) error {
		_, err := sched.CancelSession(id)
		return err
	})
	if len(actions) == 0 {
		ctx.Println("Nothing could be fixed automatically.")
		return nil
	}
	ctx.Println("Fixes applied:")
	for _, a := range actions {
		ctx.Println("- " + a.Action)
	}
	return nil
}
