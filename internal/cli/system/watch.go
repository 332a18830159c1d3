package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/config"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/reminders"
)

// WatchCmd runs housekeeping in the foreground: due reminders are delivered
// and overdue sessions marked missed on every tick.
type WatchCmd struct {
	Once bool `help:"Run a single housekeeping pass and exit."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	if c.Once {
		return runner.RunOnce()
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(sigCtx, ctx, runner)
}

func newRunner(ctx *cli.Context) (*reminders.Runner, error) {
	q, err := ctx.Queue()
	if err != nil {
		return nil, err
	}
	sched, err := ctx.Scheduler()
	if err != nil {
		return nil, err
	}
	return reminders.NewRunner(q, sched,
		reminders.WithSpec(ctx.Config.HousekeepSpec),
		reminders.WithRunnerClock(ctx.Clock),
	), nil
}

func watch(runCtx context.Context, ctx *cli.Context, runner *reminders.Runner) error {
	if err := runner.Start(runCtx); err != nil {
		return err
	}
	ctx.Printf("Watching for due reminders (%s). Press Ctrl+C to stop.\n", ctx.Config.HousekeepSpec)

	if ctx.SettingsFile != "" {
		w := config.NewWatcher(ctx.SettingsFile, ctx.Config)
		go func() {
			err := w.Watch(runCtx, func(cfg config.Config) {
				reload(runCtx, ctx, runner, cfg)
			})
			if err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	<-runCtx.Done()
	runner.Stop()
	ctx.Println("Stopped.")
	return nil
}

// reload applies a changed config file. Setting overrides take effect on
// the next scheduler built; the cron spec is swapped immediately.
func reload(runCtx context.Context, ctx *cli.Context, runner *reminders.Runner, cfg config.Config) {
	previous := ctx.Config.HousekeepSpec
	ctx.Config = cfg
	ctx.ResetScheduler()
	if cfg.HousekeepSpec == previous {
		return
	}
	if err := runner.Reschedule(runCtx, cfg.HousekeepSpec); err != nil {
		logger.Warn("keeping previous housekeeping schedule", "spec", cfg.HousekeepSpec, "error", err)
		return
	}
	logger.Info("housekeeping schedule changed", "from", previous, "to", cfg.HousekeepSpec)
}
