package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// MissedMarker flips overdue sessions to missed.
type MissedMarker interface {
	MarkMissed(now time.Time) ([]models.Session, error)
}

// Runner drives Queue.Tick and the missed-session sweep from a cron
// schedule.
type Runner struct {
	queue  *Queue
	missed MissedMarker
	spec   string
	now    func() time.Time
	log    *log.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

type RunnerOption func(*Runner)

// WithSpec sets the cron spec ("@every 30s", "*/5 * * * *").
func WithSpec(spec string) RunnerOption {
	return func(r *Runner) { r.spec = spec }
}

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(queue *Queue, missed MissedMarker, opts ...RunnerOption) *Runner {
	r := &Runner{
		queue:  queue,
		missed: missed,
		spec:   constants.DefaultHousekeepSpec,
		now:    time.Now,
		log:    logger.Named("housekeeping"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateSpec reports whether spec parses as a cron schedule.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return qerrors.Validation("invalid housekeeping schedule %q: %v", spec, err)
	}
	return nil
}

// RunOnce performs one housekeeping pass. Pending tasks are reloaded from
// the store first so tasks saved by other processes are picked up.
func (r *Runner) RunOnce() error {
	now := r.now()
	var firstErr error

	if r.queue != nil {
		if err := r.queue.Restore(); err != nil {
			r.log.Error("reloading pending tasks failed", "error", err)
			firstErr = err
		}
	}

	if r.missed != nil {
		missed, err := r.missed.MarkMissed(now)
		if err != nil {
			r.log.Error("missed-session sweep failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		} else if len(missed) > 0 {
			r.log.Info("sessions marked missed", "count", len(missed))
		}
	}

	if r.queue != nil {
		done, err := r.queue.Tick(now)
		if err != nil {
			r.log.Error("task tick failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if len(done) > 0 {
			r.log.Debug("tasks dispatched", "count", len(done))
		}
	}
	return firstErr
}

// Start runs a pass immediately, then on every cron tick until ctx is
// cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	if err := ValidateSpec(r.spec); err != nil {
		return err
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.spec, func() { _ = r.RunOnce() }); err != nil {
		return qerrors.Validation("invalid housekeeping schedule %q: %v", r.spec, err)
	}
	_ = r.RunOnce()
	c.Start()
	runCtx, cancel := context.WithCancel(ctx)
	r.cron = c
	r.runCtx, r.cancel = runCtx, cancel
	r.log.Info("housekeeping started", "schedule", r.spec)

	go func() {
		<-runCtx.Done()
		r.stop(c)
	}()
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish.
func (r *Runner) Stop() {
	r.stop(nil)
}

// stop halts the running loop. A non-nil only limits it to that loop, so a
// watcher left over from an earlier Start cannot stop its replacement.
func (r *Runner) stop(only *cron.Cron) {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	if c == nil || (only != nil && c != only) {
		r.mu.Unlock()
		return
	}
	r.cron, r.runCtx, r.cancel = nil, nil, nil
	r.mu.Unlock()

	cancel()
	<-c.Stop().Done()
	r.log.Info("housekeeping stopped")
}

// Reschedule swaps the cron spec, restarting the loop if it is running.
func (r *Runner) Reschedule(ctx context.Context, spec string) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	r.mu.Lock()
	running := r.cron != nil
	r.spec = spec
	r.mu.Unlock()

	if !running {
		return nil
	}
	r.Stop()
	return r.Start(ctx)
}
