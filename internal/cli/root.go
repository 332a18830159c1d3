// Package cli holds the state shared by every quiethours command.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/backup"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/config"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/notifier"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/recurrence"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/reminders"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/scheduler"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/sqlite"
)

type Context struct {
	Store        storage.Provider
	Config       config.Config
	SettingsFile string

	// Out and In default to stdout and stdin.
	Out io.Writer
	In  io.Reader
	Now func() time.Time
	// Notifier overrides the backend chosen by Config.Notifier.
	Notifier notifier.Notifier

	queue *reminders.Queue
	sched *scheduler.Scheduler
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Writer(), args...)
}

func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Confirm asks a yes/no question on In. Anything but y/yes is a no.
func (c *Context) Confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Settings returns the stored settings with config overrides applied.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, err
	}
	return c.Config.Settings.Apply(settings), nil
}

// NotifierBackend returns the notifier selected by configuration.
func (c *Context) NotifierBackend() notifier.Notifier {
	if c.Notifier != nil {
		return c.Notifier
	}
	switch c.Config.Notifier {
	case config.NotifierTray:
		return notifier.NewTray()
	case config.NotifierLog:
		return notifier.NewLog(nil)
	default:
		return notifier.Default()
	}
}

// Queue returns the reminder queue, restored from the store on first use.
func (c *Context) Queue() (*reminders.Queue, error) {
	if c.queue != nil {
		return c.queue, nil
	}
	timeout := c.Config.NotifyTimeout
	if timeout <= 0 {
		timeout = config.Default().NotifyTimeout
	}
	q := reminders.NewQueue(c.Store, reminders.NewDispatcher(c.Store, c.NotifierBackend(), timeout))
	if err := q.Restore(); err != nil {
		return nil, err
	}
	c.queue = q
	return q, nil
}

// Scheduler builds the scheduler from the current settings. The result is
// cached; ResetScheduler drops it after settings change.
func (c *Context) Scheduler() (*scheduler.Scheduler, error) {
	if c.sched != nil {
		return c.sched, nil
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	q, err := c.Queue()
	if err != nil {
		return nil, err
	}
	c.sched = scheduler.New(c.Store,
		scheduler.WithClock(c.Clock),
		scheduler.WithFutureOnly(settings.EnforceFuture),
		scheduler.WithReminders(q, settings.ReminderMinutes),
	)
	return c.sched, nil
}

func (c *Context) ResetScheduler() {
	c.sched = nil
}

// PerformAutomaticBackup snapshots SQLite stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseRecurrence builds a rule from command-line flags. An empty kind means
// no recurrence.
func ParseRecurrence(kind, until, pattern string) (*models.RecurrenceRule, error) {
	if kind == "" {
		if until != "" || pattern != "" {
			return nil, fmt.Errorf("--until and --pattern require --recur")
		}
		return nil, nil
	}
	rule := &models.RecurrenceRule{
		Type:    models.RecurrenceType(strings.ToLower(kind)),
		EndDate: until,
	}
	if pattern != "" {
		k, values, err := recurrence.ParsePattern(pattern)
		if err != nil {
			return nil, err
		}
		rule.CustomKind = k
		rule.CustomPattern = values
	}
	if err := recurrence.Validate(*rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// FormatSession renders one line of session output.
func FormatSession(s models.Session) string {
	line := fmt.Sprintf("%s %s-%s  %-10s %s", s.Date, s.Time, s.End().Format("15:04"), s.Status, s.Title)
	if s.Category != "" {
		line += " [" + s.Category + "]"
	}
	if s.RecurringGroup != "" {
		line += " (recurring)"
	}
	return line + "  " + models.ShortID(s.ID)
}

// ResolveID expands a unique ID prefix, as printed by FormatSession, to the
// full session ID.
func (c *Context) ResolveID(prefix string) (string, error) {
	if prefix == "" {
		return "", qerrors.Validation("session ID is required")
	}
	sessions, err := c.Store.GetAllSessions()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, s := range sessions {
		if s.ID == prefix {
			return s.ID, nil
		}
		if models.MatchesShortID(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", qerrors.NotFound("session", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", qerrors.Validation("session ID prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
