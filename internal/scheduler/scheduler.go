package scheduler

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/optimizer"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/recurrence"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// ReminderQueue accepts housekeeping tasks produced while scheduling.
type ReminderQueue interface {
	Push(models.ScheduledTask) error
}

type Option func(*Scheduler)

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Scheduler) { s.newID = gen }
}

// WithReminders enqueues a reminder leadMin minutes before every committed
// session that has notifications enabled.
func WithReminders(q ReminderQueue, leadMin int) Option {
	return func(s *Scheduler) {
		s.reminders = q
		s.reminderLead = leadMin
	}
}

// WithFutureOnly rejects requests whose start is not after the current time.
func WithFutureOnly(enabled bool) Option {
	return func(s *Scheduler) { s.futureOnly = enabled }
}

func WithTemplateStore(ts storage.TemplateStore) Option {
	return func(s *Scheduler) { s.templates = ts }
}

// Scheduler places sessions into a SessionStore, resolving overlaps. The
// detect-then-commit sequence is serialised so concurrent callers cannot
// both commit into the same free slot.
type Scheduler struct {
	mu           sync.Mutex
	store        storage.SessionStore
	templates    storage.TemplateStore
	resolver     *Resolver
	reminders    ReminderQueue
	reminderLead int
	futureOnly   bool
	now          func() time.Time
	newID        func() string
	log          *log.Logger
}

func New(store storage.SessionStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        store,
		resolver:     NewResolver(),
		reminderLead: constants.DefaultReminderMinutes,
		now:          time.Now,
		newID:        uuid.NewString,
		log:          logger.Named("scheduler"),
	}
	if ts, ok := store.(storage.TemplateStore); ok {
		s.templates = ts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wallNow is the current time on the naive wall-clock calendar sessions use.
func (s *Scheduler) wallNow() time.Time {
	return utils.ToWallClock(s.now())
}

// ScheduleSession validates req and commits it, resolving any overlap. It
// returns every session that was committed: one session, the fragments of a
// split, or the occurrences of a recurring request.
func (s *Scheduler) ScheduleSession(req models.Request) ([]models.Session, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := req.Candidate(s.newID(), s.now())
	if req.Recurring != nil {
		first, ok, err := firstOccurrence(*req.Recurring, req.Date)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.Session{}, nil
		}
		// The base date need not match the rule (a Saturday base for a
		// weekdays series); conflicts are checked on the first real date.
		req = req.WithSlot(first, req.Time)
		candidate.Date = first
	}
	return s.schedule(req, candidate, 0)
}

func firstOccurrence(rule models.RecurrenceRule, date string) (string, bool, error) {
	base, err := utils.ParseDate(date)
	if err != nil {
		return "", false, qerrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	dates, err := recurrence.Expand(rule, base, time.Time{})
	if err != nil {
		return "", false, err
	}
	for d := range dates {
		return d.Format(constants.DateFormat), true, nil
	}
	return "", false, nil
}

func (s *Scheduler) schedule(req models.Request, candidate models.Session, depth int) ([]models.Session, error) {
	existing, err := s.store.GetAllSessions()
	if err != nil {
		return nil, qerrors.IO(err, "loading sessions")
	}

	conflicts := FindConflicts(candidate, existing)
	if len(conflicts) == 0 {
		if req.Recurring != nil {
			return s.scheduleRecurring(*req.Recurring, candidate, existing)
		}
		return s.commit([]models.Session{candidate})
	}

	var decision Decision
	if req.Force {
		decision = s.resolver.ForceReplace(conflicts)
	} else {
		var notBefore time.Time
		if s.futureOnly {
			notBefore = s.wallNow()
		}
		decision = s.resolver.ResolveAfter(candidate, conflicts, existing, notBefore)
	}

	switch d := decision.(type) {
	case Adjust:
		if depth >= 1 {
			return nil, qerrors.Conflict("adjusted slot is no longer free", conflicts)
		}
		s.log.Info("shifting session to avoid conflict", "title", candidate.Title, "from", candidate.Time, "to", d.Candidate.Time)
		return s.schedule(req.WithSlot(d.Candidate.Date, d.Candidate.Time), d.Candidate, depth+1)

	case Split:
		accepted := s.acceptFragments(d.Fragments, existing)
		if len(accepted) == 0 {
			return nil, qerrors.Conflict("no conflict-free fragment could be placed", conflicts)
		}
		s.log.Info("splitting session around conflicts", "title", candidate.Title, "fragments", len(accepted))
		return s.commit(accepted)

	case Replace:
		for _, id := range d.IDs {
			if err := s.store.RemoveSession(id); err != nil {
				return nil, qerrors.IO(err, "removing conflicting session "+id)
			}
		}
		s.log.Warn("replaced conflicting sessions", "title", candidate.Title, "removed", len(d.IDs))
		if req.Recurring != nil {
			remaining, err := s.store.GetAllSessions()
			if err != nil {
				return nil, qerrors.IO(err, "loading sessions")
			}
			return s.scheduleRecurring(*req.Recurring, candidate, remaining)
		}
		return s.commit([]models.Session{candidate})

	case Reject:
		return nil, qerrors.Conflict(d.Reason, conflicts)

	default:
		return nil, qerrors.Conflict("unresolvable conflict", conflicts)
	}
}

// acceptFragments keeps the fragments that collide with neither the store
// nor a fragment accepted before them.
func (s *Scheduler) acceptFragments(fragments, existing []models.Session) []models.Session {
	pool := append([]models.Session(nil), existing...)
	var accepted []models.Session
	for _, f := range fragments {
		if len(FindConflicts(f, pool)) > 0 {
			s.log.Debug("dropping fragment that collides with stored sessions", "id", f.ID, "time", f.Time)
			continue
		}
		accepted = append(accepted, f)
		pool = append(pool, f)
	}
	return accepted
}

// scheduleRecurring commits every occurrence of rule that does not collide
// with the store or an earlier occurrence. Colliding occurrences are skipped.
func (s *Scheduler) scheduleRecurring(rule models.RecurrenceRule, base models.Session, existing []models.Session) ([]models.Session, error) {
	baseDate, err := utils.ParseDate(base.Date)
	if err != nil {
		return nil, qerrors.Validation("invalid date %q, expected YYYY-MM-DD", base.Date)
	}
	dates, err := recurrence.Expand(rule, baseDate, time.Time{})
	if err != nil {
		return nil, err
	}

	group := base.ID
	pool := append([]models.Session(nil), existing...)
	var accepted []models.Session
	skipped := 0
	for d := range dates {
		occ := base
		occ.ID = s.newID()
		occ.Date = d.Format(constants.DateFormat)
		occ.RecurringGroup = group
		if len(FindConflicts(occ, pool)) > 0 {
			skipped++
			continue
		}
		accepted = append(accepted, occ)
		pool = append(pool, occ)
	}

	if skipped > 0 {
		s.log.Info("skipped conflicting occurrences", "group", group, "skipped", skipped, "committed", len(accepted))
	}
	if len(accepted) == 0 {
		return []models.Session{}, nil
	}
	return s.commit(accepted)
}

func (s *Scheduler) commit(sessions []models.Session) ([]models.Session, error) {
	if err := s.store.AppendSessions(sessions); err != nil {
		return nil, qerrors.IO(err, "saving sessions")
	}
	for _, session := range sessions {
		s.log.Debug("session committed", "id", session.ID, "date", session.Date, "time", session.Time, "duration", session.DurationMin)
		s.enqueueReminder(session)
	}
	return sessions, nil
}

func (s *Scheduler) enqueueReminder(session models.Session) {
	if s.reminders == nil || !session.Notifications {
		return
	}
	start, _, ok := session.Bounds()
	if !ok {
		return
	}
	due := start.Add(-time.Duration(s.reminderLead) * time.Minute)
	if !due.After(s.wallNow()) {
		return
	}
	task := models.ScheduledTask{
		ID:        s.newID(),
		Type:      models.TaskSessionReminder,
		SessionID: session.ID,
		DueAt:     due,
		Minutes:   s.reminderLead,
	}
	if err := s.reminders.Push(task); err != nil {
		s.log.Warn("failed to queue reminder", "session", session.ID, "error", err)
	}
}

func (s *Scheduler) validate(req models.Request) error {
	if len(strings.TrimSpace(req.Title)) < constants.MinTitleLength {
		return qerrors.Validation("title must be at least %d characters", constants.MinTitleLength)
	}
	if req.Date == "" {
		return qerrors.Validation("date is required")
	}
	if !utils.ValidateDateFormat(req.Date) {
		return qerrors.Validation("invalid date %q, expected YYYY-MM-DD", req.Date)
	}
	if req.Time == "" {
		return qerrors.Validation("time is required")
	}
	if !utils.ValidateTimeFormat(req.Time) {
		return qerrors.Validation("invalid time %q, expected HH:MM", req.Time)
	}
	if req.DurationMin <= 0 {
		return qerrors.Validation("duration must be greater than zero")
	}
	if req.Recurring != nil {
		if err := recurrence.Validate(*req.Recurring); err != nil {
			return err
		}
	}
	if s.futureOnly {
		start, err := utils.WallClock(req.Date, req.Time)
		if err == nil && !start.After(s.wallNow()) {
			return qerrors.Validation("session start %s %s is not in the future", req.Date, req.Time)
		}
	}
	return nil
}

// BatchFailure records why one request of a batch was not scheduled.
type BatchFailure struct {
	Index   int
	Request models.Request
	Reason  string
	Err     error
}

type BatchResult struct {
	Successful []models.Session
	Failed     []BatchFailure
}

// BatchSchedule schedules each request independently, in order. A failing
// request never prevents later ones from being attempted.
func (s *Scheduler) BatchSchedule(reqs []models.Request) BatchResult {
	var result BatchResult
	for i, req := range reqs {
		sessions, err := s.ScheduleSession(req)
		if err != nil {
			result.Failed = append(result.Failed, BatchFailure{Index: i, Request: req, Reason: err.Error(), Err: err})
			continue
		}
		result.Successful = append(result.Successful, sessions...)
	}
	return result
}

// FindOptimalTime searches date for a free preferred hour against the store.
func (s *Scheduler) FindOptimalTime(date string, duration int, prefs models.Preferences) (string, bool, error) {
	sessions, err := s.store.GetAllSessions()
	if err != nil {
		return "", false, qerrors.IO(err, "loading sessions")
	}
	clock, ok := FindOptimalTime(date, duration, prefs, sessions)
	return clock, ok, nil
}

// SuggestSchedule proposes one slot per day for the week starting tomorrow,
// best historical match first. Days without a free slot are left out.
func (s *Scheduler) SuggestSchedule(prefs models.Preferences) ([]optimizer.Suggestion, error) {
	sessions, err := s.store.GetAllSessions()
	if err != nil {
		return nil, qerrors.IO(err, "loading sessions")
	}

	duration := prefs.SessionDurationMin
	if duration <= 0 {
		duration = constants.DefaultSessionDuration
	}

	patterns := optimizer.AnalyzeHistorical(sessions)
	today := utils.StartOfDay(s.wallNow())
	suggestions := []optimizer.Suggestion{}
	for i := 1; i <= constants.LookaheadDays; i++ {
		day := today.AddDate(0, 0, i)
		date := day.Format(constants.DateFormat)
		clock, ok := FindOptimalTime(date, duration, prefs, sessions)
		if !ok {
			continue
		}
		suggestions = append(suggestions, optimizer.Suggestion{
			Date:       date,
			Time:       clock,
			Confidence: optimizer.Confidence(day, clock, patterns),
		})
	}
	optimizer.SortSuggestions(suggestions)
	return suggestions, nil
}
