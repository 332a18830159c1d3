package scheduler

import (
	"fmt"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// transition loads a session, applies fn and writes it back under the lock.
func (s *Scheduler) transition(id string, fn func(*models.Session) error) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(id)
	if err != nil {
		if qerrors.IsCode(err, qerrors.CodeNotFound) {
			return models.Session{}, err
		}
		return models.Session{}, qerrors.IO(err, "loading session")
	}
	if err := fn(&session); err != nil {
		return models.Session{}, err
	}
	if err := s.store.UpdateSession(session); err != nil {
		return models.Session{}, qerrors.IO(err, "updating session")
	}
	s.log.Debug("session status changed", "id", session.ID, "status", session.Status)
	return session, nil
}

func statusError(session *models.Session, action string) error {
	return qerrors.Validation("cannot %s session %s in status %s", action, session.ID, session.Status)
}

// StartSession marks an upcoming or interrupted session as active.
func (s *Scheduler) StartSession(id string) (models.Session, error) {
	return s.transition(id, func(session *models.Session) error {
		if session.Status != models.StatusUpcoming && session.Status != models.StatusIncomplete {
			return statusError(session, "start")
		}
		now := s.now()
		session.Status = models.StatusActive
		session.StartedAt = &now
		return nil
	})
}

// StopSession records that an active session ended early.
func (s *Scheduler) StopSession(id string) (models.Session, error) {
	return s.transition(id, func(session *models.Session) error {
		if session.Status != models.StatusActive {
			return statusError(session, "stop")
		}
		session.Status = models.StatusIncomplete
		return nil
	})
}

func (s *Scheduler) CompleteSession(id string) (models.Session, error) {
	return s.transition(id, func(session *models.Session) error {
		if session.Status.IsTerminal() {
			return statusError(session, "complete")
		}
		now := s.now()
		session.Status = models.StatusCompleted
		session.CompletedAt = &now
		return nil
	})
}

func (s *Scheduler) CancelSession(id string) (models.Session, error) {
	return s.transition(id, func(session *models.Session) error {
		if session.Status.IsTerminal() {
			return statusError(session, "cancel")
		}
		session.Status = models.StatusCancelled
		return nil
	})
}

func (s *Scheduler) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RemoveSession(id); err != nil {
		if qerrors.IsCode(err, qerrors.CodeNotFound) {
			return err
		}
		return qerrors.IO(err, "removing session")
	}
	s.log.Info("session deleted", "id", id)
	return nil
}

// MarkMissed moves upcoming sessions that ended before now to missed and
// returns them. Running it again with the same now changes nothing.
func (s *Scheduler) MarkMissed(now time.Time) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.store.GetAllSessions()
	if err != nil {
		return nil, qerrors.IO(err, "loading sessions")
	}

	cutoff := utils.ToWallClock(now)
	var missed []models.Session
	for _, session := range sessions {
		if session.Status != models.StatusUpcoming {
			continue
		}
		_, end, ok := session.Bounds()
		if !ok || end.After(cutoff) {
			continue
		}
		session.Status = models.StatusMissed
		if err := s.store.UpdateSession(session); err != nil {
			return missed, qerrors.IO(err, "marking session missed")
		}
		missed = append(missed, session)
	}
	if len(missed) > 0 {
		s.log.Info("marked sessions missed", "count", len(missed))
	}
	return missed, nil
}

// Snooze queues a reminder for session id minutes from now.
func (s *Scheduler) Snooze(id string, minutes int) (models.ScheduledTask, error) {
	return s.queueFollowUp(id, minutes, models.TaskSnoozeReminder)
}

// ScheduleBreak queues a break reminder that fires after minutes of rest.
func (s *Scheduler) ScheduleBreak(id string, minutes int) (models.ScheduledTask, error) {
	return s.queueFollowUp(id, minutes, models.TaskBreakReminder)
}

func (s *Scheduler) queueFollowUp(id string, minutes int, kind models.TaskType) (models.ScheduledTask, error) {
	if minutes <= 0 {
		return models.ScheduledTask{}, qerrors.Validation("minutes must be greater than zero")
	}
	if s.reminders == nil {
		return models.ScheduledTask{}, qerrors.Validation("reminders are not configured")
	}
	if _, err := s.store.GetSession(id); err != nil {
		if qerrors.IsCode(err, qerrors.CodeNotFound) {
			return models.ScheduledTask{}, err
		}
		return models.ScheduledTask{}, qerrors.IO(err, "loading session")
	}

	task := models.ScheduledTask{
		ID:        fmt.Sprintf("%s_%s", kind, s.newID()),
		Type:      kind,
		SessionID: id,
		DueAt:     s.wallNow().Add(time.Duration(minutes) * time.Minute),
		Minutes:   minutes,
	}
	if err := s.reminders.Push(task); err != nil {
		return models.ScheduledTask{}, qerrors.IO(err, "queueing reminder")
	}
	return task, nil
}
