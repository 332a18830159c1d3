package reminders

import (
	"context"
	"fmt"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/notifier"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

// Message renders the notification for task. session is the zero value
// when the task's session no longer exists.
func Message(task models.ScheduledTask, session models.Session) (title, body string) {
	switch task.Type {
	case models.TaskSessionReminder, models.TaskSnoozeReminder:
		title = "Quiet Hours Reminder"
		if task.Type == models.TaskSnoozeReminder || task.Minutes <= 0 {
			return title, fmt.Sprintf("Your %q session is about to start", session.Title)
		}
		return title, fmt.Sprintf("Your %q session starts in %d minutes", session.Title, task.Minutes)
	case models.TaskBreakReminder:
		return "Time for a Break!", fmt.Sprintf("Take a %d-minute break to recharge", task.Minutes)
	default:
		return "Quiet Hours", string(task.Type)
	}
}

// NewDispatcher returns a Handler that notifies about due tasks. Reminders
// for sessions that were deleted or are no longer upcoming are dropped.
func NewDispatcher(sessions storage.SessionStore, n notifier.Notifier, timeout time.Duration) Handler {
	return func(task models.ScheduledTask) error {
		var session models.Session
		if task.SessionID != "" {
			s, err := sessions.GetSession(task.SessionID)
			if qerrors.IsCode(err, qerrors.CodeNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			session = s
		}
		if task.Type != models.TaskBreakReminder && session.Status != models.StatusUpcoming {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		title, body := Message(task, session)
		return n.Notify(ctx, title, body)
	}
}
