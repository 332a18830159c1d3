package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func TestSessionLifecycle(t *testing.T) {
	s, store := newTestScheduler(t, []models.Session{session("a", "2024-01-15", "10:00", 60)})

	started, err := s.StartSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, testNow, *started.StartedAt)

	_, err = s.StartSession("a")
	assert.True(t, qerrors.IsCode(err, qerrors.CodeValidation))

	stopped, err := s.StopSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, stopped.Status)

	_, err = s.StartSession("a")
	require.NoError(t, err)

	completed, err := s.CompleteSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = s.CancelSession("a")
	assert.True(t, qerrors.IsCode(err, qerrors.CodeValidation))

	stored, err := store.GetSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	require.NoError(t, s.DeleteSession("a"))
	assert.True(t, qerrors.IsCode(s.DeleteSession("a"), qerrors.CodeNotFound))
}

func TestCancelledSessionFreesItsSlot(t *testing.T) {
	s, _ := newTestScheduler(t, []models.Session{session("a", "2024-01-15", "10:00", 60)})

	_, err := s.CancelSession("a")
	require.NoError(t, err)

	got, err := s.ScheduleSession(request("Replacement", "2024-01-15", "10:00", 60))
	require.NoError(t, err)
	assert.Equal(t, "10:00", got[0].Time)
}

func TestLifecycleUnknownSession(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	_, err := s.StartSession("missing")
	assert.True(t, qerrors.IsCode(err, qerrors.CodeNotFound))
	_, err = s.CompleteSession("missing")
	assert.True(t, qerrors.IsCode(err, qerrors.CodeNotFound))
}

func TestMarkMissed(t *testing.T) {
	done := session("done", "2024-01-01", "05:00", 30)
	done.Status = models.StatusCompleted
	s, store := newTestScheduler(t, []models.Session{
		session("over", "2024-01-01", "06:00", 60),
		session("running", "2024-01-01", "07:30", 60),
		session("later", "2024-01-02", "09:00", 60),
		done,
	})

	missed, err := s.MarkMissed(testNow)
	require.NoError(t, err)
	require.Len(t, missed, 1)
	assert.Equal(t, "over", missed[0].ID)

	stored, err := store.GetSession("over")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMissed, stored.Status)

	again, err := s.MarkMissed(testNow)
	require.NoError(t, err)
	assert.Empty(t, again)

	later, err := s.MarkMissed(testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "running", later[0].ID)
}

func TestSnoozeAndBreak(t *testing.T) {
	q := &recordingQueue{}
	s, _ := newTestScheduler(t, []models.Session{session("a", "2024-01-01", "09:00", 60)}, WithReminders(q, 10))

	snooze, err := s.Snooze("a", 5)
	require.NoError(t, err)
	assert.Equal(t, models.TaskSnoozeReminder, snooze.Type)
	assert.Equal(t, testNow.Add(5*time.Minute), snooze.DueAt)

	brk, err := s.ScheduleBreak("a", 15)
	require.NoError(t, err)
	assert.Equal(t, models.TaskBreakReminder, brk.Type)
	assert.Equal(t, 15, brk.Minutes)

	assert.Len(t, q.tasks, 2)

	_, err = s.Snooze("missing", 5)
	assert.True(t, qerrors.IsCode(err, qerrors.CodeNotFound))
	_, err = s.Snooze("a", 0)
	assert.True(t, qerrors.IsCode(err, qerrors.CodeValidation))
}

func TestSnoozeWithoutReminders(t *testing.T) {
	s, _ := newTestScheduler(t, []models.Session{session("a", "2024-01-01", "09:00", 60)})
	_, err := s.Snooze("a", 5)
	assert.True(t, qerrors.IsCode(err, qerrors.CodeValidation))
}
