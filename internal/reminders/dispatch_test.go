package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

type capture struct {
	titles []string
	bodies []string
}

func (c *capture) Notify(_ context.Context, title, body string) error {
	c.titles = append(c.titles, title)
	c.bodies = append(c.bodies, body)
	return nil
}

func TestMessage(t *testing.T) {
	session := models.Session{Title: "Deep work"}

	title, body := Message(models.ScheduledTask{Type: models.TaskSessionReminder, Minutes: 10}, session)
	assert.Equal(t, "Quiet Hours Reminder", title)
	assert.Equal(t, `Your "Deep work" session starts in 10 minutes`, body)

	_, body = Message(models.ScheduledTask{Type: models.TaskSnoozeReminder, Minutes: 5}, session)
	assert.Equal(t, `Your "Deep work" session is about to start`, body)

	title, body = Message(models.ScheduledTask{Type: models.TaskBreakReminder, Minutes: 15}, session)
	assert.Equal(t, "Time for a Break!", title)
	assert.Equal(t, "Take a 15-minute break to recharge", body)
}

func TestDispatcher(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	require.NoError(t, store.AppendSessions([]models.Session{
		{ID: "up", Title: "Reading", Status: models.StatusUpcoming},
		{ID: "done", Title: "Writing", Status: models.StatusCompleted},
	}))

	sink := &capture{}
	dispatch := NewDispatcher(store, sink, time.Second)

	require.NoError(t, dispatch(models.ScheduledTask{Type: models.TaskSessionReminder, SessionID: "up", Minutes: 10}))
	require.NoError(t, dispatch(models.ScheduledTask{Type: models.TaskSessionReminder, SessionID: "done", Minutes: 10}))
	require.NoError(t, dispatch(models.ScheduledTask{Type: models.TaskSessionReminder, SessionID: "deleted", Minutes: 10}))
	require.NoError(t, dispatch(models.ScheduledTask{Type: models.TaskBreakReminder, SessionID: "done", Minutes: 15}))

	assert.Equal(t, []string{"Quiet Hours Reminder", "Time for a Break!"}, sink.titles)
}
