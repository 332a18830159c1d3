package scheduler

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

var testNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func session(id, date, clock string, duration int) models.Session {
	return models.Session{
		ID:          id,
		Title:       "Session " + id,
		Date:        date,
		Time:        clock,
		DurationMin: duration,
		Status:      models.StatusUpcoming,
	}
}

func request(title, date, clock string, duration int) models.Request {
	return models.Request{Title: title, Date: date, Time: clock, DurationMin: duration, Category: "study"}
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

type recordingQueue struct {
	tasks []models.ScheduledTask
}

func (q *recordingQueue) Push(task models.ScheduledTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func newTestScheduler(t *testing.T, existing []models.Session, opts ...Option) (*Scheduler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	require.NoError(t, store.AppendSessions(existing))

	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	}
	return New(store, append(base, opts...)...), store
}

func allSessions(t *testing.T, store storage.SessionStore) []models.Session {
	t.Helper()
	sessions, err := store.GetAllSessions()
	require.NoError(t, err)
	return sessions
}
