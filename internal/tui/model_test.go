package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/scheduler"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/tui/components/sessionlist"
)

var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func testSession(id, date, at string, duration int) models.Session {
	return models.Session{
		ID:          id,
		Title:       "Session " + id,
		Date:        date,
		Time:        at,
		DurationMin: duration,
		Status:      models.StatusUpcoming,
		CreatedAt:   testNow,
	}
}

func newTestModel(t *testing.T, sessions ...models.Session) (Model, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	require.NoError(t, store.AppendSessions(sessions))

	sched := scheduler.New(store, scheduler.WithClock(clock))
	return NewModel(store, sched, models.DefaultSettings(), clock), store
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelLoadsToday(t *testing.T) {
	m, _ := newTestModel(t,
		testSession("b", "2024-03-01", "13:00", 60),
		testSession("a", "2024-03-01", "09:00", 60),
		testSession("c", "2024-03-02", "09:00", 60),
	)

	assert.Equal(t, StateToday, m.state)
	assert.Equal(t, "2024-03-01", m.timeline.Date)
	require.Len(t, m.timeline.Sessions, 2)
	assert.Equal(t, "a", m.timeline.Sessions[0].ID)
	assert.Empty(t, m.validationWarning)
	assert.Equal(t, 3, m.report.TotalSessions)
}

func TestValidationWarning(t *testing.T) {
	m, _ := newTestModel(t,
		testSession("a", "2024-03-01", "09:00", 60),
		testSession("b", "2024-03-01", "09:30", 60),
	)

	assert.Equal(t, "⚠ 1 validation warning(s)", m.validationWarning)
	require.Len(t, m.validationConflicts, 1)
	assert.Contains(t, m.View(), "validation warning")
}

func TestTabNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateSessions, m.state)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateStats, m.state)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateToday, m.state)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, StateStats, m.state)
	assert.Contains(t, m.View(), "Total sessions")
}

func TestLifecycleMessages(t *testing.T) {
	m, store := newTestModel(t, testSession("a", "2024-03-01", "09:00", 60))

	m = send(t, m, sessionlist.StartSessionMsg{ID: "a"})
	got, err := store.GetSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)

	m = send(t, m, sessionlist.CompleteSessionMsg{ID: "a"})
	got, err = store.GetSession("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Contains(t, m.statusMessage, "Completed")
	assert.Equal(t, 1, m.report.CompletedSessions)

	m = send(t, m, sessionlist.CancelSessionMsg{ID: "a"})
	assert.NotEmpty(t, m.errorMessage, "completed sessions cannot be cancelled")
}

func TestDeleteConfirmation(t *testing.T) {
	m, store := newTestModel(t, testSession("a", "2024-03-01", "09:00", 60))
	m.state = StateSessions

	m = send(t, m, sessionlist.DeleteSessionMsg{ID: "a"})
	assert.Equal(t, StateConfirmDelete, m.state)

	m = send(t, m, runes("n"))
	assert.Equal(t, StateSessions, m.state)
	_, err := store.GetSession("a")
	require.NoError(t, err)

	m = send(t, m, sessionlist.DeleteSessionMsg{ID: "a"})
	m = send(t, m, runes("y"))
	assert.Equal(t, StateSessions, m.state)
	_, err = store.GetSession("a")
	assert.Error(t, err)
	assert.Empty(t, m.timeline.Sessions)
}

func TestSessionFormSubmit(t *testing.T) {
	m, store := newTestModel(t, testSession("a", "2024-03-01", "09:00", 60))

	m = send(t, m, runes("a"))
	require.Equal(t, StateAdding, m.state)
	require.NotNil(t, m.sessionForm)
	assert.Equal(t, "2024-03-01", m.sessionForm.Date)
	assert.Equal(t, "60", m.sessionForm.Duration)

	m.sessionForm.Title = "Deep work"
	m.sessionForm.Time = "11:00"
	m.submitSessionForm()

	assert.Equal(t, StateToday, m.state)
	assert.Empty(t, m.errorMessage)
	all, err := store.GetAllSessions()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, m.statusMessage, "Deep work")
}

func TestSessionFormEscapeCancels(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, runes("a"))
	require.Equal(t, StateAdding, m.state)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateToday, m.state)
	assert.Nil(t, m.form)

	all, err := store.GetAllSessions()
	require.NoError(t, err)
	assert.Empty(t, all)
}
