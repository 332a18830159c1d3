// Package tui is the interactive terminal front end: a day timeline, the
// session list and a stats page, with a form for scheduling new sessions.
package tui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/optimizer"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/scheduler"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/tui/components/sessionlist"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/tui/components/timeline"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/validation"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateSessions
	StateStats
	StateAdding
	StateConfirmDelete
)

var tabTitles = []string{"Today", "Sessions", "Stats"}

type SessionFormModel struct {
	Title         string
	Date          string
	Time          string
	Duration      string
	Category      string
	Notifications bool
}

type Model struct {
	store         storage.Provider
	scheduler     *scheduler.Scheduler
	settings      models.Settings
	now           func() time.Time
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	timeline      timeline.Model
	sessionList   sessionlist.Model
	form          *huh.Form
	sessionForm   *SessionFormModel
	report        optimizer.Report
	quitting      bool
	width         int
	height        int

	sessionToDeleteID   string
	statusMessage       string
	errorMessage        string
	validationWarning   string
	validationConflicts []validation.Conflict
}

func NewModel(store storage.Provider, sched *scheduler.Scheduler, settings models.Settings, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		store:       store,
		scheduler:   sched,
		settings:    settings,
		now:         now,
		state:       StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		timeline:    timeline.New(0, 0),
		sessionList: sessionlist.New(nil, 0, 0),
	}
	m.refresh()
	return m
}

func (m Model) today() string {
	return utils.ToWallClock(m.now()).Format(constants.DateFormat)
}

// refresh reloads sessions from the store into every tab.
func (m *Model) refresh() {
	sessions, err := m.store.GetAllSessions()
	if err != nil {
		m.errorMessage = fmt.Sprintf("failed to load sessions: %v", err)
		m.validationWarning = "⚠ Validation unavailable"
		m.validationConflicts = nil
		return
	}
	slices.SortStableFunc(sessions, func(a, b models.Session) int {
		return a.Start().Compare(b.Start())
	})

	today := m.today()
	var todays []models.Session
	for _, s := range sessions {
		if s.Date == today {
			todays = append(todays, s)
		}
	}
	m.timeline.SetDay(today, todays)
	m.sessionList.SetSessions(sessions)
	m.report = optimizer.Summarize(sessions, utils.ToWallClock(m.now()))
	m.updateValidationStatus(sessions)
}

func (m *Model) updateValidationStatus(sessions []models.Session) {
	result := validation.New(m.settings.Preferences).ValidateSessions(sessions)
	m.validationConflicts = result.Conflicts
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m *Model) resize() {
	// tabs, status line and help
	height := max(m.height-6, 0)
	m.timeline.SetSize(m.width-4, height)
	m.sessionList.SetSize(m.width-4, height)
	m.help.Width = m.width
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		keys = append(keys, m.keys.Add, m.keys.Refresh)
	case StateSessions:
		keys = append(keys, m.keys.Add, m.keys.Start, m.keys.Complete, m.keys.Cancel, m.keys.Delete)
	case StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Deny}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		actions = []key.Binding{m.keys.Add}
	case StateSessions:
		actions = []key.Binding{m.keys.Add, m.keys.Start, m.keys.Complete, m.keys.Cancel, m.keys.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
