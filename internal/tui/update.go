package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/tui/components/sessionlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	switch m.state {
	case StateAdding:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case sessionlist.AddSessionMsg:
		return m, m.openSessionForm()
	case sessionlist.StartSessionMsg:
		m.apply("Started", msg.ID, m.scheduler.StartSession)
		return m, nil
	case sessionlist.CompleteSessionMsg:
		m.apply("Completed", msg.ID, m.scheduler.CompleteSession)
		return m, nil
	case sessionlist.CancelSessionMsg:
		m.apply("Cancelled", msg.ID, m.scheduler.CancelSession)
		return m, nil
	case sessionlist.DeleteSessionMsg:
		m.sessionToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateSessions && m.sessionList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			m.setStatus("Refreshed")
			return m, nil
		case key.Matches(msg, m.keys.Add) && m.state != StateSessions:
			return m, m.openSessionForm()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.timeline, cmd = m.timeline.Update(msg)
	case StateSessions:
		m.sessionList, cmd = m.sessionList.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitSessionForm()
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.scheduler.DeleteSession(m.sessionToDeleteID); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Deleted session %s", models.ShortID(m.sessionToDeleteID)))
		}
		m.sessionToDeleteID = ""
		m.state = m.previousState
		m.refresh()
	case key.Matches(keyMsg, m.keys.Deny):
		m.sessionToDeleteID = ""
		m.state = m.previousState
	}
	return m, nil
}

func (m *Model) apply(verb, id string, fn func(string) (models.Session, error)) {
	session, err := fn(id)
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("%s %q", verb, session.Title))
	m.refresh()
}

func (m *Model) setStatus(msg string) {
	m.statusMessage = msg
	m.errorMessage = ""
}

func (m *Model) setError(err error) {
	m.errorMessage = err.Error()
	m.statusMessage = ""
}
