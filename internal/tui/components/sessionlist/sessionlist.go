package sessionlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type AddSessionMsg struct{}

type StartSessionMsg struct {
	ID string
}

type CompleteSessionMsg struct {
	ID string
}

type CancelSessionMsg struct {
	ID string
}

type DeleteSessionMsg struct {
	ID string
}

type Item struct {
	Session models.Session
}

func (i Item) Title() string {
	if i.Session.RecurringGroup != "" {
		return i.Session.Title + " ↻"
	}
	return i.Session.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s %s | %d min | %s", i.Session.Date, i.Session.Time, i.Session.DurationMin, i.Session.Status)
	if i.Session.Category != "" {
		desc += " | " + i.Session.Category
	}
	return desc
}

func (i Item) FilterValue() string { return i.Session.Title + " " + i.Session.Category }

type KeyMap struct {
	Add      key.Binding
	Start    key.Binding
	Complete key.Binding
	Cancel   key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(sessions []models.Session, width, height int) Model {
	l := list.New(items(sessions), list.NewDefaultDelegate(), width, height)
	l.Title = "Sessions"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	bindings := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.Complete, keys.Cancel, keys.Delete}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	return Model{list: l, keys: keys}
}

func items(sessions []models.Session) []list.Item {
	out := make([]list.Item, len(sessions))
	for i, s := range sessions {
		out[i] = Item{Session: s}
	}
	return out
}

func (m *Model) SetSessions(sessions []models.Session) {
	m.list.SetItems(items(sessions))
}

// Selected returns the highlighted session, if any.
func (m Model) Selected() (models.Session, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Session, ok
}

// Filtering reports whether the filter prompt is capturing keys.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddSessionMsg{} }
		}
		if s, ok := m.Selected(); ok {
			id := s.ID
			switch {
			case key.Matches(msg, m.keys.Start):
				return m, func() tea.Msg { return StartSessionMsg{ID: id} }
			case key.Matches(msg, m.keys.Complete):
				return m, func() tea.Msg { return CompleteSessionMsg{ID: id} }
			case key.Matches(msg, m.keys.Cancel):
				return m, func() tea.Msg { return CancelSessionMsg{ID: id} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteSessionMsg{ID: id} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No sessions yet.\n  Press 'a' to schedule one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
