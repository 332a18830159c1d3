// Package timeline renders one day's sessions in a scrollable viewport.
package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	Date     string
	Sessions []models.Session
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.Sessions) == 0 {
		return fmt.Sprintf("No sessions on %s. Press 'a' to schedule one.", m.Date)
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay replaces the rendered day. sessions must already be sorted by start.
func (m *Model) SetDay(date string, sessions []models.Session) {
	m.Date = date
	m.Sessions = sessions
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, s := range m.Sessions {
		span := fmt.Sprintf("%s - %s", s.Time, s.End().Format(constants.TimeFormat))
		title := titleStyle.Render(s.Title)
		if s.Status.IsTerminal() {
			title = doneStyle.Render(s.Title)
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			timeStyle.Render(span),
			title,
			statusStyle.Render(string(s.Status)),
		)
	}
	m.viewport.SetContent(b.String())
}
