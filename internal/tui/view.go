package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/optimizer"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.timeline.View())
	case StateSessions:
		content = docStyle.Render(m.sessionList.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateAdding:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= SessionState(len(tabTitles)) {
		active = m.previousState
	}

	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.validationWarning != "" {
		tabs = append(tabs, warningStyle.Render("  "+m.validationWarning))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errorMessage != "":
		return dangerStyle.Render("✗ " + m.errorMessage)
	case m.statusMessage != "":
		return statusStyle.Render("✓ " + m.statusMessage)
	}
	return ""
}

func (m Model) viewStats() string {
	r := m.report
	rows := [][2]string{
		{"Total sessions", fmt.Sprint(r.TotalSessions)},
		{"Completed", fmt.Sprint(r.CompletedSessions)},
		{"Upcoming", fmt.Sprint(r.UpcomingSessions)},
		{"Missed", fmt.Sprint(r.MissedSessions)},
		{"Completion rate", fmt.Sprintf("%.1f%%", r.CompletionRate)},
		{"Focused hours", fmt.Sprintf("%.1f", r.TotalHours)},
		{"Average session", fmt.Sprintf("%.0f min", r.AverageSessionMin)},
		{"Streak", fmt.Sprintf("%d day(s)", r.Streak)},
	}
	if r.MostProductiveHour >= 0 {
		rows = append(rows, [2]string{"Most productive hour", utils.FormatHour(r.MostProductiveHour)})
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]) + row[1] + "\n")
	}
	b.WriteString("\n")
	for _, insight := range optimizer.Insights(r) {
		b.WriteString("• " + insight + "\n")
	}
	if len(m.validationConflicts) > 0 {
		b.WriteString("\n" + warningStyle.Render("Conflicts:") + "\n")
		for _, c := range m.validationConflicts {
			b.WriteString("  - " + c.Description + "\n")
		}
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete session %s?", models.ShortID(m.sessionToDeleteID))),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
