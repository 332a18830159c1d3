package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// NewSessionForm builds the schedule form bound to fm.
func NewSessionForm(fm *SessionFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(func(s string) error {
					if len(strings.TrimSpace(s)) < 3 {
						return fmt.Errorf("title must be at least 3 characters")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&fm.Date).
				Validate(func(s string) error {
					if !utils.ValidateDateFormat(s) {
						return fmt.Errorf("invalid date format, use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&fm.Time).
				Validate(func(s string) error {
					if !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Duration (min)").
				Value(&fm.Duration).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i <= 0 {
						return fmt.Errorf("duration must be a positive number of minutes")
					}
					return nil
				}),
			huh.NewInput().
				Title("Category").
				Value(&fm.Category),
			huh.NewConfirm().
				Title("Reminders").
				Value(&fm.Notifications),
		),
	).WithTheme(huh.ThemeDracula())
}

// openSessionForm prefills the form with today's best free slot.
func (m *Model) openSessionForm() tea.Cmd {
	duration := m.settings.Preferences.SessionDurationMin
	if duration <= 0 {
		duration = 60
	}
	fm := &SessionFormModel{
		Date:          m.today(),
		Duration:      strconv.Itoa(duration),
		Notifications: true,
	}
	if slot, ok, err := m.scheduler.FindOptimalTime(fm.Date, duration, m.settings.Preferences); err == nil && ok {
		fm.Time = slot
	}

	m.sessionForm = fm
	m.form = NewSessionForm(fm)
	if m.state != StateAdding {
		m.previousState = m.state
	}
	m.state = StateAdding
	return m.form.Init()
}

func (m *Model) submitSessionForm() {
	fm := m.sessionForm
	duration, _ := strconv.Atoi(fm.Duration)
	req := models.Request{
		Title:         strings.TrimSpace(fm.Title),
		Date:          fm.Date,
		Time:          fm.Time,
		DurationMin:   duration,
		Category:      strings.TrimSpace(fm.Category),
		Notifications: fm.Notifications,
	}

	placed, err := m.scheduler.ScheduleSession(req)
	switch {
	case err != nil:
		m.setError(err)
	case len(placed) == 1 && placed[0].Time != req.Time:
		m.setStatus(fmt.Sprintf("Scheduled %q at %s %s (moved from %s)", placed[0].Title, placed[0].Date, placed[0].Time, req.Time))
	case len(placed) == 1:
		m.setStatus(fmt.Sprintf("Scheduled %q at %s %s", placed[0].Title, placed[0].Date, placed[0].Time))
	default:
		m.setStatus(fmt.Sprintf("Scheduled %q in %d parts", req.Title, len(placed)))
	}
	m.closeForm()
}

func (m *Model) closeForm() {
	m.form = nil
	m.sessionForm = nil
	m.state = m.previousState
	m.refresh()
}
