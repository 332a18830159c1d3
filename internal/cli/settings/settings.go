package settings

import (
	"fmt"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	ReminderMinutes *int    `help:"Minutes before a session to send its reminder."`
	SnoozeMinutes   *int    `help:"Default snooze length in minutes."`
	BreakMinutes    *int    `help:"Default break length after a completed session."`
	EnforceFuture   *bool   `help:"Reject sessions that start in the past." negatable:""`
	PreferredHours  *string `help:"Preferred start hours, best first (e.g. 9,10,14)."`
	AvoidHours      *string `help:"Hours never suggested (e.g. 12,13)."`
	MinGap          *int    `help:"Minutes kept free around neighbouring sessions."`
	MaxPerDay       *int    `help:"Maximum sessions per day considered by slot search."`
	SessionDuration *int    `help:"Session length used for suggestions, in minutes."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		effective, err := ctx.Settings()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		printSettings(ctx, settings, effective)
		return nil
	}

	updated, err := c.apply(&settings)
	if err != nil {
		return err
	}
	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.ResetScheduler()
	ctx.Println("Settings updated successfully.")
	return nil
}

// apply writes every given flag onto settings, validating each value.
func (c *SettingsCmd) apply(settings *models.Settings) (bool, error) {
	updated := false
	positive := func(name string, value *int, dst *int) error {
		if value == nil {
			return nil
		}
		if *value <= 0 {
			return qerrors.Validation("%s must be greater than zero", name)
		}
		*dst = *value
		updated = true
		return nil
	}
	hours := func(name string, value *string, dst *[]int, allowEmpty bool) error {
		if value == nil {
			return nil
		}
		parsed, err := utils.ParseIntList(*value)
		if err != nil {
			return qerrors.Validation("invalid %s: %v", name, err)
		}
		if len(parsed) == 0 && !allowEmpty {
			return qerrors.Validation("%s cannot be empty", name)
		}
		for _, h := range parsed {
			if h < 0 || h > 23 {
				return qerrors.Validation("%s: hour %d out of range 0-23", name, h)
			}
		}
		*dst = parsed
		updated = true
		return nil
	}

	prefs := &settings.Preferences
	for _, step := range []func() error{
		func() error { return positive("reminder minutes", c.ReminderMinutes, &settings.ReminderMinutes) },
		func() error { return positive("snooze minutes", c.SnoozeMinutes, &settings.SnoozeMinutes) },
		func() error { return positive("break minutes", c.BreakMinutes, &settings.BreakMinutes) },
		func() error { return hours("preferred hours", c.PreferredHours, &prefs.PreferredHours, false) },
		func() error { return hours("avoid hours", c.AvoidHours, &prefs.AvoidHours, true) },
		func() error { return positive("max sessions per day", c.MaxPerDay, &prefs.MaxSessionsPerDay) },
		func() error { return positive("session duration", c.SessionDuration, &prefs.SessionDurationMin) },
	} {
		if err := step(); err != nil {
			return false, err
		}
	}

	if c.MinGap != nil {
		if *c.MinGap < 0 {
			return false, qerrors.Validation("min gap cannot be negative")
		}
		prefs.MinGapMin = *c.MinGap
		updated = true
	}
	if c.EnforceFuture != nil {
		settings.EnforceFuture = *c.EnforceFuture
		updated = true
	}
	return updated, nil
}

func printSettings(ctx *cli.Context, stored, effective models.Settings) {
	row := func(label, value, active string) {
		if value != active {
			ctx.Printf("  %-22s %s (overridden: %s)\n", label, value, active)
			return
		}
		ctx.Printf("  %-22s %s\n", label, value)
	}
	minutes := func(v int) string { return fmt.Sprintf("%d min", v) }

	ctx.Println("Current Settings:")
	row("Reminder:", minutes(stored.ReminderMinutes), minutes(effective.ReminderMinutes))
	row("Snooze:", minutes(stored.SnoozeMinutes), minutes(effective.SnoozeMinutes))
	row("Break:", minutes(stored.BreakMinutes), minutes(effective.BreakMinutes))
	row("Enforce future:", fmt.Sprint(stored.EnforceFuture), fmt.Sprint(effective.EnforceFuture))

	sp, ep := stored.Preferences, effective.Preferences
	ctx.Println("\nPreferences:")
	row("Preferred hours:", utils.FormatIntList(sp.PreferredHours), utils.FormatIntList(ep.PreferredHours))
	row("Avoid hours:", utils.FormatIntList(sp.AvoidHours), utils.FormatIntList(ep.AvoidHours))
	row("Min gap:", minutes(sp.MinGapMin), minutes(ep.MinGapMin))
	row("Max per day:", fmt.Sprint(sp.MaxSessionsPerDay), fmt.Sprint(ep.MaxSessionsPerDay))
	row("Session duration:", minutes(sp.SessionDurationMin), minutes(ep.SessionDurationMin))
}
