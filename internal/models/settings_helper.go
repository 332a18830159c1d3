package models

import (
	"fmt"
	"slices"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		var err error
		switch key {
		case constants.SettingReminderMinutes:
			_, err = fmt.Sscanf(value, "%d", &settings.ReminderMinutes)
		case constants.SettingSnoozeMinutes:
			_, err = fmt.Sscanf(value, "%d", &settings.SnoozeMinutes)
		case constants.SettingBreakMinutes:
			_, err = fmt.Sscanf(value, "%d", &settings.BreakMinutes)
		case constants.SettingEnforceFuture:
			settings.EnforceFuture = value == "true"
		case constants.SettingPreferredHours:
			settings.Preferences.PreferredHours, err = utils.ParseIntList(value)
		case constants.SettingAvoidHours:
			settings.Preferences.AvoidHours, err = utils.ParseIntList(value)
		case constants.SettingMinGapMin:
			_, err = fmt.Sscanf(value, "%d", &settings.Preferences.MinGapMin)
		case constants.SettingMaxSessionsPerDay:
			_, err = fmt.Sscanf(value, "%d", &settings.Preferences.MaxSessionsPerDay)
		case constants.SettingSessionDuration:
			_, err = fmt.Sscanf(value, "%d", &settings.Preferences.SessionDurationMin)
		}
		if err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingReminderMinutes:   fmt.Sprintf("%d", settings.ReminderMinutes),
		constants.SettingSnoozeMinutes:     fmt.Sprintf("%d", settings.SnoozeMinutes),
		constants.SettingBreakMinutes:      fmt.Sprintf("%d", settings.BreakMinutes),
		constants.SettingEnforceFuture:     fmt.Sprintf("%v", settings.EnforceFuture),
		constants.SettingPreferredHours:    utils.FormatIntList(settings.Preferences.PreferredHours),
		constants.SettingAvoidHours:        utils.FormatIntList(settings.Preferences.AvoidHours),
		constants.SettingMinGapMin:         fmt.Sprintf("%d", settings.Preferences.MinGapMin),
		constants.SettingMaxSessionsPerDay: fmt.Sprintf("%d", settings.Preferences.MaxSessionsPerDay),
		constants.SettingSessionDuration:   fmt.Sprintf("%d", settings.Preferences.SessionDurationMin),
	}
}

// DefaultSettings returns the settings a fresh store is initialised with.
func DefaultSettings() Settings {
	return Settings{
		ReminderMinutes: constants.DefaultReminderMinutes,
		SnoozeMinutes:   constants.DefaultSnoozeMinutes,
		BreakMinutes:    constants.DefaultBreakMinutes,
		EnforceFuture:   constants.DefaultEnforceFuture,
		Preferences:     DefaultPreferences(),
	}
}

// DefaultPreferences returns the slot-search preferences used when none are stored.
func DefaultPreferences() Preferences {
	return Preferences{
		PreferredHours:     slices.Clone(constants.DefaultPreferredHours),
		AvoidHours:         slices.Clone(constants.DefaultAvoidHours),
		MinGapMin:          constants.DefaultMinGapMin,
		MaxSessionsPerDay:  constants.DefaultMaxSessionsPerDay,
		SessionDurationMin: constants.DefaultSessionDuration,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.ReminderMinutes == 0 {
		settings.ReminderMinutes = constants.DefaultReminderMinutes
	}
	if settings.SnoozeMinutes == 0 {
		settings.SnoozeMinutes = constants.DefaultSnoozeMinutes
	}
	if settings.BreakMinutes == 0 {
		settings.BreakMinutes = constants.DefaultBreakMinutes
	}
	ApplyDefaultPreferences(&settings.Preferences)
}

// ApplyDefaultPreferences fills unset preference fields. An explicitly empty
// avoid list is kept only when preferred hours were also provided.
func ApplyDefaultPreferences(prefs *Preferences) {
	if len(prefs.PreferredHours) == 0 {
		prefs.PreferredHours = slices.Clone(constants.DefaultPreferredHours)
		if prefs.AvoidHours == nil {
			prefs.AvoidHours = slices.Clone(constants.DefaultAvoidHours)
		}
	}
	if prefs.MinGapMin < 0 {
		prefs.MinGapMin = 0
	}
	if prefs.MaxSessionsPerDay == 0 {
		prefs.MaxSessionsPerDay = constants.DefaultMaxSessionsPerDay
	}
	if prefs.SessionDurationMin == 0 {
		prefs.SessionDurationMin = constants.DefaultSessionDuration
	}
}
