package constants

const (
	// General Settings
	SettingReminderMinutes   = "reminder_minutes"
	SettingSnoozeMinutes     = "snooze_minutes"
	SettingBreakMinutes      = "break_minutes"
	SettingEnforceFuture     = "enforce_future"
	SettingPreferredHours    = "preferred_hours"
	SettingAvoidHours        = "avoid_hours"
	SettingMinGapMin         = "min_gap_min"
	SettingMaxSessionsPerDay = "max_sessions_per_day"
	SettingSessionDuration   = "session_duration_min"

	// Default Settings Values
	DefaultReminderMinutes   = 10
	DefaultSnoozeMinutes     = 5
	DefaultBreakMinutes      = 15
	DefaultEnforceFuture     = true
	DefaultMinGapMin         = 30
	DefaultMaxSessionsPerDay = 4
	DefaultSessionDuration   = 60
)

// DefaultPreferredHours is ordered by preference; lunch is avoided by default.
var (
	DefaultPreferredHours = []int{9, 10, 11, 14, 15, 16}
	DefaultAvoidHours     = []int{12, 13}
)
