package models

// Preferences steer slot searches and suggestions.
type Preferences struct {
	PreferredHours     []int `json:"preferred_hours" yaml:"preferred_hours"` // ordered by preference
	AvoidHours         []int `json:"avoid_hours" yaml:"avoid_hours"`
	MinGapMin          int   `json:"min_gap_min" yaml:"min_gap_min"` // buffer required around neighbours
	MaxSessionsPerDay  int   `json:"max_sessions_per_day" yaml:"max_sessions_per_day"`
	SessionDurationMin int   `json:"session_duration_min" yaml:"session_duration_min"` // used by suggestions
}

// Settings represents application-wide settings
type Settings struct {
	ReminderMinutes int         `json:"reminder_minutes"` // lead time of session reminders
	SnoozeMinutes   int         `json:"snooze_minutes"`   // default snooze length
	BreakMinutes    int         `json:"break_minutes"`    // default break after a completed session
	EnforceFuture   bool        `json:"enforce_future"`   // reject requests that start in the past
	Preferences     Preferences `json:"preferences"`
}
