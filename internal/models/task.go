package models

import "time"

type TaskType string

const (
	TaskSessionReminder TaskType = "session_reminder"
	TaskBreakReminder   TaskType = "break_reminder"
	TaskSnoozeReminder  TaskType = "snooze_reminder"
)

// ScheduledTask is a unit of deferred housekeeping work, executed at most once.
type ScheduledTask struct {
	ID         string     `json:"id"`
	Type       TaskType   `json:"type"`
	SessionID  string     `json:"session_id,omitempty"`
	DueAt      time.Time  `json:"due_at"`
	Minutes    int        `json:"minutes,omitempty"` // reminder lead time or break length
	Executed   bool       `json:"executed"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}
