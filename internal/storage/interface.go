package storage

import (
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// SessionStore holds the session collection the scheduler works against.
type SessionStore interface {
	GetAllSessions() ([]models.Session, error)
	GetSession(id string) (models.Session, error)
	AppendSessions(sessions []models.Session) error
	UpdateSession(models.Session) error
	RemoveSession(id string) error
	ReplaceAllSessions(sessions []models.Session) error
}

// TemplateStore keeps named requests for reuse.
type TemplateStore interface {
	SaveTemplate(models.Template) error
	GetTemplate(name string) (models.Template, error)
	GetTemplates() ([]models.Template, error)
}

// TaskStore persists housekeeping tasks between runs.
type TaskStore interface {
	SaveTask(models.ScheduledTask) error
	GetPendingTasks() ([]models.ScheduledTask, error)
	MarkTaskExecuted(id string, at time.Time) error
}

type SettingsStore interface {
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	SettingsStore
	SessionStore
	TemplateStore
	TaskStore

	// Utils
	GetConfigPath() string
}
