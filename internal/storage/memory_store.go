package storage

import (
	"slices"
	"sort"
	"sync"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// MemoryStore is a Provider that never touches disk. Session order is
// insertion order, matching the file-backed stores.
type MemoryStore struct {
	mu        sync.RWMutex
	loaded    bool
	settings  models.Settings
	sessions  []models.Session
	templates map[string]models.Template
	tasks     map[string]models.ScheduledTask
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *MemoryStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.reset()
	}
	return nil
}

func (s *MemoryStore) reset() {
	s.loaded = true
	s.settings = models.DefaultSettings()
	s.sessions = nil
	s.templates = make(map[string]models.Template)
	s.tasks = make(map[string]models.ScheduledTask)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return ":memory:"
}

func (s *MemoryStore) GetSettings() (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.DefaultSettings(), nil
	}
	return s.settings, nil
}

func (s *MemoryStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	s.settings = settings
	return nil
}

func (s *MemoryStore) ensure() {
	if !s.loaded {
		s.reset()
	}
}

func (s *MemoryStore) GetAllSessions() ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions), nil
}

func (s *MemoryStore) GetSession(id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return models.Session{}, qerrors.NotFound("session", id)
}

func (s *MemoryStore) AppendSessions(sessions []models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sessions...)
	return nil
}

func (s *MemoryStore) UpdateSession(session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			s.sessions[i] = session
			return nil
		}
	}
	return qerrors.NotFound("session", session.ID)
}

func (s *MemoryStore) RemoveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions = slices.Delete(s.sessions, i, i+1)
			return nil
		}
	}
	return qerrors.NotFound("session", id)
}

func (s *MemoryStore) ReplaceAllSessions(sessions []models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = slices.Clone(sessions)
	return nil
}

func (s *MemoryStore) SaveTemplate(tpl models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	s.templates[tpl.Name] = tpl
	return nil
}

func (s *MemoryStore) GetTemplate(name string) (models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[name]
	if !ok {
		return models.Template{}, qerrors.NotFound("template", name)
	}
	return tpl, nil
}

func (s *MemoryStore) GetTemplates() ([]models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]models.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (s *MemoryStore) SaveTask(task models.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	s.tasks[task.ID] = task
	return nil
}

func (s *MemoryStore) GetPendingTasks() ([]models.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []models.ScheduledTask
	for _, task := range s.tasks {
		if !task.Executed {
			pending = append(pending, task)
		}
	}
	sortTasks(pending)
	return pending, nil
}

func (s *MemoryStore) MarkTaskExecuted(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return qerrors.NotFound("task", id)
	}
	task.Executed = true
	task.ExecutedAt = &at
	s.tasks[id] = task
	return nil
}

// sortTasks orders tasks by due time, then ID, so stores agree on order.
func sortTasks(tasks []models.ScheduledTask) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].DueAt.Equal(tasks[j].DueAt) {
			return tasks[i].DueAt.Before(tasks[j].DueAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
