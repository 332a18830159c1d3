package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// document is the on-disk layout of a JSONStore.
type document struct {
	Version   int                             `json:"version"`
	Settings  map[string]string               `json:"settings"`
	Sessions  []models.Session                `json:"sessions"`
	Templates map[string]models.Template      `json:"templates"`
	Tasks     map[string]models.ScheduledTask `json:"tasks"`
}

// JSONStore keeps everything in one JSON file. Every mutation re-reads the
// file, applies the change to that fresh copy and renames it into place, so
// writes from other processes are kept and a failed write leaves the cached
// copy untouched. Reads re-parse the file when it changed on disk.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	store *document
	stamp fileStamp
}

// fileStamp identifies the version of the file the cache was read from.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return qerrors.IO(err, "failed to create config directory")
	}

	if _, err := os.Stat(s.path); err == nil {
		return qerrors.Validation("storage already initialized at %s", s.path)
	}

	return s.save(&document{
		Version:   1,
		Settings:  models.SettingsToMap(models.DefaultSettings()),
		Templates: make(map[string]models.Template),
		Tasks:     make(map[string]models.ScheduledTask),
	})
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, stamp, err := s.read()
	if err != nil {
		return err
	}
	s.store, s.stamp = doc, stamp
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// read parses the file as it is on disk now.
func (s *JSONStore) read() (*document, fileStamp, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fileStamp{}, qerrors.IO(err, "storage not initialized, run 'quiethours init' first")
		}
		return nil, fileStamp{}, qerrors.IO(err, "failed to read storage")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fileStamp{}, qerrors.IO(err, "failed to read storage")
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fileStamp{}, qerrors.IO(err, "failed to parse storage")
	}
	if doc.Templates == nil {
		doc.Templates = make(map[string]models.Template)
	}
	if doc.Tasks == nil {
		doc.Tasks = make(map[string]models.ScheduledTask)
	}
	return doc, stampOf(info), nil
}

// save writes doc to a temp file, renames it over the store and, only once
// that succeeded, makes doc the cached copy.
func (s *JSONStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return qerrors.IO(err, "failed to serialize storage")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return qerrors.IO(err, "failed to write storage")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return qerrors.IO(err, "failed to write storage")
	}

	s.store = doc
	if info, err := os.Stat(s.path); err == nil {
		s.stamp = stampOf(info)
	} else {
		s.stamp = fileStamp{}
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.store == nil {
		return qerrors.IO(fmt.Errorf("storage not loaded"), s.path)
	}
	return nil
}

// current returns the cached document, re-reading the file first when it
// changed since it was cached.
func (s *JSONStore) current() (*document, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, qerrors.IO(err, "failed to read storage")
	}
	if stampOf(info) == s.stamp {
		return s.store, nil
	}
	doc, stamp, err := s.read()
	if err != nil {
		return nil, err
	}
	s.store, s.stamp = doc, stamp
	return doc, nil
}

// mutate applies fn to a fresh copy of the file and saves it. An error from
// fn or from the write discards the copy.
func (s *JSONStore) mutate(fn func(doc *document) error) error {
	if err := s.loaded(); err != nil {
		return err
	}
	doc, _, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return models.Settings{}, err
	}
	settings, err := models.MapToSettings(doc.Settings)
	if err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to parse settings")
	}
	return settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		doc.Settings = models.SettingsToMap(settings)
		return nil
	})
}

func (s *JSONStore) GetAllSessions() ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(doc.Sessions), nil
}

func (s *JSONStore) GetSession(id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return models.Session{}, err
	}
	for _, session := range doc.Sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return models.Session{}, qerrors.NotFound("session", id)
}

func (s *JSONStore) AppendSessions(sessions []models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		doc.Sessions = append(doc.Sessions, sessions...)
		return nil
	})
}

func (s *JSONStore) UpdateSession(session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		for i := range doc.Sessions {
			if doc.Sessions[i].ID == session.ID {
				doc.Sessions[i] = session
				return nil
			}
		}
		return qerrors.NotFound("session", session.ID)
	})
}

func (s *JSONStore) RemoveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		for i := range doc.Sessions {
			if doc.Sessions[i].ID == id {
				doc.Sessions = slices.Delete(doc.Sessions, i, i+1)
				return nil
			}
		}
		return qerrors.NotFound("session", id)
	})
}

func (s *JSONStore) ReplaceAllSessions(sessions []models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		doc.Sessions = slices.Clone(sessions)
		return nil
	})
}

func (s *JSONStore) SaveTemplate(tpl models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		doc.Templates[tpl.Name] = tpl
		return nil
	})
}

func (s *JSONStore) GetTemplate(name string) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return models.Template{}, err
	}
	tpl, ok := doc.Templates[name]
	if !ok {
		return models.Template{}, qerrors.NotFound("template", name)
	}
	return tpl, nil
}

func (s *JSONStore) GetTemplates() ([]models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	templates := make([]models.Template, 0, len(doc.Templates))
	for _, tpl := range doc.Templates {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (s *JSONStore) SaveTask(task models.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		doc.Tasks[task.ID] = task
		return nil
	})
}

func (s *JSONStore) GetPendingTasks() ([]models.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	var pending []models.ScheduledTask
	for _, task := range doc.Tasks {
		if !task.Executed {
			pending = append(pending, task)
		}
	}
	sortTasks(pending)
	return pending, nil
}

func (s *JSONStore) MarkTaskExecuted(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(doc *document) error {
		task, ok := doc.Tasks[id]
		if !ok {
			return qerrors.NotFound("task", id)
		}
		task.Executed = true
		task.ExecutedAt = &at
		doc.Tasks[id] = task
		return nil
	})
}
