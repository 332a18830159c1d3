package scheduler

import (
	"strings"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

func (s *Scheduler) templateStore() (storage.TemplateStore, error) {
	if s.templates == nil {
		return nil, qerrors.Validation("template storage is not configured")
	}
	return s.templates, nil
}

// SaveTemplate stores req under name, replacing any template of that name.
// Date and time are kept but are normally overridden when the template is used.
func (s *Scheduler) SaveTemplate(name string, req models.Request) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return qerrors.Validation("template name is required")
	}
	if req.DurationMin <= 0 {
		return qerrors.Validation("duration must be greater than zero")
	}
	ts, err := s.templateStore()
	if err != nil {
		return err
	}
	tpl := models.Template{Name: name, Request: req, CreatedAt: s.now()}
	return qerrors.IO(ts.SaveTemplate(tpl), "saving template")
}

// LoadTemplate returns the request stored under name.
func (s *Scheduler) LoadTemplate(name string) (models.Request, error) {
	ts, err := s.templateStore()
	if err != nil {
		return models.Request{}, err
	}
	tpl, err := ts.GetTemplate(strings.TrimSpace(name))
	if err != nil {
		if qerrors.IsCode(err, qerrors.CodeNotFound) {
			return models.Request{}, err
		}
		return models.Request{}, qerrors.IO(err, "loading template")
	}
	return tpl.Request, nil
}

func (s *Scheduler) GetTemplates() ([]models.Template, error) {
	ts, err := s.templateStore()
	if err != nil {
		return nil, err
	}
	templates, err := ts.GetTemplates()
	if err != nil {
		return nil, qerrors.IO(err, "listing templates")
	}
	return templates, nil
}
