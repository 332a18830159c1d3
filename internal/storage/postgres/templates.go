package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type templateRow struct {
	Name      string    `db:"name"`
	Request   string    `db:"request"`
	CreatedAt time.Time `db:"created_at"`
}

func (r templateRow) template() (models.Template, error) {
	tpl := models.Template{Name: r.Name, CreatedAt: r.CreatedAt.UTC()}
	err := json.Unmarshal([]byte(r.Request), &tpl.Request)
	return tpl, err
}

func (s *Store) SaveTemplate(tpl models.Template) error {
	data, err := json.Marshal(tpl.Request)
	if err != nil {
		return qerrors.IO(err, "failed to encode template")
	}
	_, err = s.db.NamedExec(`
		INSERT INTO templates (name, request, created_at) VALUES (:name, :request, :created_at)
		ON CONFLICT (name) DO UPDATE SET request = EXCLUDED.request, created_at = EXCLUDED.created_at`,
		templateRow{Name: tpl.Name, Request: string(data), CreatedAt: tpl.CreatedAt})
	return qerrors.IO(err, "failed to save template")
}

func (s *Store) GetTemplate(name string) (models.Template, error) {
	var row templateRow
	err := s.db.Get(&row, "SELECT name, request, created_at FROM templates WHERE name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, qerrors.NotFound("template", name)
	}
	if err != nil {
		return models.Template{}, qerrors.IO(err, "failed to read template")
	}
	tpl, err := row.template()
	if err != nil {
		return models.Template{}, qerrors.IO(err, "failed to decode template")
	}
	return tpl, nil
}

func (s *Store) GetTemplates() ([]models.Template, error) {
	var rows []templateRow
	if err := s.db.Select(&rows, "SELECT name, request, created_at FROM templates ORDER BY name"); err != nil {
		return nil, qerrors.IO(err, "failed to read templates")
	}
	templates := make([]models.Template, 0, len(rows))
	for _, row := range rows {
		tpl, err := row.template()
		if err != nil {
			return nil, qerrors.IO(err, "failed to decode template")
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}
