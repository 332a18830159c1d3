package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// SaveTemplate stores the request as JSON, replacing any template with the
// same name.
func (s *Store) SaveTemplate(tpl models.Template) error {
	data, err := json.Marshal(tpl.Request)
	if err != nil {
		return qerrors.IO(err, "failed to encode template")
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO templates (name, request, created_at) VALUES (?, ?, ?)",
		tpl.Name, string(data), formatTime(tpl.CreatedAt),
	)
	return qerrors.IO(err, "failed to save template")
}

func scanTemplate(row rowScanner) (models.Template, error) {
	var tpl models.Template
	var request, createdAt string
	if err := row.Scan(&tpl.Name, &request, &createdAt); err != nil {
		return models.Template{}, err
	}
	if err := json.Unmarshal([]byte(request), &tpl.Request); err != nil {
		return models.Template{}, err
	}
	var err error
	tpl.CreatedAt, err = parseTime(createdAt)
	return tpl, err
}

func (s *Store) GetTemplate(name string) (models.Template, error) {
	row := s.db.QueryRow("SELECT name, request, created_at FROM templates WHERE name = ?", name)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, qerrors.NotFound("template", name)
	}
	if err != nil {
		return models.Template{}, qerrors.IO(err, "failed to read template")
	}
	return tpl, nil
}

func (s *Store) GetTemplates() ([]models.Template, error) {
	rows, err := s.db.Query("SELECT name, request, created_at FROM templates ORDER BY name")
	if err != nil {
		return nil, qerrors.IO(err, "failed to read templates")
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, qerrors.IO(err, "failed to read templates")
		}
		templates = append(templates, tpl)
	}
	return templates, qerrors.IO(rows.Err(), "failed to read templates")
}
