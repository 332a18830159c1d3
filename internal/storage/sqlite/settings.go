package sqlite

import (
	"fmt"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to read settings")
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, qerrors.IO(err, "failed to read settings")
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to read settings")
	}

	if len(data) == 0 {
		return models.Settings{}, qerrors.NotFound("settings", s.path)
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to parse settings")
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return qerrors.IO(err, "failed to save settings")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return qerrors.IO(err, "failed to save settings")
	}
	defer stmt.Close()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := stmt.Exec(key, value); err != nil {
			return qerrors.IO(fmt.Errorf("%s: %w", key, err), "failed to save settings")
		}
	}

	return qerrors.IO(tx.Commit(), "failed to save settings")
}
