package postgres

import (
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (s *Store) GetSettings() (models.Settings, error) {
	var rows []settingRow
	if err := s.db.Select(&rows, "SELECT key, value FROM settings"); err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to read settings")
	}
	if len(rows) == 0 {
		return models.Settings{}, qerrors.NotFound("settings", s.GetConfigPath())
	}

	data := make(map[string]string, len(rows))
	for _, row := range rows {
		data[row.Key] = row.Value
	}
	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, qerrors.IO(err, "failed to parse settings")
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return qerrors.IO(err, "failed to save settings")
	}
	defer tx.Rollback()

	for key, value := range models.SettingsToMap(settings) {
		_, err := tx.NamedExec(`
			INSERT INTO settings (key, value) VALUES (:key, :value)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			settingRow{Key: key, Value: value})
		if err != nil {
			return qerrors.IO(err, "failed to save settings")
		}
	}
	return qerrors.IO(tx.Commit(), "failed to save settings")
}
