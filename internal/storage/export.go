package storage

import (
	"encoding/json"
	"io"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// Export is the portable session dump written by `quiethours export`.
type Export struct {
	Sessions []models.Session `json:"sessions"`
	Exported time.Time        `json:"exported"`
	Version  string           `json:"version"`
}

func WriteExport(w io.Writer, sessions []models.Session, at time.Time) error {
	if sessions == nil {
		sessions = []models.Session{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(Export{
		Sessions: sessions,
		Exported: at,
		Version:  constants.ExportVersion,
	})
	return qerrors.IO(err, "failed to write export")
}

// ReadExport decodes an export. A missing sessions field is an error so an
// unrelated JSON file cannot wipe the store on import.
func ReadExport(r io.Reader) (Export, error) {
	var raw struct {
		Sessions *[]models.Session `json:"sessions"`
		Exported time.Time         `json:"exported"`
		Version  string            `json:"version"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Export{}, qerrors.IO(err, "failed to parse export")
	}
	if raw.Sessions == nil {
		return Export{}, qerrors.Validation("export has no sessions field")
	}
	return Export{
		Sessions: *raw.Sessions,
		Exported: raw.Exported,
		Version:  raw.Version,
	}, nil
}
