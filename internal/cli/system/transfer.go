package system

import (
	"fmt"
	"os"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/validation"
)

type ExportCmd struct {
	File string `arg:"" help:"Destination JSON file ('-' for stdout)."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return err
	}

	if c.File == "-" {
		return storage.WriteExport(ctx.Writer(), sessions, ctx.Clock())
	}

	f, err := os.Create(c.File)
	if err != nil {
		return qerrors.IO(err, "failed to create export file")
	}
	if err := storage.WriteExport(f, sessions, ctx.Clock()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return qerrors.IO(err, "failed to write export file")
	}
	ctx.Printf("✓ Exported %d session(s) to %s\n", len(sessions), c.File)
	return nil
}

type ImportCmd struct {
	File  string `arg:"" help:"JSON export to import." type:"existingfile"`
	Merge bool   `help:"Keep existing sessions and add only sessions with new IDs."`
	Yes   bool   `short:"y" help:"Do not ask before replacing existing sessions."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return qerrors.IO(err, "failed to open import file")
	}
	defer f.Close()

	export, err := storage.ReadExport(f)
	if err != nil {
		return err
	}

	existing, err := ctx.Store.GetAllSessions()
	if err != nil {
		return err
	}

	var result []models.Session
	if c.Merge {
		result = merge(existing, export.Sessions)
	} else {
		if len(existing) > 0 && !c.Yes {
			ok, err := ctx.Confirm(fmt.Sprintf("Replace %d existing session(s) with %d imported?", len(existing), len(export.Sessions)))
			if err != nil {
				return err
			}
			if !ok {
				ctx.Println("Import cancelled.")
				return nil
			}
		}
		result = export.Sessions
	}

	if err := ctx.Store.ReplaceAllSessions(result); err != nil {
		return err
	}
	ctx.Printf("✓ Imported %d session(s); store now holds %d\n", len(export.Sessions), len(result))

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	audit := validation.New(settings.Preferences).ValidateSessions(result)
	if audit.HasConflicts() {
		ctx.Println()
		ctx.Println(audit.FormatReport())
		ctx.Println("Run 'quiethours validate --fix' to cancel overlapping sessions.")
	}
	return nil
}

// merge appends imported sessions whose IDs are not already present.
func merge(existing, imported []models.Session) []models.Session {
	seen := make(map[string]bool, len(existing))
	out := append([]models.Session(nil), existing...)
	for _, s := range existing {
		seen[s.ID] = true
	}
	for _, s := range imported {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}
