package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing database file before initializing."`
	Source string `help:"Database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized quiethours storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if cli.IsPostgres(dbPath) {
		return fmt.Errorf("--force is only supported for file-based storage")
	}
	if c.Source != "" {
		abs, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = abs
		}
		if src, err := filepath.Abs(c.Source); err == nil && src == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source, false)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	return Copy(source, ctx.Store, ctx.Println)
}

// Copy moves settings, sessions, templates and pending tasks from src to
// dst. Sessions in dst are replaced.
func Copy(src, dst storage.Provider, report func(...any)) error {
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sessions, err := src.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to get sessions from source: %w", err)
	}
	if err := dst.ReplaceAllSessions(sessions); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	report(fmt.Sprintf("  Copied %d sessions", len(sessions)))

	templates, err := src.GetTemplates()
	if err != nil {
		return fmt.Errorf("failed to get templates from source: %w", err)
	}
	for _, t := range templates {
		if err := dst.SaveTemplate(t); err != nil {
			return fmt.Errorf("failed to save template %s: %w", t.Name, err)
		}
	}
	report(fmt.Sprintf("  Copied %d templates", len(templates)))

	tasks, err := src.GetPendingTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks from source: %w", err)
	}
	for _, t := range tasks {
		if err := dst.SaveTask(t); err != nil {
			return fmt.Errorf("failed to save task %s: %w", t.ID, err)
		}
	}
	report(fmt.Sprintf("  Copied %d pending reminders", len(tasks)))
	return nil
}
