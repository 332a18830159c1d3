package system

import (
	"fmt"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/backup"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/keyring"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/reminders"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/postgres"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/sqlite"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly failures are reported but do not fail the command.
	warnOnly bool
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Data validation", run: checkValidation, needsDB: true},
	{name: "Pending reminders", run: checkPendingTasks, needsDB: true},
	{name: "Housekeeping schedule", run: checkHousekeepSpec},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	current, latest, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	current, latest, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'quiethours migrate')", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.ReminderMinutes < 0 || settings.SnoozeMinutes <= 0 || settings.BreakMinutes <= 0 {
		return fmt.Errorf("reminder, snooze and break minutes must be positive")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to get sessions: %w", err)
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	result := validation.New(settings.Preferences).ValidateSessions(sessions)
	if result.HasConflicts() {
		return fmt.Errorf("%d problem(s) found, run 'quiethours validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkPendingTasks(ctx *cli.Context) error {
	tasks, err := ctx.Store.GetPendingTasks()
	if err != nil {
		return fmt.Errorf("failed to read pending reminders: %w", err)
	}
	for _, t := range tasks {
		if t.ID == "" || t.DueAt.IsZero() {
			return fmt.Errorf("reminder %q has no due time", t.ID)
		}
	}
	return nil
}

func checkHousekeepSpec(ctx *cli.Context) error {
	spec := ctx.Config.HousekeepSpec
	if spec == "" {
		return nil
	}
	return reminders.ValidateSpec(spec)
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'quiethours backup create'")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); !ok {
		return nil
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
