package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli/backups"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli/sessions"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli/settings"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli/system"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/cli/templates"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/config"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/keyring"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage/postgres"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path or PostgreSQL connection string. Credentials must NOT be embedded here; use QUIETHOURS_DB_CONNECTION, .pgpass or the OS keyring instead." type:"string"`
	Settings string `help:"YAML settings file." type:"string" default:"${settings}"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize quiethours storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Schedule  sessions.ScheduleCmd `cmd:"" help:"Schedule a session, resolving conflicts automatically."`
	Batch     sessions.BatchCmd    `cmd:"" help:"Schedule every request in a YAML or JSON file."`
	List      sessions.ListCmd     `cmd:"" help:"List sessions."`
	Start     sessions.StartCmd    `cmd:"" help:"Start a session."`
	Complete  sessions.CompleteCmd `cmd:"" help:"Complete a session."`
	Cancel    sessions.CancelCmd   `cmd:"" help:"Cancel a session."`
	Delete    sessions.DeleteCmd   `cmd:"" help:"Delete a session."`
	Snooze    sessions.SnoozeCmd   `cmd:"" help:"Remind me about a session again later."`
	Slot      sessions.SlotCmd     `cmd:"" help:"Find the best free slot on a day."`
	Suggest   sessions.SuggestCmd  `cmd:"" help:"Suggest sessions for the coming week."`
	Stats     sessions.StatsCmd    `cmd:"" help:"Show productivity statistics."`
	Configure settings.SettingsCmd `cmd:"" name:"settings" help:"View or change stored settings."`
	Template  struct {
		Save templates.SaveCmd `cmd:"" help:"Save a session template."`
		Use  templates.UseCmd  `cmd:"" help:"Schedule a session from a template."`
		List templates.ListCmd `cmd:"" help:"List templates." default:"1"`
	} `cmd:"" help:"Manage session templates."`
	Export   system.ExportCmd   `cmd:"" help:"Export sessions to JSON."`
	Import   system.ImportCmd   `cmd:"" help:"Import sessions from JSON."`
	Validate system.ValidateCmd `cmd:"" help:"Audit stored sessions for conflicts."`
	Backup   struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the database connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability." default:"1"`
	} `cmd:"" help:"Manage the connection string in the OS keyring."`
	Watch system.WatchCmd `cmd:"" help:"Deliver reminders and mark missed sessions until interrupted."`
}

// commands that open the store themselves or never touch it.
var skipLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Focus session scheduler with automatic conflict resolution"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"settings": constants.DefaultSettingsFile,
		},
	)

	settingsFile := config.ExpandHome(CLI.Settings)
	cfg, err := config.Load(settingsFile)
	if err != nil {
		qerrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(settingsFile),
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	conn, source, err := config.ResolveConnection(CLI.Config, cfg, keyring.Default())
	if err != nil {
		qerrors.Fatal(fmt.Errorf("failed to read connection string from keyring: %w", err))
	}
	logger.Debug("resolved database", "source", source)

	store, err := cli.OpenStore(conn, source != config.SourceFlag)
	if err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			fmt.Fprintf(os.Stderr, "❌ Error: %s\n", cli.EmbeddedCredentialsHelp)
			os.Exit(1)
		}
		qerrors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:        store,
		Config:       cfg,
		SettingsFile: settingsFile,
	}

	if cmd := ctx.Selected(); cmd != nil && !skipLoad[rootCommand(cmd)] {
		if err := store.Load(); err != nil {
			store.Close()
			qerrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		qerrors.Fatal(err)
	}
}

func rootCommand(node *kong.Node) string {
	for node.Parent != nil && node.Parent.Type == kong.CommandNode {
		node = node.Parent
	}
	return node.Name
}
