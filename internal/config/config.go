// Package config loads the optional YAML settings file, overlays
// QUIETHOURS_* environment variables, and resolves which database to open.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

// Notifier backends accepted by Config.Notifier.
const (
	NotifierAuto = "auto"
	NotifierTray = "tray"
	NotifierLog  = "log"
)

// Overrides replace stored settings for the running process only. Nil
// fields leave the stored value alone.
type Overrides struct {
	ReminderMinutes   *int  `yaml:"reminder_minutes" env:"REMINDER_MINUTES"`
	SnoozeMinutes     *int  `yaml:"snooze_minutes" env:"SNOOZE_MINUTES"`
	BreakMinutes      *int  `yaml:"break_minutes" env:"BREAK_MINUTES"`
	EnforceFuture     *bool `yaml:"enforce_future" env:"ENFORCE_FUTURE"`
	PreferredHours    []int `yaml:"preferred_hours" env:"PREFERRED_HOURS"`
	AvoidHours        []int `yaml:"avoid_hours" env:"AVOID_HOURS"`
	MinGapMin         *int  `yaml:"min_gap_min" env:"MIN_GAP_MIN"`
	MaxSessionsPerDay *int  `yaml:"max_sessions_per_day" env:"MAX_SESSIONS_PER_DAY"`
	SessionDuration   *int  `yaml:"session_duration_min" env:"SESSION_DURATION_MIN"`
}

type Config struct {
	DBConnection  string        `yaml:"db_connection" env:"DB_CONNECTION"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL"`
	HousekeepSpec string        `yaml:"housekeep_spec" env:"HOUSEKEEP_SPEC"`
	Notifier      string        `yaml:"notifier" env:"NOTIFIER"`
	NotifyTimeout time.Duration `yaml:"notify_timeout" env:"NOTIFY_TIMEOUT"`
	Settings      Overrides     `yaml:"settings" envPrefix:"SETTINGS_"`
}

func Default() Config {
	return Config{
		HousekeepSpec: constants.DefaultHousekeepSpec,
		Notifier:      NotifierAuto,
		NotifyTimeout: 5 * time.Second,
	}
}

// Load reads path (a missing file is not an error), then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := decodeYAML(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: constants.EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func (c Config) Validate() error {
	switch c.Notifier {
	case NotifierAuto, NotifierTray, NotifierLog:
	default:
		return fmt.Errorf("notifier must be one of %s, %s, %s; got %q", NotifierAuto, NotifierTray, NotifierLog, c.Notifier)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("notify_timeout must be positive")
	}
	if strings.TrimSpace(c.HousekeepSpec) == "" {
		return fmt.Errorf("housekeep_spec cannot be empty")
	}
	for _, h := range append(append([]int{}, c.Settings.PreferredHours...), c.Settings.AvoidHours...) {
		if h < 0 || h > 23 {
			return fmt.Errorf("hour %d out of range 0-23", h)
		}
	}
	return nil
}

// Apply returns settings with every non-nil override written over it.
func (o Overrides) Apply(s models.Settings) models.Settings {
	if o.ReminderMinutes != nil {
		s.ReminderMinutes = *o.ReminderMinutes
	}
	if o.SnoozeMinutes != nil {
		s.SnoozeMinutes = *o.SnoozeMinutes
	}
	if o.BreakMinutes != nil {
		s.BreakMinutes = *o.BreakMinutes
	}
	if o.EnforceFuture != nil {
		s.EnforceFuture = *o.EnforceFuture
	}
	if o.PreferredHours != nil {
		s.Preferences.PreferredHours = o.PreferredHours
	}
	if o.AvoidHours != nil {
		s.Preferences.AvoidHours = o.AvoidHours
	}
	if o.MinGapMin != nil {
		s.Preferences.MinGapMin = *o.MinGapMin
	}
	if o.MaxSessionsPerDay != nil {
		s.Preferences.MaxSessionsPerDay = *o.MaxSessionsPerDay
	}
	if o.SessionDuration != nil {
		s.Preferences.SessionDurationMin = *o.SessionDuration
	}
	return s
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
