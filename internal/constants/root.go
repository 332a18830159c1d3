package constants

import "time"

const (
	AppName             = "quiethours"
	DefaultKeyringUser  = "database-connection"
	DefaultConfigPath   = "~/.config/quiethours/quiethours.db"
	DefaultSettingsFile = "~/.config/quiethours/settings.yaml"
	Version             = "v0.3.0"

	// EnvPrefix is prepended to every environment override (QUIETHOURS_*)
	EnvPrefix = "QUIETHOURS_"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "quiethours-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "quiethours-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.quiethours.tray"
	TrayExecutable         = "quiethours-tray"
	TraySecretHeader       = "X-Quiethours-Secret"

	// Scheduling limits
	MinTitleLength       = 3
	MinFragmentMin       = 15
	MaxOccurrences       = 100
	LookaheadDays        = 7
	DefaultHousekeepSpec = "@every 1m"

	// Export format version
	ExportVersion = "1.0"
)

// ResolutionOffsetsMin are the start-time shifts probed, in order, when a
// candidate collides with existing sessions.
var ResolutionOffsetsMin = []int{-30, 30, -60, 60, -90, 90}
