package constants

import "time"

const (
	AppName            = "timediary"
	Version            = "v0.1.0"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/timediary/timediary.db"
	SettingsFileName   = "config.yaml"

	// ConnectionEnvVar holds a PostgreSQL connection string when the keyring is unavailable.
	ConnectionEnvVar = "TIMEDIARY_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Slot grid
	FirstSlotHour = 6
	SlotMinutes   = 30
	SlotCount     = 36
	SlotHours     = 0.5

	// Energy levels
	MinEnergy     = 1
	MaxEnergy     = 5
	DefaultEnergy = 3

	// Aggregation and export windows, in days
	WeekWindowDays = 7
	JSONExportDays = 90
	CSVExportDays  = 30

	AutoSaveInterval = 30 * time.Second

	// Export files
	ExportFilePrefix = "time-diary-pro-"
	JSONExtension    = ".json"
	CSVExtension     = ".csv"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "timediary-"
	BackupFileSuffix = ".db"

	// AutoSaveLockfileName guards against two processes auto-saving at once.
	AutoSaveLockfileName = "timediary-autosave.lock"
)

// CSVHeader is the column layout of CSV exports.
var CSVHeader = []string{"Date", "Time", "Planned", "Actual", "Project", "Energy", "Distraction"}
