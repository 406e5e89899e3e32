package constants

import "time"

// ConflictType represents the type of integrity conflict found by validation
type ConflictType string

// SessionState represents the current state of the TUI application
type SessionState int

// AchievementType is the rule used to decide whether an achievement unlocks
type AchievementType string

const (
	AppName            = "habitquest"
	EnvPrefix          = "HABITQUEST"
	DefaultKeyringUser = "database-connection"
	DefaultDataFile    = "habitquest.db"
	DefaultJSONFile    = "habitquest.json"
	ConfigFileName     = "config"
	ConfigFileType     = "yaml"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Storage backends
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitquest-"

	// Lock file held while a command is using a file backed store
	LockFileName = "habitquest.lock"

	// Toasts
	DefaultToastDuration = 5 * time.Second
	MaxVisibleToasts     = 3

	// Export
	ExportVersion = "1.0.0"

	// Achievement types
	AchievementStreak           AchievementType = "streak"
	AchievementTotalCompletions AchievementType = "total_completions"
	AchievementLevel            AchievementType = "level"
	AchievementWorld            AchievementType = "world"
	AchievementCustom           AchievementType = "custom"

	// Custom achievement ids with dedicated rules
	AchievementFirstHabit   = "first-habit"
	AchievementAllHabitsDay = "all-habits-day"

	// Conflict Types
	ConflictDuplicateCheckIn   ConflictType = "duplicate_check_in"
	ConflictOrphanedCheckIn    ConflictType = "orphaned_check_in"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictInvalidXPReward    ConflictType = "invalid_xp_reward"
	ConflictProgressDrift      ConflictType = "progress_drift"
	ConflictUnknownAchievement ConflictType = "unknown_achievement_type"
	ConflictDuplicateUnlock    ConflictType = "duplicate_unlock"
	ConflictMissingOwner       ConflictType = "missing_owner"
)

// Session States
const (
	StateHabits SessionState = iota
	StateAchievements
	StateTemplates
	StateAddHabit
	StateConfirmDelete
)
