package storage

import (
	"errors"

	"github.com/julianstephens/habitquest/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
	// ErrNotInitialized is returned by Load when there is nothing to load.
	ErrNotInitialized = errors.New("storage not initialized, run 'habitquest init' first")
)

// Provider is the record store every component reads from and writes to.
// Every call reads or writes the latest persisted state; nothing is cached
// across calls by callers.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Users
	GetUsers() ([]models.User, error)
	GetUserByEmail(email string) (models.User, error)
	SaveUser(models.User) error
	GetCurrentUserID() (string, error)
	SetCurrentUserID(id string) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabits(ownerID string) ([]models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error

	// Check-ins are unique per (habit, date). UpsertCheckIn keeps the id and
	// created_at of an existing record for the same key and returns what was stored.
	UpsertCheckIn(models.CheckIn) (models.CheckIn, error)
	GetCheckIn(habitID, date string) (models.CheckIn, error)
	GetCheckIns(ownerID string) ([]models.CheckIn, error)
	GetAllCheckIns() ([]models.CheckIn, error)
	DeleteCheckIn(id string) error

	// Progress, one record per owner
	GetProgress(ownerID string) (models.Progress, error)
	SaveProgress(models.Progress) error
	GetAllProgress() ([]models.Progress, error)

	// Achievements. Definitions keep their catalog order.
	GetAchievementDefinitions() ([]models.AchievementDefinition, error)
	SaveAchievementDefinitions([]models.AchievementDefinition) error
	GetUnlockedAchievements(ownerID string) ([]models.UnlockedAchievement, error)
	GetAllUnlockedAchievements() ([]models.UnlockedAchievement, error)
	// AddUnlockedAchievement reports false when the owner already has the achievement.
	AddUnlockedAchievement(models.UnlockedAchievement) (bool, error)
	DeleteUnlockedAchievement(id string) error

	// Habit templates
	GetHabitTemplates() ([]models.HabitTemplate, error)
	SaveHabitTemplates([]models.HabitTemplate) error

	// Utils
	GetConfigPath() string
}
