package models

import (
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
)

// AchievementDefinition describes one unlockable achievement.
type AchievementDefinition struct {
	ID          string                    `json:"id" db:"id"`
	Name        string                    `json:"name" db:"name"`
	Description string                    `json:"description" db:"description"`
	Icon        string                    `json:"icon,omitempty" db:"icon"`
	XPReward    int                       `json:"xp_reward" db:"xp_reward"`
	Requirement int                       `json:"requirement" db:"requirement"`
	Type        constants.AchievementType `json:"type" db:"type"`
	Category    string                    `json:"category" db:"category"`
}

// UnlockedAchievement records that an owner unlocked an achievement. Unlocks are never removed.
type UnlockedAchievement struct {
	ID            string    `json:"id" db:"id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}
