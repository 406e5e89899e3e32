package achievements

import (
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// DefaultCatalog returns the built-in achievement definitions in evaluation order.
func DefaultCatalog() []models.AchievementDefinition {
	return []models.AchievementDefinition{
		{ID: "streak-7", Name: "Week Warrior", Description: "Complete a habit 7 days in a row", Icon: "🔥", XPReward: 50, Requirement: 7, Type: constants.AchievementStreak, Category: "streaks"},
		{ID: "streak-30", Name: "Monthly Master", Description: "Complete a habit 30 days in a row", Icon: "⚡", XPReward: 200, Requirement: 30, Type: constants.AchievementStreak, Category: "streaks"},
		{ID: "streak-100", Name: "Century Champion", Description: "Complete a habit 100 days in a row", Icon: "👑", XPReward: 500, Requirement: 100, Type: constants.AchievementStreak, Category: "streaks"},
		{ID: "completions-10", Name: "Getting Started", Description: "Complete 10 habits", Icon: "✅", XPReward: 25, Requirement: 10, Type: constants.AchievementTotalCompletions, Category: "habits"},
		{ID: "completions-50", Name: "Half Century", Description: "Complete 50 habits", Icon: "🎯", XPReward: 100, Requirement: 50, Type: constants.AchievementTotalCompletions, Category: "habits"},
		{ID: "completions-100", Name: "Century Club", Description: "Complete 100 habits", Icon: "💯", XPReward: 250, Requirement: 100, Type: constants.AchievementTotalCompletions, Category: "habits"},
		{ID: "level-5", Name: "Rising Star", Description: "Reach level 5", Icon: "⭐", XPReward: 50, Requirement: 5, Type: constants.AchievementLevel, Category: "progress"},
		{ID: "level-10", Name: "Veteran", Description: "Reach level 10", Icon: "🌟", XPReward: 150, Requirement: 10, Type: constants.AchievementLevel, Category: "progress"},
		{ID: "level-25", Name: "Elite", Description: "Reach level 25", Icon: "💫", XPReward: 500, Requirement: 25, Type: constants.AchievementLevel, Category: "progress"},
		{ID: "world-2", Name: "Explorer", Description: "Unlock world 2", Icon: "🗺️", XPReward: 100, Requirement: 2, Type: constants.AchievementWorld, Category: "progress"},
		{ID: "world-5", Name: "World Traveler", Description: "Unlock world 5", Icon: "🌍", XPReward: 300, Requirement: 5, Type: constants.AchievementWorld, Category: "progress"},
		{ID: constants.AchievementFirstHabit, Name: "First Steps", Description: "Create your first habit", Icon: "👣", XPReward: 10, Requirement: 1, Type: constants.AchievementCustom, Category: "special"},
		{ID: constants.AchievementAllHabitsDay, Name: "Perfect Day", Description: "Complete all habits in one day", Icon: "🌈", XPReward: 50, Requirement: 1, Type: constants.AchievementCustom, Category: "special"},
	}
}

// KnownType reports whether t is an achievement type the evaluator understands.
func KnownType(t constants.AchievementType) bool {
	switch t {
	case constants.AchievementStreak, constants.AchievementTotalCompletions,
		constants.AchievementLevel, constants.AchievementWorld, constants.AchievementCustom:
		return true
	}
	return false
}
