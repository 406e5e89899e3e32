package sqlstore

import (
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// Timestamps are stored as RFC3339 text in both dialects.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type userRow struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	IsAdmin   bool   `db:"is_admin"`
	CreatedAt string `db:"created_at"`
}

func (r userRow) model() models.User {
	return models.User{ID: r.ID, Email: r.Email, Name: r.Name, IsAdmin: r.IsAdmin, CreatedAt: parseTime(r.CreatedAt)}
}

type habitRow struct {
	ID          string `db:"id"`
	OwnerID     string `db:"owner_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	XPReward    int    `db:"xp_reward"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func newHabitRow(h models.Habit) habitRow {
	return habitRow{
		ID: h.ID, OwnerID: h.OwnerID, Name: h.Name, Description: h.Description, XPReward: h.XPReward,
		CreatedAt: formatTime(h.CreatedAt), UpdatedAt: formatTime(h.UpdatedAt),
	}
}

func (r habitRow) model() models.Habit {
	return models.Habit{
		ID: r.ID, OwnerID: r.OwnerID, Name: r.Name, Description: r.Description, XPReward: r.XPReward,
		CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt),
	}
}

type checkInRow struct {
	ID        string `db:"id"`
	HabitID   string `db:"habit_id"`
	OwnerID   string `db:"owner_id"`
	Day       string `db:"day"`
	Completed bool   `db:"completed"`
	CreatedAt string `db:"created_at"`
}

func newCheckInRow(c models.CheckIn) checkInRow {
	return checkInRow{ID: c.ID, HabitID: c.HabitID, OwnerID: c.OwnerID, Day: c.Date, Completed: c.Completed, CreatedAt: formatTime(c.CreatedAt)}
}

func (r checkInRow) model() models.CheckIn {
	return models.CheckIn{ID: r.ID, HabitID: r.HabitID, OwnerID: r.OwnerID, Date: r.Day, Completed: r.Completed, CreatedAt: parseTime(r.CreatedAt)}
}

type progressRow struct {
	ID           string `db:"id"`
	OwnerID      string `db:"owner_id"`
	Level        int    `db:"level"`
	TotalXP      int    `db:"total_xp"`
	CurrentWorld int    `db:"current_world"`
	UpdatedAt    string `db:"updated_at"`
}

func (r progressRow) model() models.Progress {
	return models.Progress{ID: r.ID, OwnerID: r.OwnerID, Level: r.Level, TotalXP: r.TotalXP, CurrentWorld: r.CurrentWorld, UpdatedAt: parseTime(r.UpdatedAt)}
}

type achievementRow struct {
	ID          string `db:"id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Icon        string `db:"icon"`
	XPReward    int    `db:"xp_reward"`
	Requirement int    `db:"requirement"`
	Type        string `db:"type"`
	Category    string `db:"category"`
}

func (r achievementRow) model() models.AchievementDefinition {
	return models.AchievementDefinition{
		ID: r.ID, Name: r.Name, Description: r.Description, Icon: r.Icon, XPReward: r.XPReward,
		Requirement: r.Requirement, Type: constants.AchievementType(r.Type), Category: r.Category,
	}
}

type unlockRow struct {
	ID            string `db:"id"`
	AchievementID string `db:"achievement_id"`
	OwnerID       string `db:"owner_id"`
	UnlockedAt    string `db:"unlocked_at"`
}

func (r unlockRow) model() models.UnlockedAchievement {
	return models.UnlockedAchievement{ID: r.ID, AchievementID: r.AchievementID, OwnerID: r.OwnerID, UnlockedAt: parseTime(r.UnlockedAt)}
}

type templateRow struct {
	ID          string `db:"id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Description string `db:"description"`
	XPReward    int    `db:"xp_reward"`
	Icon        string `db:"icon"`
	Category    string `db:"category"`
	IsDefault   bool   `db:"is_default"`
}

func (r templateRow) model() models.HabitTemplate {
	return models.HabitTemplate{ID: r.ID, Name: r.Name, Description: r.Description, XPReward: r.XPReward, Icon: r.Icon, Category: r.Category, IsDefault: r.IsDefault}
}
