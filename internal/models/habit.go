package models

import "time"

// Habit is a recurring practice owned by one user. Completing it on a day awards XPReward.
type Habit struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	XPReward    int       `json:"xp_reward" db:"xp_reward"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CheckIn records whether a habit was completed on a given day.
// There is at most one check-in per (HabitID, Date); un-completing keeps the record.
type CheckIn struct {
	ID        string    `json:"id" db:"id"`
	HabitID   string    `json:"habit_id" db:"habit_id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Date      string    `json:"date" db:"day"` // YYYY-MM-DD format
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HabitTemplate is a preset used to create habits quickly.
type HabitTemplate struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	XPReward    int    `json:"xp_reward" db:"xp_reward"`
	Icon        string `json:"icon" db:"icon"`
	Category    string `json:"category" db:"category"`
	IsDefault   bool   `json:"is_default" db:"is_default"`
}
