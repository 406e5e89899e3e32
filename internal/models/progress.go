package models

import "time"

// User is a local account. There is no password; signing in by email selects the user.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name,omitempty" db:"name"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Progress is a user's accumulated XP. Level and CurrentWorld are always derived from TotalXP.
type Progress struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Level        int       `json:"level" db:"level"`
	TotalXP      int       `json:"total_xp" db:"total_xp"`
	CurrentWorld int       `json:"current_world" db:"current_world"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
