// Package exchange moves a user's data in and out of habitquest as portable
// JSON snapshots and XLSX reports.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

var ErrInvalidSnapshot = errors.New("invalid export file")

// SnapshotUser identifies whose data a snapshot holds.
type SnapshotUser struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Snapshot is the export file format.
type Snapshot struct {
	Version      string                       `json:"version"`
	ExportDate   time.Time                    `json:"exportDate"`
	User         SnapshotUser                 `json:"user"`
	Habits       []models.Habit               `json:"habits"`
	CheckIns     []models.CheckIn             `json:"checkIns"`
	Progress     *models.Progress             `json:"progress"`
	Achievements []models.UnlockedAchievement `json:"achievements"`
}

// Build collects everything owned by user into a snapshot.
func Build(store storage.Provider, user models.User, now time.Time) (Snapshot, error) {
	habits, err := store.GetHabits(user.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load habits: %w", err)
	}
	checkIns, err := store.GetCheckIns(user.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load check-ins: %w", err)
	}
	unlocked, err := store.GetUnlockedAchievements(user.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load achievements: %w", err)
	}

	snap := Snapshot{
		Version:      constants.ExportVersion,
		ExportDate:   now.UTC(),
		User:         SnapshotUser{Email: user.Email, Name: user.Name},
		Habits:       nonNil(habits),
		CheckIns:     nonNil(checkIns),
		Achievements: nonNil(unlocked),
	}

	p, err := store.GetProgress(user.ID)
	switch {
	case err == nil:
		snap.Progress = &p
	case !errors.Is(err, storage.ErrNotFound):
		return Snapshot{}, fmt.Errorf("failed to load progress: %w", err)
	}
	return snap, nil
}

// Write encodes snap as indented JSON.
func Write(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Parse decodes an export file. The version and export date must be present.
func Parse(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version == "" || snap.ExportDate.IsZero() {
		return Snapshot{}, fmt.Errorf("%w: missing version or export date", ErrInvalidSnapshot)
	}
	return snap, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
