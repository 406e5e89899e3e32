// Package progress applies XP changes to a user's stored progress.
package progress

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

// ErrNoOwner is returned when an operation is attempted without an owner.
var ErrNoOwner = errors.New("no owner for progress update")

// Result describes the outcome of one XP change.
type Result struct {
	Progress      models.Progress
	PreviousLevel int
	PreviousWorld int
	LeveledUp     bool
	WorldUnlocked bool
}

// Updater reads and writes progress records.
type Updater struct {
	store storage.Provider
	clock utils.Clock
}

func NewUpdater(store storage.Provider, clock utils.Clock) *Updater {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Updater{store: store, clock: clock}
}

// Get returns the owner's progress, initializing a fresh record on first use.
func (u *Updater) Get(ownerID string) (models.Progress, error) {
	if ownerID == "" {
		return models.Progress{}, ErrNoOwner
	}

	p, err := u.store.GetProgress(ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		p = models.Progress{
			ID:           uuid.New().String(),
			OwnerID:      ownerID,
			Level:        1,
			TotalXP:      0,
			CurrentWorld: 1,
			UpdatedAt:    u.clock.Now(),
		}
		if err := u.store.SaveProgress(p); err != nil {
			return models.Progress{}, fmt.Errorf("failed to initialize progress: %w", err)
		}
		logger.Debug("Initialized progress", "owner", ownerID)
		return p, nil
	}
	if err != nil {
		return models.Progress{}, fmt.Errorf("failed to load progress: %w", err)
	}

	return repair(p), nil
}

// repair normalizes a stored record so derived fields agree with TotalXP.
func repair(p models.Progress) models.Progress {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.TotalXP = max(p.TotalXP, 0)
	p.Level = leveling.LevelForXP(p.TotalXP)
	p.CurrentWorld = leveling.WorldForLevel(p.Level)
	return p
}

// ApplyXPDelta adds delta (which may be negative) to the owner's total XP, never
// letting it drop below zero, and recomputes level and world.
//
// The previous level and world are derived from the stored total XP rather than
// the stored level and world fields.
func (u *Updater) ApplyXPDelta(ownerID string, delta int) (Result, error) {
	p, err := u.Get(ownerID)
	if err != nil {
		return Result{}, err
	}

	prevLevel := p.Level
	prevWorld := p.CurrentWorld

	p.TotalXP = max(0, p.TotalXP+delta)
	p.Level = leveling.LevelForXP(p.TotalXP)
	p.CurrentWorld = leveling.WorldForLevel(p.Level)
	p.UpdatedAt = u.clock.Now()

	if err := u.store.SaveProgress(p); err != nil {
		return Result{}, fmt.Errorf("failed to save progress: %w", err)
	}

	res := Result{
		Progress:      p,
		PreviousLevel: prevLevel,
		PreviousWorld: prevWorld,
		LeveledUp:     p.Level > prevLevel,
		WorldUnlocked: p.CurrentWorld > prevWorld,
	}

	if res.LeveledUp {
		logger.Info("Level up", "owner", ownerID, "level", p.Level, "total_xp", p.TotalXP)
	}
	if res.WorldUnlocked {
		logger.Info("World unlocked", "owner", ownerID, "world", p.CurrentWorld)
	}

	return res, nil
}

// Recompute rewrites the stored level and world from total XP. It is used after
// imports and by validation fixes.
func (u *Updater) Recompute(ownerID string) (models.Progress, error) {
	p, err := u.Get(ownerID)
	if err != nil {
		return models.Progress{}, err
	}
	p.UpdatedAt = u.clock.Now()
	if err := u.store.SaveProgress(p); err != nil {
		return models.Progress{}, fmt.Errorf("failed to save progress: %w", err)
	}
	return p, nil
}
