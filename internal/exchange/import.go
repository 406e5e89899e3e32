package exchange

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Stats counts what an import wrote.
type Stats struct {
	Habits           int
	RenamedHabits    int
	CheckIns         int
	SkippedCheckIns  int
	ProgressImported bool
	Achievements     int
}

// Apply writes snap into store for ownerID. Without merge the owner's habits,
// check-ins and unlocks are replaced. With merge they are kept, and imported
// habits whose ids are taken get new ids.
func Apply(store storage.Provider, ownerID string, snap Snapshot, merge bool, now time.Time) (Stats, error) {
	var stats Stats

	if !merge {
		if err := clearOwner(store, ownerID); err != nil {
			return stats, err
		}
	}

	allHabits, err := store.GetAllHabits()
	if err != nil {
		return stats, fmt.Errorf("failed to load habits: %w", err)
	}
	taken := make(map[string]bool, len(allHabits))
	for _, h := range allHabits {
		taken[h.ID] = true
	}

	remap := make(map[string]string, len(snap.Habits))
	for _, h := range snap.Habits {
		oldID := h.ID
		if h.ID == "" || taken[h.ID] {
			h.ID = uuid.New().String()
			stats.RenamedHabits++
		}
		remap[oldID] = h.ID
		taken[h.ID] = true

		h.OwnerID = ownerID
		if h.CreatedAt.IsZero() {
			h.CreatedAt = now
		}
		if h.UpdatedAt.IsZero() {
			h.UpdatedAt = h.CreatedAt
		}
		if err := store.AddHabit(h); err != nil {
			return stats, fmt.Errorf("failed to import habit %q: %w", h.Name, err)
		}
		stats.Habits++
	}

	existing, err := store.GetCheckIns(ownerID)
	if err != nil {
		return stats, fmt.Errorf("failed to load check-ins: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(snap.CheckIns))
	for _, c := range existing {
		seen[c.HabitID+"|"+c.Date] = true
	}
	for _, c := range snap.CheckIns {
		if newID, ok := remap[c.HabitID]; ok {
			c.HabitID = newID
		}
		key := c.HabitID + "|" + c.Date
		if seen[key] || !utils.ValidateDate(c.Date) {
			stats.SkippedCheckIns++
			continue
		}
		seen[key] = true

		c.ID = uuid.New().String()
		c.OwnerID = ownerID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := store.UpsertCheckIn(c); err != nil {
			return stats, fmt.Errorf("failed to import check-in: %w", err)
		}
		stats.CheckIns++
	}

	if snap.Progress != nil {
		_, err := store.GetProgress(ownerID)
		missing := errors.Is(err, storage.ErrNotFound)
		if err != nil && !missing {
			return stats, fmt.Errorf("failed to load progress: %w", err)
		}
		if missing || !merge {
			p := *snap.Progress
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			p.OwnerID = ownerID
			p.TotalXP = max(p.TotalXP, 0)
			p.UpdatedAt = now
			if err := store.SaveProgress(p); err != nil {
				return stats, fmt.Errorf("failed to import progress: %w", err)
			}
			stats.ProgressImported = true
		}
	}

	for _, u := range snap.Achievements {
		u.ID = uuid.New().String()
		u.OwnerID = ownerID
		if u.UnlockedAt.IsZero() {
			u.UnlockedAt = now
		}
		added, err := store.AddUnlockedAchievement(u)
		if err != nil {
			return stats, fmt.Errorf("failed to import achievement %s: %w", u.AchievementID, err)
		}
		if added {
			stats.Achievements++
		}
	}

	logger.Info("Imported data", "owner", ownerID, "merge", merge,
		"habits", stats.Habits, "check_ins", stats.CheckIns, "achievements", stats.Achievements)
	return stats, nil
}

func clearOwner(store storage.Provider, ownerID string) error {
	checkIns, err := store.GetCheckIns(ownerID)
	if err != nil {
		return fmt.Errorf("failed to load check-ins: %w", err)
	}
	for _, c := range checkIns {
		if err := store.DeleteCheckIn(c.ID); err != nil {
			return fmt.Errorf("failed to delete check-in: %w", err)
		}
	}

	habits, err := store.GetHabits(ownerID)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	for _, h := range habits {
		if err := store.DeleteHabit(h.ID); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
	}

	unlocked, err := store.GetUnlockedAchievements(ownerID)
	if err != nil {
		return fmt.Errorf("failed to load achievements: %w", err)
	}
	for _, u := range unlocked {
		if err := store.DeleteUnlockedAchievement(u.ID); err != nil {
			return fmt.Errorf("failed to delete achievement: %w", err)
		}
	}
	return nil
}
