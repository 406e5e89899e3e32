// Package achievements decides which achievements an owner has earned, records
// unlocks and grants their XP rewards.
package achievements

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progress"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/streak"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Evaluator checks the achievement catalog against an owner's current state.
type Evaluator struct {
	store    storage.Provider
	progress *progress.Updater
	clock    utils.Clock
}

func NewEvaluator(store storage.Provider, updater *progress.Updater, clock utils.Clock) *Evaluator {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Evaluator{store: store, progress: updater, clock: clock}
}

// stats is the snapshot every definition is checked against.
type stats struct {
	level            int
	world            int
	bestStreak       int
	totalCompletions int
	habitCount       int
	allHabitsToday   bool
}

// Catalog returns the stored definitions, seeding the default catalog when none exist.
func (e *Evaluator) Catalog() ([]models.AchievementDefinition, error) {
	defs, err := e.store.GetAchievementDefinitions()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	if len(defs) > 0 {
		return defs, nil
	}

	defs = DefaultCatalog()
	if err := e.store.SaveAchievementDefinitions(defs); err != nil {
		return nil, fmt.Errorf("failed to seed achievements: %w", err)
	}
	logger.Debug("Seeded default achievements", "count", len(defs))
	return defs, nil
}

func (e *Evaluator) snapshot(ownerID string) (stats, error) {
	p, err := e.progress.Get(ownerID)
	if err != nil {
		return stats{}, err
	}
	habits, err := e.store.GetHabits(ownerID)
	if err != nil {
		return stats{}, fmt.Errorf("failed to load habits: %w", err)
	}
	checkIns, err := e.store.GetCheckIns(ownerID)
	if err != nil {
		return stats{}, fmt.Errorf("failed to load check-ins: %w", err)
	}

	today := utils.Today(e.clock)
	st := stats{
		level:      p.Level,
		world:      p.CurrentWorld,
		bestStreak: streak.Best(habits, checkIns, today),
		habitCount: len(habits),
	}

	doneToday := make(map[string]bool)
	for _, c := range checkIns {
		if !c.Completed {
			continue
		}
		st.totalCompletions++
		if c.Date == today {
			doneToday[c.HabitID] = true
		}
	}

	st.allHabitsToday = len(habits) > 0
	for _, h := range habits {
		if !doneToday[h.ID] {
			st.allHabitsToday = false
			break
		}
	}
	return st, nil
}

// value returns the progress value for def and whether def is a rule the
// evaluator knows how to check.
func (st stats) value(def models.AchievementDefinition) (int, bool) {
	switch def.Type {
	case constants.AchievementLevel:
		return st.level, true
	case constants.AchievementWorld:
		return st.world, true
	case constants.AchievementStreak:
		return st.bestStreak, true
	case constants.AchievementTotalCompletions:
		return st.totalCompletions, true
	case constants.AchievementCustom:
		switch def.ID {
		case constants.AchievementFirstHabit:
			return st.habitCount, true
		case constants.AchievementAllHabitsDay:
			if st.allHabitsToday {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

func satisfied(st stats, def models.AchievementDefinition) bool {
	v, ok := st.value(def)
	if !ok {
		return false
	}
	if def.Type == constants.AchievementCustom && def.ID == constants.AchievementAllHabitsDay {
		return st.allHabitsToday
	}
	return v >= def.Requirement
}

// Evaluate unlocks every achievement the owner now satisfies and has not unlocked
// yet, granting each one's XP reward. It returns the new ids in catalog order.
// An unlock whose reward cannot be saved is undone, so a later call retries both.
//
// One call is a single pass over a snapshot taken before any reward is granted;
// XP from these rewards can satisfy further achievements on the next call.
func (e *Evaluator) Evaluate(ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, progress.ErrNoOwner
	}

	defs, err := e.Catalog()
	if err != nil {
		return nil, err
	}
	unlocked, err := e.unlockedSet(ownerID)
	if err != nil {
		return nil, err
	}
	st, err := e.snapshot(ownerID)
	if err != nil {
		return nil, err
	}

	var newly []string
	for _, def := range defs {
		if unlocked[def.ID] {
			continue
		}
		if _, known := st.value(def); !known {
			logger.Debug("Skipping achievement with unknown rule", "id", def.ID, "type", def.Type)
			continue
		}
		if !satisfied(st, def) {
			continue
		}

		added, err := Unlock(e.store, ownerID, def.ID, e.clock.Now())
		if err != nil {
			return newly, err
		}
		if !added {
			continue
		}
		logger.Info("Achievement unlocked", "owner", ownerID, "id", def.ID)

		if def.XPReward > 0 {
			if _, err := e.progress.ApplyXPDelta(ownerID, def.XPReward); err != nil {
				// an unlock without its reward would never be paid out
				if rerr := e.revoke(ownerID, def.ID); rerr != nil {
					logger.Error("Failed to roll back unlock", "owner", ownerID, "id", def.ID, "error", rerr)
				}
				return newly, fmt.Errorf("failed to grant reward for %s: %w", def.ID, err)
			}
		}
		newly = append(newly, def.ID)
	}

	return newly, nil
}

func (e *Evaluator) revoke(ownerID, achievementID string) error {
	unlocks, err := e.store.GetUnlockedAchievements(ownerID)
	if err != nil {
		return err
	}
	for _, u := range unlocks {
		if u.AchievementID == achievementID {
			if err := e.store.DeleteUnlockedAchievement(u.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Evaluator) unlockedSet(ownerID string) (map[string]bool, error) {
	unlocks, err := e.store.GetUnlockedAchievements(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	set := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		set[u.AchievementID] = true
	}
	return set, nil
}

// Unlock records that ownerID unlocked achievementID. It reports false, without
// error, when the unlock already exists.
func Unlock(store storage.Provider, ownerID, achievementID string, at time.Time) (bool, error) {
	if ownerID == "" {
		return false, progress.ErrNoOwner
	}
	added, err := store.AddUnlockedAchievement(models.UnlockedAchievement{
		ID:            uuid.New().String(),
		AchievementID: achievementID,
		OwnerID:       ownerID,
		UnlockedAt:    at,
	})
	if err != nil {
		return false, fmt.Errorf("failed to unlock %s: %w", achievementID, err)
	}
	return added, nil
}
