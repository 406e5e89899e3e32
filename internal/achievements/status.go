package achievements

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progress"
)

// ErrUnknownAchievement is returned when an id is not in the catalog.
var ErrUnknownAchievement = errors.New("unknown achievement")

// Status is one achievement as seen by a particular owner.
type Status struct {
	Definition models.AchievementDefinition
	Unlocked   bool
	UnlockedAt *time.Time
	Value      int
	// Percent is progress toward the requirement, 0 to 100.
	Percent float64
}

// Status reports progress toward every achievement in catalog order without
// unlocking anything or granting XP.
func (e *Evaluator) Status(ownerID string) ([]Status, error) {
	if ownerID == "" {
		return nil, progress.ErrNoOwner
	}

	defs, err := e.Catalog()
	if err != nil {
		return nil, err
	}
	unlocks, err := e.store.GetUnlockedAchievements(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}
	st, err := e.snapshot(ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(defs))
	for _, def := range defs {
		s := Status{Definition: def}
		s.Value, _ = st.value(def)
		s.Percent = percent(st, def, s.Value)
		if at, ok := unlockedAt[def.ID]; ok {
			at := at
			s.Unlocked = true
			s.UnlockedAt = &at
			s.Percent = 100
		}
		out = append(out, s)
	}
	return out, nil
}

func percent(st stats, def models.AchievementDefinition, value int) float64 {
	if def.Type == constants.AchievementCustom && def.ID == constants.AchievementAllHabitsDay {
		if st.allHabitsToday {
			return 100
		}
		return 0
	}
	if _, known := st.value(def); !known {
		return 0
	}
	if def.Requirement <= 0 {
		return 100
	}
	return min(float64(value)/float64(def.Requirement), 1) * 100
}

// Lookup returns the definition with id from the catalog.
func (e *Evaluator) Lookup(id string) (models.AchievementDefinition, error) {
	defs, err := e.Catalog()
	if err != nil {
		return models.AchievementDefinition{}, err
	}
	for _, d := range defs {
		if d.ID == id {
			return d, nil
		}
	}
	return models.AchievementDefinition{}, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
}
