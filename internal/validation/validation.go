// Package validation checks the stored records for integrity problems and
// repairs the ones that can be repaired automatically.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitquest/internal/achievements"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progress"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Conflict is one integrity problem.
type Conflict struct {
	Type        constants.ConflictType
	Description string
	OwnerID     string
	// IDs are the records involved. For duplicates the first one is kept by Fix.
	IDs []string
}

// Result holds every detected conflict.
type Result struct {
	Conflicts []Conflict
}

// FixAction describes a repair made by Fix.
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts.
func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Type, c.Description)
	}
	return b.String()
}

// Data is the set of records a validation run looks at.
type Data struct {
	Habits      []models.Habit
	CheckIns    []models.CheckIn
	Progress    []models.Progress
	Definitions []models.AchievementDefinition
	Unlocked    []models.UnlockedAchievement
}

// Collect reads every record from store.
func Collect(store storage.Provider) (Data, error) {
	var d Data
	var err error
	if d.Habits, err = store.GetAllHabits(); err != nil {
		return d, fmt.Errorf("failed to load habits: %w", err)
	}
	if d.CheckIns, err = store.GetAllCheckIns(); err != nil {
		return d, fmt.Errorf("failed to load check-ins: %w", err)
	}
	if d.Progress, err = store.GetAllProgress(); err != nil {
		return d, fmt.Errorf("failed to load progress: %w", err)
	}
	if d.Definitions, err = store.GetAchievementDefinitions(); err != nil {
		return d, fmt.Errorf("failed to load achievements: %w", err)
	}
	if d.Unlocked, err = store.GetAllUnlockedAchievements(); err != nil {
		return d, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	return d, nil
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks d and returns conflicts grouped by kind.
func (v *Validator) Validate(d Data) Result {
	res := Result{Conflicts: []Conflict{}}

	habits := make(map[string]models.Habit, len(d.Habits))
	for _, h := range d.Habits {
		habits[h.ID] = h
		if h.OwnerID == "" {
			res.add(constants.ConflictMissingOwner, "", fmt.Sprintf("Habit %q has no owner", h.Name), h.ID)
		}
		if h.XPReward <= 0 {
			res.add(constants.ConflictInvalidXPReward, h.OwnerID,
				fmt.Sprintf("Habit %q awards %d XP; rewards must be positive", h.Name, h.XPReward), h.ID)
		}
	}

	byKey := make(map[string][]models.CheckIn)
	var keys []string
	for _, c := range d.CheckIns {
		if !utils.ValidateDate(c.Date) {
			res.add(constants.ConflictInvalidDate, c.OwnerID, fmt.Sprintf("Check-in %s has invalid date %q", c.ID, c.Date), c.ID)
			continue
		}
		if _, ok := habits[c.HabitID]; !ok {
			res.add(constants.ConflictOrphanedCheckIn, c.OwnerID,
				fmt.Sprintf("Check-in %s on %s refers to missing habit %s", c.ID, c.Date, c.HabitID), c.ID)
		}
		key := c.HabitID + "|" + c.Date
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], c)
	}
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		// the record Fix keeps goes first: a completed one if any
		keep := 0
		for i, c := range group {
			if c.Completed {
				keep = i
				break
			}
		}
		ids := []string{group[keep].ID}
		for i, c := range group {
			if i != keep {
				ids = append(ids, c.ID)
			}
		}
		name := group[0].HabitID
		if h, ok := habits[group[0].HabitID]; ok {
			name = h.Name
		}
		res.add(constants.ConflictDuplicateCheckIn, group[0].OwnerID,
			fmt.Sprintf("Habit %q has %d check-ins on %s", name, len(group), group[0].Date), ids...)
	}

	for _, p := range d.Progress {
		if p.OwnerID == "" {
			res.add(constants.ConflictMissingOwner, "", "Progress record has no owner", p.ID)
			continue
		}
		level := leveling.LevelForXP(p.TotalXP)
		world := leveling.WorldForLevel(level)
		if p.TotalXP < 0 || p.Level != level || p.CurrentWorld != world {
			res.add(constants.ConflictProgressDrift, p.OwnerID,
				fmt.Sprintf("Progress for %s stores level %d world %d but %d XP means level %d world %d",
					p.OwnerID, p.Level, p.CurrentWorld, p.TotalXP, level, world), p.ID)
		}
	}

	for _, def := range d.Definitions {
		if !achievements.KnownType(def.Type) {
			res.add(constants.ConflictUnknownAchievement, "",
				fmt.Sprintf("Achievement %s has unknown type %q and will never unlock", def.ID, def.Type), def.ID)
		}
	}

	unlocks := make(map[string][]string)
	var unlockKeys []string
	for _, u := range d.Unlocked {
		key := u.OwnerID + "|" + u.AchievementID
		if _, ok := unlocks[key]; !ok {
			unlockKeys = append(unlockKeys, key)
		}
		unlocks[key] = append(unlocks[key], u.ID)
	}
	for _, key := range unlockKeys {
		if ids := unlocks[key]; len(ids) > 1 {
			owner, achievement, _ := strings.Cut(key, "|")
			res.add(constants.ConflictDuplicateUnlock, owner,
				fmt.Sprintf("Achievement %s is unlocked %d times for %s", achievement, len(ids), owner), ids...)
		}
	}

	sort.SliceStable(res.Conflicts, func(i, j int) bool {
		return res.Conflicts[i].Type < res.Conflicts[j].Type
	})
	return res
}

func (r *Result) add(t constants.ConflictType, owner, desc string, ids ...string) {
	r.Conflicts = append(r.Conflicts, Conflict{Type: t, Description: desc, OwnerID: owner, IDs: ids})
}

// Fix repairs what can be repaired: drifted progress is recomputed from total
// XP, duplicate check-ins keep a completed record when there is one, duplicate
// unlocks keep their first record, and check-ins
// with invalid dates are removed. Orphaned check-ins, bad rewards and unknown
// achievement types are left for the user.
func (v *Validator) Fix(store storage.Provider, updater *progress.Updater, res Result) ([]FixAction, error) {
	var actions []FixAction
	for _, c := range res.Conflicts {
		switch c.Type {
		case constants.ConflictProgressDrift:
			p, err := updater.Recompute(c.OwnerID)
			if err != nil {
				return actions, err
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Recomputed progress for %s: level %d, world %d", c.OwnerID, p.Level, p.CurrentWorld),
				SourceConflict: c,
			})

		case constants.ConflictDuplicateCheckIn:
			for _, id := range c.IDs[1:] {
				if err := store.DeleteCheckIn(id); err != nil {
					return actions, fmt.Errorf("failed to delete check-in %s: %w", id, err)
				}
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Removed %d duplicate check-in(s), kept %s", len(c.IDs)-1, c.IDs[0]),
				SourceConflict: c,
			})

		case constants.ConflictInvalidDate:
			for _, id := range c.IDs {
				if err := store.DeleteCheckIn(id); err != nil {
					return actions, fmt.Errorf("failed to delete check-in %s: %w", id, err)
				}
			}
			actions = append(actions, FixAction{Action: "Removed check-in with invalid date " + c.IDs[0], SourceConflict: c})

		case constants.ConflictDuplicateUnlock:
			for _, id := range c.IDs[1:] {
				if err := store.DeleteUnlockedAchievement(id); err != nil {
					return actions, fmt.Errorf("failed to delete unlock %s: %w", id, err)
				}
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Removed %d duplicate unlock(s), kept %s", len(c.IDs)-1, c.IDs[0]),
				SourceConflict: c,
			})
		}
	}
	return actions, nil
}
