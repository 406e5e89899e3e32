package tracker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/achievements"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

var ErrFutureDate = errors.New("cannot check in on a future date")

// Outcome summarizes what changed for the user after an action.
type Outcome struct {
	Progress      models.Progress
	LeveledUp     bool
	WorldUnlocked bool
	// Unlocked lists newly unlocked achievements in the order they were earned.
	Unlocked []models.AchievementDefinition
}

// ToggleResult is the outcome of flipping a day's completion.
type ToggleResult struct {
	Outcome
	CheckIn models.CheckIn
	Habit   models.Habit
	XPDelta int
}

// ToggleCheckIn flips a habit's completion for date (today when empty). Completing
// awards the habit's XP; un-completing takes it back, which may lower the level.
// Achievements are then evaluated until nothing new unlocks.
func (t *Tracker) ToggleCheckIn(habitID, date string) (ToggleResult, error) {
	h, err := t.ownedHabit(habitID)
	if err != nil {
		return ToggleResult{}, err
	}

	today := t.Today()
	if date == "" {
		date = today
	}
	if !utils.ValidateDate(date) {
		return ToggleResult{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	if date > today {
		return ToggleResult{}, fmt.Errorf("%w: %s", ErrFutureDate, date)
	}

	completed := true
	existing, err := t.store.GetCheckIn(h.ID, date)
	switch {
	case err == nil:
		completed = !existing.Completed
	case !errors.Is(err, storage.ErrNotFound):
		return ToggleResult{}, fmt.Errorf("failed to load check-in: %w", err)
	}

	before, err := t.progress.Get(h.OwnerID)
	if err != nil {
		return ToggleResult{}, err
	}

	stored, err := t.store.UpsertCheckIn(models.CheckIn{
		ID:        uuid.New().String(),
		HabitID:   h.ID,
		OwnerID:   h.OwnerID,
		Date:      date,
		Completed: completed,
		CreatedAt: t.clock.Now(),
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("failed to save check-in: %w", err)
	}

	delta := h.XPReward
	if !completed {
		delta = -h.XPReward
	}
	if _, err := t.progress.ApplyXPDelta(h.OwnerID, delta); err != nil {
		return ToggleResult{}, err
	}
	logger.Debug("Toggled check-in", "habit", h.ID, "date", date, "completed", completed, "xp", delta)

	outcome, err := t.settle(h.OwnerID, before)
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Outcome: outcome, CheckIn: stored, Habit: h, XPDelta: delta}, nil
}

// CheckAchievements re-evaluates achievements for the current user.
func (t *Tracker) CheckAchievements() (Outcome, error) {
	owner, err := t.ownerID()
	if err != nil {
		return Outcome{}, err
	}
	before, err := t.progress.Get(owner)
	if err != nil {
		return Outcome{}, err
	}
	return t.settle(owner, before)
}

// settle runs evaluation passes until one unlocks nothing, so rewards that
// cross a level or world threshold unlock the matching achievements right away.
// Level and world flags compare against before.
func (t *Tracker) settle(owner string, before models.Progress) (Outcome, error) {
	var unlockedIDs []string
	for {
		ids, err := t.evaluator.Evaluate(owner)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to evaluate achievements: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		unlockedIDs = append(unlockedIDs, ids...)
	}

	after, err := t.progress.Get(owner)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Progress:      after,
		LeveledUp:     after.Level > leveling.LevelForXP(before.TotalXP),
		WorldUnlocked: after.CurrentWorld > leveling.WorldForLevel(leveling.LevelForXP(before.TotalXP)),
	}
	for _, id := range unlockedIDs {
		def, err := t.evaluator.Lookup(id)
		if err != nil {
			return Outcome{}, err
		}
		out.Unlocked = append(out.Unlocked, def)
	}
	return out, nil
}

// Achievements returns every achievement with the current user's progress toward it.
func (t *Tracker) Achievements() ([]achievements.Status, error) {
	owner, err := t.ownerID()
	if err != nil {
		return nil, err
	}
	return t.evaluator.Status(owner)
}

// Worlds returns the world map for the current user.
func (t *Tracker) Worlds() ([]leveling.World, error) {
	p, _, err := t.Progress()
	if err != nil {
		return nil, err
	}
	return leveling.WorldMap(p.CurrentWorld), nil
}
