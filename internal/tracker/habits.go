package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/streak"
	"github.com/julianstephens/habitquest/internal/templates"
	"github.com/julianstephens/habitquest/internal/utils"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidHabit  = errors.New("invalid habit")
)

// HabitPatch holds the fields to change on a habit; nil fields are left alone.
type HabitPatch struct {
	Name        *string
	Description *string
	XPReward    *int
}

// HabitView is a habit with its streaks and today's status.
type HabitView struct {
	models.Habit
	CurrentStreak  int
	LongestStreak  int
	CompletedToday bool
}

func validateHabit(name string, xp int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidHabit)
	}
	if xp <= 0 {
		return fmt.Errorf("%w: xp reward must be positive", ErrInvalidHabit)
	}
	return nil
}

// CreateHabit adds a habit for the current user. Creating a habit does not
// evaluate achievements; that happens on the next check-in.
func (t *Tracker) CreateHabit(name, description string, xpReward int) (models.Habit, error) {
	owner, err := t.ownerID()
	if err != nil {
		return models.Habit{}, err
	}
	if err := validateHabit(name, xpReward); err != nil {
		return models.Habit{}, err
	}

	now := t.clock.Now()
	h := models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		XPReward:    xpReward,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.store.AddHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

// CreateHabitFromTemplate creates a habit copying a template's name, description and reward.
func (t *Tracker) CreateHabitFromTemplate(templateID string) (models.Habit, error) {
	tpl, err := templates.Get(t.store, templateID)
	if err != nil {
		return models.Habit{}, err
	}
	return t.CreateHabit(tpl.Name, tpl.Description, tpl.XPReward)
}

// AddTemplate stores a new custom template. Only admins may add templates.
func (t *Tracker) AddTemplate(tpl models.HabitTemplate) (models.HabitTemplate, error) {
	u, err := t.CurrentUser()
	if err != nil {
		return models.HabitTemplate{}, err
	}
	if !u.IsAdmin {
		return models.HabitTemplate{}, ErrNotAdmin
	}
	if err := validateHabit(tpl.Name, tpl.XPReward); err != nil {
		return models.HabitTemplate{}, err
	}

	all, err := templates.Ensure(t.store)
	if err != nil {
		return models.HabitTemplate{}, err
	}
	if tpl.ID == "" {
		tpl.ID = "template-" + uuid.New().String()
	}
	for _, existing := range all {
		if existing.ID == tpl.ID {
			return models.HabitTemplate{}, fmt.Errorf("template %s already exists", tpl.ID)
		}
	}
	tpl.IsDefault = false
	if err := t.store.SaveHabitTemplates(append(all, tpl)); err != nil {
		return models.HabitTemplate{}, fmt.Errorf("failed to save template: %w", err)
	}
	return tpl, nil
}

// ResolveHabit finds one of the current user's habits by id, id prefix or
// case-insensitive name.
func (t *Tracker) ResolveHabit(ref string) (models.Habit, error) {
	owner, err := t.ownerID()
	if err != nil {
		return models.Habit{}, err
	}
	habits, err := t.store.GetHabits(owner)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to load habits: %w", err)
	}

	ref = strings.TrimSpace(ref)
	var matches []models.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) || (len(ref) >= 4 && strings.HasPrefix(h.ID, ref)) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%q matches %d habits, use the id", ref, len(matches))
	}
}

func (t *Tracker) ownedHabit(id string) (models.Habit, error) {
	owner, err := t.ownerID()
	if err != nil {
		return models.Habit{}, err
	}
	h, err := t.store.GetHabit(id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && h.OwnerID != owner) {
		return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	if err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// UpdateHabit applies patch to one of the current user's habits.
func (t *Tracker) UpdateHabit(id string, patch HabitPatch) (models.Habit, error) {
	h, err := t.ownedHabit(id)
	if err != nil {
		return models.Habit{}, err
	}
	if patch.Name != nil {
		h.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		h.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.XPReward != nil {
		h.XPReward = *patch.XPReward
	}
	if err := validateHabit(h.Name, h.XPReward); err != nil {
		return models.Habit{}, err
	}
	h.UpdatedAt = t.clock.Now()
	if err := t.store.UpdateHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// DeleteHabit removes a habit. Its check-ins are kept; earned XP and unlocks stay.
func (t *Tracker) DeleteHabit(id string) error {
	if _, err := t.ownedHabit(id); err != nil {
		return err
	}
	if err := t.store.DeleteHabit(id); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// ListHabits returns the current user's habits with streak information.
func (t *Tracker) ListHabits() ([]HabitView, error) {
	owner, err := t.ownerID()
	if err != nil {
		return nil, err
	}
	habits, err := t.store.GetHabits(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	checkIns, err := t.store.GetCheckIns(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	today := t.Today()
	byHabit := streak.GroupByHabit(checkIns)
	views := make([]HabitView, 0, len(habits))
	for _, h := range habits {
		v := HabitView{
			Habit:         h,
			CurrentStreak: streak.Current(byHabit[h.ID], today),
			LongestStreak: streak.Longest(byHabit[h.ID], today),
		}
		for _, c := range byHabit[h.ID] {
			if c.Date == today && c.Completed {
				v.CompletedToday = true
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// DayStatus is one day of a habit's history.
type DayStatus struct {
	Date      string
	Completed bool
	Recorded  bool
}

// History returns the last days of a habit ending today, oldest first.
func (t *Tracker) History(habitID string, days int) ([]DayStatus, error) {
	h, err := t.ownedHabit(habitID)
	if err != nil {
		return nil, err
	}
	checkIns, err := t.store.GetCheckIns(h.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	byDate := make(map[string]models.CheckIn)
	for _, c := range checkIns {
		if c.HabitID == h.ID {
			byDate[c.Date] = c
		}
	}

	days = max(days, 1)
	out := make([]DayStatus, 0, days)
	for i := days - 1; i >= 0; i-- {
		date, err := utils.AddDays(t.Today(), -i)
		if err != nil {
			return nil, err
		}
		c, ok := byDate[date]
		out = append(out, DayStatus{Date: date, Completed: ok && c.Completed, Recorded: ok})
	}
	return out, nil
}

// Templates lists habit templates, optionally limited to one category.
func (t *Tracker) Templates(category string) ([]models.HabitTemplate, error) {
	return templates.List(t.store, category)
}
