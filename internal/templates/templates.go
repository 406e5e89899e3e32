// Package templates manages the preset habits users can start from.
package templates

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

// ErrTemplateNotFound is returned when no template has the requested id.
var ErrTemplateNotFound = errors.New("habit template not found")

// Defaults returns the built-in templates.
func Defaults() []models.HabitTemplate {
	return []models.HabitTemplate{
		{ID: "template-water", Name: "Drink Water", Description: "Drink 8 glasses of water daily", XPReward: 10, Icon: "💧", Category: "health", IsDefault: true},
		{ID: "template-exercise", Name: "Exercise", Description: "30 minutes of physical activity", XPReward: 25, Icon: "🏃", Category: "health", IsDefault: true},
		{ID: "template-read", Name: "Read", Description: "Read for 20 minutes", XPReward: 15, Icon: "📚", Category: "learning", IsDefault: true},
		{ID: "template-meditate", Name: "Meditate", Description: "10 minutes of meditation", XPReward: 15, Icon: "🧘", Category: "wellness", IsDefault: true},
		{ID: "template-journal", Name: "Journal", Description: "Write in your journal", XPReward: 10, Icon: "📝", Category: "wellness", IsDefault: true},
		{ID: "template-sleep", Name: "Sleep 8 Hours", Description: "Get 8 hours of sleep", XPReward: 20, Icon: "😴", Category: "health", IsDefault: true},
		{ID: "template-gratitude", Name: "Gratitude", Description: "Write 3 things you're grateful for", XPReward: 10, Icon: "🙏", Category: "wellness", IsDefault: true},
		{ID: "template-no-smoking", Name: "No Smoking", Description: "Stay smoke-free today", XPReward: 30, Icon: "🚭", Category: "health", IsDefault: true},
		{ID: "template-code", Name: "Code Practice", Description: "Practice coding for 1 hour", XPReward: 25, Icon: "💻", Category: "learning", IsDefault: true},
		{ID: "template-stretch", Name: "Stretch", Description: "10 minutes of stretching", XPReward: 10, Icon: "🤸", Category: "health", IsDefault: true},
	}
}

// Ensure makes sure every default template is stored, keeping any templates
// already present, and returns the full list.
func Ensure(store storage.Provider) ([]models.HabitTemplate, error) {
	existing, err := store.GetHabitTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load habit templates: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[t.ID] = true
	}

	merged := existing
	for _, t := range Defaults() {
		if !have[t.ID] {
			merged = append(merged, t)
		}
	}
	if len(merged) == len(existing) {
		return existing, nil
	}

	if err := store.SaveHabitTemplates(merged); err != nil {
		return nil, fmt.Errorf("failed to save habit templates: %w", err)
	}
	return merged, nil
}

// List returns all templates, or those in category when it is not empty.
func List(store storage.Provider, category string) ([]models.HabitTemplate, error) {
	all, err := Ensure(store)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return all, nil
	}
	var out []models.HabitTemplate
	for _, t := range all {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns the template with id.
func Get(store storage.Provider, id string) (models.HabitTemplate, error) {
	all, err := Ensure(store)
	if err != nil {
		return models.HabitTemplate{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return models.HabitTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Categories returns the distinct template categories, sorted.
func Categories(store storage.Provider) ([]string, error) {
	all, err := Ensure(store)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range all {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}
