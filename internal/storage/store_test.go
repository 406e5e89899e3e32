package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// providers returns each file-free or temp-dir backed Provider, initialized.
func providers(t *testing.T) map[string]Provider {
	t.Helper()

	mem := NewMemoryStore()
	require.NoError(t, mem.Init())

	js := NewJSONStore(filepath.Join(t.TempDir(), "habitquest.json"))
	require.NoError(t, js.Init())

	return map[string]Provider{"memory": mem, "json": js}
}

func TestProviderHabits(t *testing.T) {
	for name, store := range providers(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
			require.NoError(t, store.AddHabit(models.Habit{ID: "h2", OwnerID: "u1", Name: "Read", XPReward: 15, CreatedAt: base.Add(time.Hour)}))
			require.NoError(t, store.AddHabit(models.Habit{ID: "h1", OwnerID: "u1", Name: "Water", XPReward: 10, CreatedAt: base}))
			require.NoError(t, store.AddHabit(models.Habit{ID: "h3", OwnerID: "u2", Name: "Run", XPReward: 25, CreatedAt: base}))
			assert.Error(t, store.AddHabit(models.Habit{ID: "h1", OwnerID: "u1"}))

			habits, err := store.GetHabits("u1")
			require.NoError(t, err)
			require.Len(t, habits, 2)
			assert.Equal(t, "h1", habits[0].ID, "habits are ordered by creation time")

			h, err := store.GetHabit("h2")
			require.NoError(t, err)
			h.XPReward = 20
			require.NoError(t, store.UpdateHabit(h))
			h, err = store.GetHabit("h2")
			require.NoError(t, err)
			assert.Equal(t, 20, h.XPReward)

			require.NoError(t, store.DeleteHabit("h2"))
			_, err = store.GetHabit("h2")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.DeleteHabit("h2"), ErrNotFound)

			all, err := store.GetAllHabits()
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestProviderUpsertCheckIn(t *testing.T) {
	for name, store := range providers(t) {
		t.Run(name, func(t *testing.T) {
			created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
			first, err := store.UpsertCheckIn(models.CheckIn{ID: "c1", HabitID: "h1", OwnerID: "u1", Date: "2024-03-10", Completed: true, CreatedAt: created})
			require.NoError(t, err)
			assert.Equal(t, "c1", first.ID)

			second, err := store.UpsertCheckIn(models.CheckIn{ID: "c2", HabitID: "h1", OwnerID: "u1", Date: "2024-03-10", Completed: false, CreatedAt: created.Add(time.Hour)})
			require.NoError(t, err)
			assert.Equal(t, "c1", second.ID, "existing id is kept")
			assert.True(t, second.CreatedAt.Equal(created))

			all, err := store.GetCheckIns("u1")
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.False(t, all[0].Completed)

			got, err := store.GetCheckIn("h1", "2024-03-10")
			require.NoError(t, err)
			assert.Equal(t, "c1", got.ID)
			_, err = store.GetCheckIn("h1", "2024-03-11")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.DeleteCheckIn("c1"))
			all, err = store.GetAllCheckIns()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestProviderProgressAndUnlocks(t *testing.T) {
	for name, store := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetProgress("u1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.SaveProgress(models.Progress{ID: "p1", OwnerID: "u1", Level: 1, CurrentWorld: 1}))
			require.NoError(t, store.SaveProgress(models.Progress{ID: "p1", OwnerID: "u1", Level: 2, TotalXP: 60, CurrentWorld: 1}))
			p, err := store.GetProgress("u1")
			require.NoError(t, err)
			assert.Equal(t, 60, p.TotalXP)

			all, err := store.GetAllProgress()
			require.NoError(t, err)
			assert.Len(t, all, 1)

			added, err := store.AddUnlockedAchievement(models.UnlockedAchievement{ID: "a1", AchievementID: "level-5", OwnerID: "u1", UnlockedAt: time.Now().UTC()})
			require.NoError(t, err)
			assert.True(t, added)
			added, err = store.AddUnlockedAchievement(models.UnlockedAchievement{ID: "a2", AchievementID: "level-5", OwnerID: "u1", UnlockedAt: time.Now().UTC()})
			require.NoError(t, err)
			assert.False(t, added, "second unlock is a no-op")

			unlocks, err := store.GetUnlockedAchievements("u1")
			require.NoError(t, err)
			assert.Len(t, unlocks, 1)
		})
	}
}

func TestProviderCatalogOrderAndUsers(t *testing.T) {
	for name, store := range providers(t) {
		t.Run(name, func(t *testing.T) {
			defs := []models.AchievementDefinition{
				{ID: "z-last", Type: constants.AchievementLevel, Requirement: 2},
				{ID: "a-first", Type: constants.AchievementWorld, Requirement: 2},
			}
			require.NoError(t, store.SaveAchievementDefinitions(defs))
			got, err := store.GetAchievementDefinitions()
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "z-last", got[0].ID, "catalog order is preserved")

			require.NoError(t, store.SaveUser(models.User{ID: "u1", Email: "Ada@Example.com"}))
			u, err := store.GetUserByEmail("ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)

			require.NoError(t, store.SetCurrentUserID("u1"))
			id, err := store.GetCurrentUserID()
			require.NoError(t, err)
			assert.Equal(t, "u1", id)

			require.NoError(t, store.SaveHabitTemplates([]models.HabitTemplate{{ID: "template-water", Category: "health"}}))
			templates, err := store.GetHabitTemplates()
			require.NoError(t, err)
			assert.Len(t, templates, 1)
		})
	}
}

func TestJSONStorePersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "habitquest.json")

	store := NewJSONStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.AddHabit(models.Habit{ID: "h1", OwnerID: "u1", Name: "Stretch", XPReward: 10}))
	require.NoError(t, store.SetCurrentUserID("u1"))

	assert.Error(t, NewJSONStore(path).Init(), "second init must fail")

	reloaded := NewJSONStore(path)
	require.NoError(t, reloaded.Load())
	h, err := reloaded.GetHabit("h1")
	require.NoError(t, err)
	assert.Equal(t, "Stretch", h.Name)
	id, err := reloaded.GetCurrentUserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".habitquest-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temp files left behind")
}

func TestJSONStoreLoadErrors(t *testing.T) {
	err := NewJSONStore(filepath.Join(t.TempDir(), "missing.json")).Load()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = NewMemoryStore().GetHabits("u1")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestMemoryStoreFailedSaveLeavesDocumentUnchanged(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Init())
	require.NoError(t, store.AddHabit(models.Habit{ID: "h1", OwnerID: "u1", Name: "Read", XPReward: 10}))

	store.persist = func(*Document) error { return errors.New("disk full") }
	assert.Error(t, store.AddHabit(models.Habit{ID: "h2", OwnerID: "u1", Name: "Run", XPReward: 20}))
	assert.Error(t, store.DeleteHabit("h1"))

	var saved *Document
	store.persist = func(d *Document) error {
		saved = d
		return nil
	}
	habits, err := store.GetHabits("u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "h1", habits[0].ID)

	require.NoError(t, store.SetCurrentUserID("u1"))
	require.NotNil(t, saved)
	assert.Len(t, saved.Habits, 1, "a failed change is not written by the next save")
}

func TestJSONStoreSeesChangesFromAnotherStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitquest.json")
	first := NewJSONStore(path)
	require.NoError(t, first.Init())

	second := NewJSONStore(path)
	require.NoError(t, second.Load())
	require.NoError(t, second.AddHabit(models.Habit{ID: "h1", OwnerID: "u1", Name: "Read", XPReward: 10}))

	habits, err := first.GetHabits("u1")
	require.NoError(t, err)
	require.Len(t, habits, 1, "reads pick up the other store's write")

	require.NoError(t, first.AddHabit(models.Habit{ID: "h2", OwnerID: "u1", Name: "Run", XPReward: 20}))

	reloaded := NewJSONStore(path)
	require.NoError(t, reloaded.Load())
	habits, err = reloaded.GetHabits("u1")
	require.NoError(t, err)
	assert.Len(t, habits, 2, "neither write is lost")

	require.NoError(t, os.Remove(path))
	_, err = first.GetHabits("u1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
