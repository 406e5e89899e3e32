package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

func newStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	require.NoError(t, s.Init())
	return s
}

func TestEnsureSeedsDefaults(t *testing.T) {
	store := newStore(t)

	all, err := Ensure(store)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	stored, err := store.GetHabitTemplates()
	require.NoError(t, err)
	assert.Len(t, stored, 10)
}

func TestEnsureAddsMissingDefaultsAndKeepsCustom(t *testing.T) {
	store := newStore(t)
	custom := models.HabitTemplate{ID: "my-walk", Name: "Walk", XPReward: 5, Category: "health"}
	require.NoError(t, store.SaveHabitTemplates([]models.HabitTemplate{custom, Defaults()[0]}))

	all, err := Ensure(store)
	require.NoError(t, err)
	assert.Len(t, all, 11)
	assert.Equal(t, "my-walk", all[0].ID)

	again, err := Ensure(store)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestListByCategory(t *testing.T) {
	store := newStore(t)

	tests := []struct {
		category string
		want     int
	}{
		{"", 10},
		{"health", 5},
		{"learning", 2},
		{"wellness", 3},
		{"finance", 0},
	}
	for _, tt := range tests {
		got, err := List(store, tt.category)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "category %q", tt.category)
	}
}

func TestCategoriesAndGet(t *testing.T) {
	store := newStore(t)

	cats, err := Categories(store)
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "learning", "wellness"}, cats)

	tpl, err := Get(store, "template-no-smoking")
	require.NoError(t, err)
	assert.Equal(t, 30, tpl.XPReward)

	_, err = Get(store, "template-skydive")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
