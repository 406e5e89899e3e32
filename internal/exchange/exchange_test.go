package exchange

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) (*storage.MemoryStore, models.User) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())

	user := models.User{ID: "u1", Email: "ada@example.com", Name: "Ada", CreatedAt: now}
	require.NoError(t, store.SaveUser(user))
	require.NoError(t, store.AddHabit(models.Habit{ID: "h1", OwnerID: "u1", Name: "Read", XPReward: 10, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.AddHabit(models.Habit{ID: "h2", OwnerID: "other", Name: "Run", XPReward: 20, CreatedAt: now, UpdatedAt: now}))
	_, err := store.UpsertCheckIn(models.CheckIn{ID: "c1", HabitID: "h1", OwnerID: "u1", Date: "2024-03-09", Completed: true, CreatedAt: now})
	require.NoError(t, err)
	require.NoError(t, store.SaveProgress(models.Progress{ID: "p1", OwnerID: "u1", TotalXP: 120, Level: 3, CurrentWorld: 1, UpdatedAt: now}))
	_, err = store.AddUnlockedAchievement(models.UnlockedAchievement{ID: "a1", AchievementID: "first-habit", OwnerID: "u1", UnlockedAt: now})
	require.NoError(t, err)
	return store, user
}

func TestBuildOnlyIncludesOwner(t *testing.T) {
	store, user := seeded(t)

	snap, err := Build(store, user, now)
	require.NoError(t, err)
	assert.Equal(t, constants.ExportVersion, snap.Version)
	assert.Equal(t, "ada@example.com", snap.User.Email)
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, "h1", snap.Habits[0].ID)
	assert.Len(t, snap.CheckIns, 1)
	require.NotNil(t, snap.Progress)
	assert.Equal(t, 120, snap.Progress.TotalXP)
	assert.Len(t, snap.Achievements, 1)
}

func TestBuildWithoutProgress(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())

	snap, err := Build(store, models.User{ID: "new", Email: "new@example.com"}, now)
	require.NoError(t, err)
	assert.Nil(t, snap.Progress)
	assert.NotNil(t, snap.Habits)
	assert.NotNil(t, snap.CheckIns)
}

func TestWriteThenParse(t *testing.T) {
	store, user := seeded(t)
	snap, err := Build(store, user, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	assert.Contains(t, buf.String(), `"exportDate"`)
	assert.Contains(t, buf.String(), `"checkIns"`)

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Habits[0].ID, parsed.Habits[0].ID)
	assert.True(t, snap.ExportDate.Equal(parsed.ExportDate))
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "hello"},
		{"missing version", `{"exportDate":"2024-03-10T00:00:00Z","habits":[]}`},
		{"missing export date", `{"version":"1.0.0","habits":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestApplyReplace(t *testing.T) {
	store, _ := seeded(t)

	snap := Snapshot{
		Version:    constants.ExportVersion,
		ExportDate: now,
		Habits:     []models.Habit{{ID: "h9", OwnerID: "someone", Name: "Stretch", XPReward: 15}},
		CheckIns: []models.CheckIn{
			{ID: "x", HabitID: "h9", Date: "2024-03-08", Completed: true},
			{ID: "y", HabitID: "h9", Date: "2024-03-08", Completed: true},
			{ID: "z", HabitID: "h9", Date: "bad-date", Completed: true},
		},
		Progress:     &models.Progress{TotalXP: 15},
		Achievements: []models.UnlockedAchievement{{AchievementID: "streak-3"}},
	}

	stats, err := Apply(store, "u1", snap, false, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Habits)
	assert.Equal(t, 0, stats.RenamedHabits)
	assert.Equal(t, 1, stats.CheckIns)
	assert.Equal(t, 2, stats.SkippedCheckIns)
	assert.True(t, stats.ProgressImported)
	assert.Equal(t, 1, stats.Achievements)

	habits, err := store.GetHabits("u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "h9", habits[0].ID)
	assert.Equal(t, "u1", habits[0].OwnerID)

	checkIns, err := store.GetCheckIns("u1")
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	assert.Equal(t, "h9", checkIns[0].HabitID)

	p, err := store.GetProgress("u1")
	require.NoError(t, err)
	assert.Equal(t, 15, p.TotalXP)

	unlocked, err := store.GetUnlockedAchievements("u1")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "streak-3", unlocked[0].AchievementID)

	// other owners are untouched
	other, err := store.GetHabits("other")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestApplyMergeRemapsCollidingHabits(t *testing.T) {
	store, _ := seeded(t)

	snap := Snapshot{
		Version:    constants.ExportVersion,
		ExportDate: now,
		Habits: []models.Habit{
			{ID: "h1", Name: "Read again", XPReward: 10},
			{ID: "h2", Name: "Run copy", XPReward: 20},
		},
		CheckIns: []models.CheckIn{
			{HabitID: "h1", Date: "2024-03-09", Completed: true},
			{HabitID: "h2", Date: "2024-03-09", Completed: true},
		},
		Progress:     &models.Progress{TotalXP: 9999},
		Achievements: []models.UnlockedAchievement{{AchievementID: "first-habit"}},
	}

	stats, err := Apply(store, "u1", snap, true, now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Habits)
	assert.Equal(t, 2, stats.RenamedHabits)
	assert.Equal(t, 2, stats.CheckIns)
	assert.False(t, stats.ProgressImported)
	assert.Equal(t, 0, stats.Achievements)

	habits, err := store.GetHabits("u1")
	require.NoError(t, err)
	require.Len(t, habits, 3)

	ids := map[string]bool{}
	for _, h := range habits {
		ids[h.ID] = true
	}
	checkIns, err := store.GetCheckIns("u1")
	require.NoError(t, err)
	require.Len(t, checkIns, 3)
	for _, c := range checkIns {
		assert.True(t, ids[c.HabitID], "check-in %s points at a habit the owner has", c.ID)
	}

	p, err := store.GetProgress("u1")
	require.NoError(t, err)
	assert.Equal(t, 120, p.TotalXP)

	// the other owner's habit keeps its id and owner
	h2, err := store.GetHabit("h2")
	require.NoError(t, err)
	assert.Equal(t, "other", h2.OwnerID)
}

func TestApplyMergeSkipsExistingCheckIns(t *testing.T) {
	store, user := seeded(t)
	snap, err := Build(store, user, now)
	require.NoError(t, err)

	// a check-in whose habit is not in the file keeps its habit id
	snap.Habits = nil
	stats, err := Apply(store, "u1", snap, true, now)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CheckIns)
	assert.Equal(t, 1, stats.SkippedCheckIns)
}

func TestWriteWorkbook(t *testing.T) {
	store, user := seeded(t)
	snap, err := Build(store, user, now)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, snap))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Habits", "CheckIns", "Progress", "Achievements"}, f.GetSheetList())

	rows, err := f.GetRows("CheckIns")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-03-09", "Read", "yes"}, rows[1])

	progress, err := f.GetRows("Progress")
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "ada@example.com", progress[1][0])
	assert.Equal(t, "3", progress[1][2])
}
