package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

func newTracker(t *testing.T) (*Tracker, *utils.FakeClock) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init())
	clock := utils.NewFakeClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	return New(store, clock), clock
}

func signedIn(t *testing.T) (*Tracker, *utils.FakeClock) {
	t.Helper()
	tr, clock := newTracker(t)
	_, err := tr.SignIn("ada@example.com", "Ada", false)
	require.NoError(t, err)
	return tr, clock
}

func unlockedIDs(out Outcome) []string {
	ids := make([]string, 0, len(out.Unlocked))
	for _, d := range out.Unlocked {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestSignIn(t *testing.T) {
	tr, _ := newTracker(t)

	_, err := tr.CurrentUser()
	assert.ErrorIs(t, err, ErrNoCurrentUser)

	_, err = tr.SignIn("not-an-email", "", false)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	first, err := tr.SignIn("ada@example.com", "Ada", false)
	require.NoError(t, err)
	again, err := tr.SignIn("ada@example.com", "", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Ada", again.Name)

	current, err := tr.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	p, summary, err := tr.Progress()
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 1, summary.Level)

	require.NoError(t, tr.SignOut())
	_, err = tr.CurrentUser()
	assert.ErrorIs(t, err, ErrNoCurrentUser)
}

func TestCreateHabitRequiresUser(t *testing.T) {
	tr, _ := newTracker(t)
	_, err := tr.CreateHabit("Read", "", 10)
	assert.ErrorIs(t, err, ErrNoCurrentUser)
}

func TestCreateHabitValidation(t *testing.T) {
	tr, _ := signedIn(t)

	tests := []struct {
		name string
		hab  string
		xp   int
	}{
		{"empty name", "  ", 10},
		{"zero xp", "Read", 0},
		{"negative xp", "Read", -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.CreateHabit(tt.hab, "", tt.xp)
			assert.ErrorIs(t, err, ErrInvalidHabit)
		})
	}
}

func TestCreateHabitDoesNotEvaluate(t *testing.T) {
	tr, _ := signedIn(t)

	_, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	statuses, err := tr.Achievements()
	require.NoError(t, err)
	for _, s := range statuses {
		assert.False(t, s.Unlocked, s.Definition.ID)
	}
}

func TestFirstCheckIn(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	res, err := tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	assert.True(t, res.CheckIn.Completed)
	assert.Equal(t, "2024-03-10", res.CheckIn.Date)
	assert.Equal(t, 10, res.XPDelta)
	assert.Equal(t, []string{constants.AchievementFirstHabit, constants.AchievementAllHabitsDay}, unlockedIDs(res.Outcome))
	// 10 for the habit, 10 and 50 for the two achievements
	assert.Equal(t, 70, res.Progress.TotalXP)
	assert.Equal(t, 2, res.Progress.Level)
	assert.True(t, res.LeveledUp)
	assert.False(t, res.WorldUnlocked)
}

func TestToggleOffTakesXPBack(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Run", "", 60)
	require.NoError(t, err)

	on, err := tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 120, on.Progress.TotalXP)
	assert.Equal(t, 3, on.Progress.Level)

	off, err := tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	assert.False(t, off.CheckIn.Completed)
	assert.Equal(t, on.CheckIn.ID, off.CheckIn.ID)
	assert.Equal(t, -60, off.XPDelta)
	assert.Equal(t, 60, off.Progress.TotalXP)
	assert.Equal(t, 2, off.Progress.Level)
	assert.Empty(t, off.Unlocked)
	assert.False(t, off.LeveledUp)

	// unlocks stay after the XP is taken back
	statuses, err := tr.Achievements()
	require.NoError(t, err)
	unlocked := 0
	for _, s := range statuses {
		if s.Unlocked {
			unlocked++
		}
	}
	assert.Equal(t, 2, unlocked)

	// toggling back on does not award the achievements twice
	again, err := tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	assert.Empty(t, again.Unlocked)
	assert.Equal(t, 120, again.Progress.TotalXP)
}

func TestRewardsCascadeIntoLevelAchievements(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Marathon", "", 200)
	require.NoError(t, err)

	// 200 + 10 + 50 crosses level 5 at 250, which unlocks level-5 (+50)
	res, err := tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{constants.AchievementFirstHabit, constants.AchievementAllHabitsDay, "level-5"}, unlockedIDs(res.Outcome))
	assert.Equal(t, 310, res.Progress.TotalXP)
	assert.Equal(t, 5, res.Progress.Level)
	assert.True(t, res.LeveledUp)
}

func TestToggleCheckInDates(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	_, err = tr.ToggleCheckIn(h.ID, "2024-03-11")
	assert.ErrorIs(t, err, ErrFutureDate)

	_, err = tr.ToggleCheckIn(h.ID, "03/09/2024")
	assert.Error(t, err)

	res, err := tr.ToggleCheckIn(h.ID, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", res.CheckIn.Date)
	// yesterday's completion does not make today a perfect day
	assert.Equal(t, []string{constants.AchievementFirstHabit}, unlockedIDs(res.Outcome))
}

func TestHabitsOfOtherUsersAreHidden(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	_, err = tr.SignIn("bob@example.com", "Bob", false)
	require.NoError(t, err)

	_, err = tr.ToggleCheckIn(h.ID, "")
	assert.ErrorIs(t, err, ErrHabitNotFound)
	_, err = tr.ResolveHabit("Read")
	assert.ErrorIs(t, err, ErrHabitNotFound)
	assert.ErrorIs(t, tr.DeleteHabit(h.ID), ErrHabitNotFound)

	views, err := tr.ListHabits()
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestResolveHabit(t *testing.T) {
	tr, _ := signedIn(t)
	read, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)
	_, err = tr.CreateHabit("Run", "", 20)
	require.NoError(t, err)

	got, err := tr.ResolveHabit("read")
	require.NoError(t, err)
	assert.Equal(t, read.ID, got.ID)

	got, err = tr.ResolveHabit(read.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, read.ID, got.ID)

	_, err = tr.ResolveHabit("swim")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestUpdateAndDeleteHabit(t *testing.T) {
	tr, clock := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	name := "Read 20 pages"
	xp := 15
	updated, err := tr.UpdateHabit(h.ID, HabitPatch{Name: &name, XPReward: &xp})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 15, updated.XPReward)
	assert.True(t, updated.UpdatedAt.After(h.UpdatedAt))

	zero := 0
	_, err = tr.UpdateHabit(h.ID, HabitPatch{XPReward: &zero})
	assert.ErrorIs(t, err, ErrInvalidHabit)

	_, err = tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)
	before, _, err := tr.Progress()
	require.NoError(t, err)

	require.NoError(t, tr.DeleteHabit(h.ID))
	views, err := tr.ListHabits()
	require.NoError(t, err)
	assert.Empty(t, views)

	after, _, err := tr.Progress()
	require.NoError(t, err)
	assert.Equal(t, before.TotalXP, after.TotalXP)
}

func TestListHabitsAndHistory(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)

	for _, d := range []string{"2024-03-07", "2024-03-09", "2024-03-10"} {
		_, err := tr.ToggleCheckIn(h.ID, d)
		require.NoError(t, err)
	}

	views, err := tr.ListHabits()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].CurrentStreak)
	assert.Equal(t, 2, views[0].LongestStreak)
	assert.True(t, views[0].CompletedToday)

	history, err := tr.History(h.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []DayStatus{
		{Date: "2024-03-07", Completed: true, Recorded: true},
		{Date: "2024-03-08"},
		{Date: "2024-03-09", Completed: true, Recorded: true},
		{Date: "2024-03-10", Completed: true, Recorded: true},
	}, history)
}

func TestTemplates(t *testing.T) {
	tr, _ := signedIn(t)

	h, err := tr.CreateHabitFromTemplate("template-read")
	require.NoError(t, err)
	assert.NotEmpty(t, h.Name)
	assert.Positive(t, h.XPReward)

	_, err = tr.AddTemplate(models.HabitTemplate{Name: "Walk", XPReward: 10, Category: "health"})
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, err = tr.SignIn("root@example.com", "", true)
	require.NoError(t, err)
	tpl, err := tr.AddTemplate(models.HabitTemplate{Name: "Walk", XPReward: 10, Category: "health"})
	require.NoError(t, err)
	assert.False(t, tpl.IsDefault)

	walk, err := tr.CreateHabitFromTemplate(tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", walk.Name)
}

func TestExportImportRoundTrip(t *testing.T) {
	tr, _ := signedIn(t)
	h, err := tr.CreateHabit("Read", "", 10)
	require.NoError(t, err)
	_, err = tr.ToggleCheckIn(h.ID, "")
	require.NoError(t, err)

	snap, err := tr.Export()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", snap.User.Email)
	require.NotNil(t, snap.Progress)
	assert.Equal(t, 70, snap.Progress.TotalXP)

	_, err = tr.SignIn("bob@example.com", "Bob", false)
	require.NoError(t, err)
	stats, out, err := tr.Import(snap, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Habits)
	assert.Equal(t, 1, stats.RenamedHabits)
	assert.Equal(t, 1, stats.CheckIns)
	assert.Equal(t, 2, stats.Achievements)
	assert.Empty(t, out.Unlocked)
	assert.Equal(t, 70, out.Progress.TotalXP)
	assert.Equal(t, 2, out.Progress.Level)
	assert.True(t, out.LeveledUp)

	views, err := tr.ListHabits()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.NotEqual(t, h.ID, views[0].ID)
	assert.True(t, views[0].CompletedToday)
}
