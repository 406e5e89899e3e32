package exchange

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/habitquest/internal/leveling"
)

const (
	sheetHabits       = "Habits"
	sheetCheckIns     = "CheckIns"
	sheetProgress     = "Progress"
	sheetAchievements = "Achievements"
)

// WriteWorkbook writes snap as an XLSX report with one sheet per record kind.
func WriteWorkbook(path string, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetHabits); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{sheetCheckIns, sheetProgress, sheetAchievements} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	names := make(map[string]string, len(snap.Habits))
	habits := [][]any{{"ID", "Name", "Description", "XP Reward", "Created"}}
	for _, h := range snap.Habits {
		names[h.ID] = h.Name
		habits = append(habits, []any{h.ID, h.Name, h.Description, h.XPReward, h.CreatedAt.Format(time.RFC3339)})
	}

	checkIns := [][]any{{"Date", "Habit", "Completed"}}
	for _, c := range snap.CheckIns {
		name := names[c.HabitID]
		if name == "" {
			name = c.HabitID
		}
		done := "no"
		if c.Completed {
			done = "yes"
		}
		checkIns = append(checkIns, []any{c.Date, name, done})
	}

	progress := [][]any{{"Email", "Total XP", "Level", "World", "XP To Next Level"}}
	if snap.Progress != nil {
		s := leveling.Summarize(snap.Progress.TotalXP)
		progress = append(progress, []any{snap.User.Email, s.TotalXP, s.Level, s.World, s.XPToNextLevel})
	}

	unlocked := [][]any{{"Achievement", "Unlocked At"}}
	for _, u := range snap.Achievements {
		unlocked = append(unlocked, []any{u.AchievementID, u.UnlockedAt.Format(time.RFC3339)})
	}

	for sheet, rows := range map[string][][]any{
		sheetHabits:       habits,
		sheetCheckIns:     checkIns,
		sheetProgress:     progress,
		sheetAchievements: unlocked,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
