// Package streak counts consecutive days of completed check-ins.
package streak

import (
	"time"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

// completedDays returns the set of completed dates that parse and are not after today.
func completedDays(checkIns []models.CheckIn, today time.Time) map[string]struct{} {
	days := make(map[string]struct{}, len(checkIns))
	for _, c := range checkIns {
		if !c.Completed {
			continue
		}
		d, err := utils.ParseDate(c.Date)
		if err != nil || d.After(today) {
			continue
		}
		days[utils.FormatDate(d)] = struct{}{}
	}
	return days
}

// Current returns the number of consecutive completed days ending on today.
// A habit not completed today has a current streak of 0. Duplicate records for
// the same date count once.
func Current(checkIns []models.CheckIn, today string) int {
	t, err := utils.ParseDate(today)
	if err != nil {
		return 0
	}
	days := completedDays(checkIns, t)

	count := 0
	for d := t; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[utils.FormatDate(d)]; !ok {
			return count
		}
		count++
	}
}

// Longest returns the longest run of consecutive completed days up to today.
func Longest(checkIns []models.CheckIn, today string) int {
	t, err := utils.ParseDate(today)
	if err != nil {
		return 0
	}
	days := completedDays(checkIns, t)

	best := 0
	for day := range days {
		d, _ := utils.ParseDate(day)
		// only start counting at the first day of a run
		if _, ok := days[utils.FormatDate(d.AddDate(0, 0, -1))]; ok {
			continue
		}
		run := 0
		for cur := d; ; cur = cur.AddDate(0, 0, 1) {
			if _, ok := days[utils.FormatDate(cur)]; !ok {
				break
			}
			run++
		}
		best = max(best, run)
	}
	return best
}

// Best returns the highest current streak across habits.
func Best(habits []models.Habit, checkIns []models.CheckIn, today string) int {
	byHabit := GroupByHabit(checkIns)
	best := 0
	for _, h := range habits {
		best = max(best, Current(byHabit[h.ID], today))
	}
	return best
}

// GroupByHabit indexes check-ins by habit id.
func GroupByHabit(checkIns []models.CheckIn) map[string][]models.CheckIn {
	out := make(map[string][]models.CheckIn)
	for _, c := range checkIns {
		out[c.HabitID] = append(out[c.HabitID], c)
	}
	return out
}
