package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/tui/components/habitlist"
	"github.com/julianstephens/habitquest/internal/tui/components/toast"
)

// header, tabs, status line and help
const chromeHeight = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := docStyle.GetFrameSize()
		listHeight := max(msg.Height-chromeHeight-h, 3)
		m.habitsModel.SetSize(msg.Width-w, listHeight)
		m.achievementsModel.SetSize(msg.Width-w, listHeight)
		m.templatesList.SetSize(msg.Width-w, listHeight)
		return m, nil

	case toast.DismissMsg:
		return m, m.toasts.Dismiss(msg.ID)

	case dataChangedMsg:
		if m.opts.Reload != nil {
			if err := m.opts.Reload(); err != nil {
				logger.Warn("Failed to reload data after external change", "error", err)
			}
		}
		m.refresh()
		return m, waitForChange(m.changes)
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{XPReward: "10"}
		m.form = newHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habitlist.ToggleHabitMsg:
		res, err := m.tracker.ToggleCheckIn(msg.ID, "")
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		verb := "Completed"
		if !res.CheckIn.Completed {
			verb = "Unchecked"
		}
		m.status = fmt.Sprintf("%s %s (%+d XP)", verb, res.Habit.Name, res.XPDelta)
		m.refresh()
		return m, m.announce(res.Outcome)

	case habitlist.DeleteHabitMsg:
		m.habitToDelete = msg
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		filtering := m.state == constants.StateHabits && m.habitsModel.Filtering() ||
			m.state == constants.StateTemplates && m.templatesList.FilterState() == list.Filtering
		if !filtering {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Tab):
				m.state = (m.state + 1) % tabCount
				return m, nil
			case key.Matches(msg, m.keys.ShiftTab):
				m.state = (m.state - 1 + tabCount) % tabCount
				return m, nil
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case m.state == constants.StateAchievements && key.Matches(msg, m.keys.Check):
				out, err := m.tracker.CheckAchievements()
				if err != nil {
					m.status = err.Error()
					return m, nil
				}
				if len(out.Unlocked) == 0 {
					m.status = "No new achievements"
				}
				m.refresh()
				return m, m.announce(out)
			case m.state == constants.StateTemplates && key.Matches(msg, m.keys.Use):
				return m.useTemplate()
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StateAchievements:
		m.achievementsModel, cmd = m.achievementsModel.Update(msg)
	case constants.StateTemplates:
		m.templatesList, cmd = m.templatesList.Update(msg)
	}
	return m, cmd
}

func (m Model) useTemplate() (tea.Model, tea.Cmd) {
	item, ok := m.templatesList.SelectedItem().(templateItem)
	if !ok {
		return m, nil
	}
	h, err := m.tracker.CreateHabitFromTemplate(item.tpl.ID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.refresh()
	m.state = constants.StateHabits
	return m, m.toasts.Push(toast.KindInfo, "Habit added", h.Name)
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		xp, _ := strconv.Atoi(strings.TrimSpace(m.habitForm.XPReward))
		h, err := m.tracker.CreateHabit(m.habitForm.Name, m.habitForm.Description, xp)
		if err != nil {
			// stay on the form so the user can fix it or cancel with esc
			m.status = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.status = "Added " + h.Name
		m.refresh()
		m.state = constants.StateHabits
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.tracker.DeleteHabit(m.habitToDelete.ID); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Deleted " + m.habitToDelete.Name
			m.refresh()
		}
		m.state = m.previousState
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = m.previousState
	}
	return m, nil
}

// announce queues toasts for level-ups, new worlds and unlocked achievements.
func (m *Model) announce(out tracker.Outcome) tea.Cmd {
	var cmds []tea.Cmd
	if out.LeveledUp {
		cmds = append(cmds, m.toasts.Push(toast.KindLevelUp, "Level up!",
			fmt.Sprintf("You reached level %d", out.Progress.Level)))
	}
	if out.WorldUnlocked {
		cmds = append(cmds, m.toasts.Push(toast.KindWorld, "New world unlocked",
			fmt.Sprintf("World %d: %s", out.Progress.CurrentWorld, leveling.WorldName(out.Progress.CurrentWorld))))
	}
	for _, def := range out.Unlocked {
		body := def.Name
		if def.XPReward > 0 {
			body += fmt.Sprintf(" (+%s XP)", humanize.Comma(int64(def.XPReward)))
		}
		cmds = append(cmds, m.toasts.Push(toast.KindAchievement, def.Icon+" Achievement unlocked", body))
	}
	return tea.Batch(cmds...)
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title("XP Reward").
				Value(&fm.XPReward).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("xp reward must be a positive number")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
