package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/tui/components/toast"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = m.habitsModel.View()
	case constants.StateAchievements:
		content = m.achievementsModel.View()
	case constants.StateTemplates:
		content = m.viewTemplates()
	case constants.StateAddHabit:
		content = m.form.View()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)

	if toasts := m.viewToasts(); toasts != "" {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", toasts)
	}
	return docStyle.Render(main)
}

func (m Model) viewHeader() string {
	s := m.summary
	name := m.user.Name
	if name == "" {
		name = m.user.Email
	}

	title := fmt.Sprintf("%s  %s  World %d: %s",
		name,
		levelStyle.Render(fmt.Sprintf("Level %d", s.Level)),
		s.World,
		leveling.WorldName(s.World),
	)

	var next string
	if s.MaxLevel {
		next = "max level reached"
	} else {
		next = fmt.Sprintf("%s XP to level %d", humanize.Comma(int64(s.XPToNextLevel)), s.Level+1)
	}
	bar := fmt.Sprintf("%s  %s XP  %s",
		m.bar.ViewAs(float64(s.ProgressPercent)/100),
		humanize.Comma(int64(s.TotalXP)),
		mutedStyle.Render(next),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, bar, "")
}

func (m Model) viewTabs() string {
	unlocked, total := m.achievementsModel.Unlocked()
	titles := []string{
		"Habits",
		fmt.Sprintf("Achievements %d/%d", unlocked, total),
		"Templates",
	}

	active := m.state
	if active >= tabCount {
		active = m.previousState
	}

	tabs := make([]string, len(titles))
	for i, title := range titles {
		if active == constants.SessionState(i) {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = inactiveTabStyle.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m Model) viewTemplates() string {
	if len(m.templatesList.Items()) == 0 {
		return "\n  No templates available."
	}
	return m.templatesList.View()
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		dangerStyle.Render(fmt.Sprintf("Delete habit %q?", m.habitToDelete.Name)),
		mutedStyle.Render("Past check-ins stay on record. XP already earned is kept."),
		"",
		"[y] Delete  [n] Cancel",
	)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	return warningStyle.Render(m.status)
}

func (m Model) viewToasts() string {
	visible := m.toasts.Visible()
	if len(visible) == 0 {
		return ""
	}
	rendered := make([]string, len(visible))
	for i, t := range visible {
		style := toastStyle
		switch t.Kind {
		case toast.KindLevelUp, toast.KindWorld:
			style = style.BorderForeground(lipgloss.Color("226"))
		case toast.KindAchievement:
			style = style.BorderForeground(lipgloss.Color("42"))
		}
		body := lipgloss.NewStyle().Bold(true).Render(t.Title)
		if t.Body != "" {
			body += "\n" + t.Body
		}
		rendered[i] = style.Render(body)
	}
	if more := m.toasts.Len() - len(visible); more > 0 {
		rendered = append(rendered, mutedStyle.Render(fmt.Sprintf("+%d more", more)))
	}
	return strings.Join(rendered, "\n")
}
