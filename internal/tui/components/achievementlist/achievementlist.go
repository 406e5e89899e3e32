package achievementlist

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitquest/internal/achievements"
)

type Item struct {
	Status achievements.Status
}

func (i Item) Title() string {
	d := i.Status.Definition
	if i.Status.Unlocked {
		return fmt.Sprintf("%s %s", d.Icon, d.Name)
	}
	return "🔒 " + d.Name
}

func (i Item) Description() string {
	d := i.Status.Definition
	if i.Status.Unlocked && i.Status.UnlockedAt != nil {
		return fmt.Sprintf("%s | unlocked %s", d.Description, humanize.Time(*i.Status.UnlockedAt))
	}
	return fmt.Sprintf("%s | %d%% | +%d XP", d.Description, int(math.Floor(i.Status.Percent)), d.XPReward)
}

func (i Item) FilterValue() string { return i.Status.Definition.Name }

type Model struct {
	list list.Model
}

func New(statuses []achievements.Status, width, height int) Model {
	l := list.New(toItems(statuses), list.NewDefaultDelegate(), width, height)
	l.Title = "Achievements"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	return Model{list: l}
}

func toItems(statuses []achievements.Status) []list.Item {
	items := make([]list.Item, len(statuses))
	for i, s := range statuses {
		items[i] = Item{Status: s}
	}
	return items
}

func (m *Model) SetStatuses(statuses []achievements.Status) {
	m.list.SetItems(toItems(statuses))
}

// Unlocked counts unlocked achievements.
func (m Model) Unlocked() (unlocked, total int) {
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok && i.Status.Unlocked {
			unlocked++
		}
	}
	return unlocked, len(m.list.Items())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
