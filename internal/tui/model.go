package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/tui/components/achievementlist"
	"github.com/julianstephens/habitquest/internal/tui/components/habitlist"
	"github.com/julianstephens/habitquest/internal/tui/components/toast"
)

const tabCount = 3

// Options configure the dashboard.
type Options struct {
	ToastDuration time.Duration
	// WatchPath is the data file to watch for changes made by other processes.
	WatchPath string
	// Reload re-reads the store after an external change. Nil when the store
	// always reads through to its backend.
	Reload func() error
}

type HabitFormModel struct {
	Name        string
	Description string
	XPReward    string
}

type templateItem struct {
	tpl models.HabitTemplate
}

func (i templateItem) Title() string { return i.tpl.Icon + " " + i.tpl.Name }
func (i templateItem) Description() string {
	return fmt.Sprintf("%s | +%d XP | %s", i.tpl.Description, i.tpl.XPReward, i.tpl.Category)
}
func (i templateItem) FilterValue() string { return i.tpl.Name }

type Model struct {
	tracker *tracker.Tracker
	opts    Options

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	habitsModel       habitlist.Model
	achievementsModel achievementlist.Model
	templatesList     list.Model
	bar               progress.Model
	toasts            toast.Queue

	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete habitlist.DeleteHabitMsg

	user    models.User
	summary leveling.Summary
	status  string

	watcher *fsnotify.Watcher
	changes chan struct{}

	quitting bool
	width    int
	height   int
}

func NewModel(tr *tracker.Tracker, opts Options) Model {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = constants.DefaultToastDuration
	}

	tl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	tl.Title = "Templates"
	tl.SetShowTitle(false)
	tl.SetShowHelp(false)

	m := Model{
		tracker:           tr,
		opts:              opts,
		state:             constants.StateHabits,
		keys:              DefaultKeyMap(),
		help:              help.New(),
		habitsModel:       habitlist.New(nil, 0, 0),
		achievementsModel: achievementlist.New(nil, 0, 0),
		templatesList:     tl,
		bar:               progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		toasts:            toast.NewQueue(opts.ToastDuration, constants.MaxVisibleToasts),
	}

	if opts.WatchPath != "" {
		w, ch, err := watchFile(opts.WatchPath)
		if err != nil {
			logger.Warn("File watching disabled", "path", opts.WatchPath, "error", err)
		} else {
			m.watcher, m.changes = w, ch
		}
	}

	m.refresh()
	return m
}

// refresh reloads everything shown on screen from the tracker.
func (m *Model) refresh() {
	user, err := m.tracker.CurrentUser()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.user = user

	views, err := m.tracker.ListHabits()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.habitsModel.SetHabits(views)

	statuses, err := m.tracker.Achievements()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.achievementsModel.SetStatuses(statuses)

	tpls, err := m.tracker.Templates("")
	if err != nil {
		m.status = err.Error()
		return
	}
	items := make([]list.Item, len(tpls))
	for i, t := range tpls {
		items[i] = templateItem{tpl: t}
	}
	m.templatesList.SetItems(items)

	_, summary, err := m.tracker.Progress()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.summary = summary
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateHabits:
		keys = append(keys, m.keys.Toggle, m.keys.Add, m.keys.Delete)
	case constants.StateAchievements:
		keys = append(keys, m.keys.Check)
	case constants.StateTemplates:
		keys = append(keys, m.keys.Use)
	case constants.StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateHabits:
		actions = []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.Delete}
	case constants.StateAchievements:
		actions = []key.Binding{m.keys.Check}
	case constants.StateTemplates:
		actions = []key.Binding{m.keys.Use}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Close stops the file watcher.
func (m Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}
