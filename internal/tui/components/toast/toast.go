// Package toast is a first-in first-out notification queue. Only the oldest few
// toasts are visible; each is dismissed a fixed delay after it becomes visible.
package toast

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type Kind int

const (
	KindInfo Kind = iota
	KindLevelUp
	KindWorld
	KindAchievement
)

type Toast struct {
	ID    int
	Kind  Kind
	Title string
	Body  string

	scheduled bool
}

// DismissMsg asks the queue to drop the toast with ID.
type DismissMsg struct {
	ID int
}

type Queue struct {
	items  []Toast
	nextID int
	delay  time.Duration
	limit  int
}

func NewQueue(delay time.Duration, limit int) Queue {
	return Queue{delay: delay, limit: max(limit, 1)}
}

// Push adds a toast to the back of the queue.
func (q *Queue) Push(kind Kind, title, body string) tea.Cmd {
	q.nextID++
	q.items = append(q.items, Toast{ID: q.nextID, Kind: kind, Title: title, Body: body})
	return q.schedule()
}

// Dismiss removes a toast and starts the timer of the next one in line.
func (q *Queue) Dismiss(id int) tea.Cmd {
	for i, t := range q.items {
		if t.ID == id {
			q.items = slices.Delete(q.items, i, i+1)
			break
		}
	}
	return q.schedule()
}

// Visible returns the toasts on screen, oldest first.
func (q Queue) Visible() []Toast {
	return q.items[:min(len(q.items), q.limit)]
}

func (q Queue) Len() int {
	return len(q.items)
}

func (q *Queue) schedule() tea.Cmd {
	var cmds []tea.Cmd
	for i := 0; i < len(q.items) && i < q.limit; i++ {
		if q.items[i].scheduled {
			continue
		}
		q.items[i].scheduled = true
		id := q.items[i].ID
		cmds = append(cmds, tea.Tick(q.delay, func(time.Time) tea.Msg { return DismissMsg{ID: id} }))
	}
	return tea.Batch(cmds...)
}
