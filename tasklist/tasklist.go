// Package tasklist turns a slice of tasks into display rows. It never
// fetches, filters or keeps tasks; whoever owns the collection passes it in
// on every render.
package tasklist

import (
	"github.com/GoCodeAlone/taskmaster/task"
)

// DueDateLayout formats due and created dates on a card.
const DueDateLayout = "Jan 2, 2006"

// EmptyMessage is shown instead of cards when there are no tasks.
const EmptyMessage = "No tasks yet. Create your first task above!"

// Color classes of the priority badge.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorGray   = "gray"
)

// Row is one rendered task with its derived badges.
type Row struct {
	Task task.Task

	Title       string
	Description string

	StatusText  string // "in progress"
	StatusClass string // the raw status, used to pick a style

	PriorityText  string
	PriorityColor string

	DueDate string // empty when the task has none
	Created string
}

// HasDueDate reports whether the row shows a due date chip.
func (r Row) HasDueDate() bool { return r.DueDate != "" }

// Rows derives one row per task, preserving order.
func Rows(tasks []task.Task) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, NewRow(t))
	}
	return rows
}

// NewRow derives the badges of a single task.
func NewRow(t task.Task) Row {
	r := Row{
		Task:          t,
		Title:         t.Title,
		Description:   t.DescriptionText(),
		StatusText:    t.Status.Label(),
		StatusClass:   string(t.Status),
		PriorityText:  t.Priority.Label(),
		PriorityColor: PriorityColor(t.Priority),
	}
	if t.DueDate != nil {
		r.DueDate = t.DueDate.Format(DueDateLayout)
	}
	if !t.CreatedAt.IsZero() {
		r.Created = t.CreatedAt.Format(DueDateLayout)
	}
	return r
}

// PriorityColor maps high, medium and low to red, yellow and green.
func PriorityColor(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return ColorRed
	case task.PriorityMedium:
		return ColorYellow
	case task.PriorityLow:
		return ColorGreen
	}
	return ColorGray
}

// List binds a task slice to the edit and delete intents of its cards.
type List struct {
	Tasks    []task.Task
	OnEdit   func(task.Task)
	OnDelete func(id int64)
}

// Len is the number of cards.
func (l List) Len() int { return len(l.Tasks) }

// Empty reports whether the empty state is shown.
func (l List) Empty() bool { return len(l.Tasks) == 0 }

// Rows derives the rows of the bound tasks.
func (l List) Rows() []Row { return Rows(l.Tasks) }

// Edit emits the task at index i. It reports whether anything was emitted.
func (l List) Edit(i int) bool {
	if i < 0 || i >= len(l.Tasks) || l.OnEdit == nil {
		return false
	}
	l.OnEdit(l.Tasks[i])
	return true
}

// Delete emits the identifier of the task at index i.
func (l List) Delete(i int) bool {
	if i < 0 || i >= len(l.Tasks) || l.OnDelete == nil {
		return false
	}
	l.OnDelete(l.Tasks[i].ID)
	return true
}
