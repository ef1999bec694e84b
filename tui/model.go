// Package tui is the terminal front end. It renders the page controller's
// state and turns keys into controller calls. Anything that reaches the
// task service runs inside a tea.Cmd and reports back as a message.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/task"
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldDueDate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Status", "Priority", "Due date"}

// Messages produced by the commands below.
type (
	loadedMsg        struct{ err error }
	submittedMsg     struct{ ok bool }
	statusChangedMsg struct{ err error }
	deletedMsg       struct{ ok bool }

	// EventMsg carries a controller event into the program loop so the view
	// refreshes when something changes outside a key press, such as a
	// notification expiring or an automatic reload.
	EventMsg struct{ Type string }
)

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	ctrl   *page.Controller
	logger taskmaster.Logger

	cursor int

	confirmDel bool
	pendingDel *task.Task

	// synced is the form the inputs were last filled from.
	synced *form.Form
	focus  field
	inputs map[field]*textinput.Model

	width    int
	quitting bool
}

// New builds a model over ctrl. ctx bounds every request the model starts.
func New(ctx context.Context, ctrl *page.Controller, logger taskmaster.Logger) Model {
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		logger: taskmaster.LoggerOrNop(logger),
		inputs: map[field]*textinput.Model{
			fieldTitle:       newInput("What needs to be done?", 200),
			fieldDescription: newInput("Optional details", 1000),
			fieldDueDate:     newInput("YYYY-MM-DD", 10),
		},
	}
	return m
}

func newInput(placeholder string, limit int) *textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &ti
}

// Init loads the collection.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.ctrl.Form() != nil {
			return m.updateFormMode(msg)
		}
		return m.updateListMode(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		for _, in := range m.inputs {
			in.Width = max(msg.Width-20, 20)
		}

	case loadedMsg, statusChangedMsg, deletedMsg, EventMsg:
		// State lives in the controller; re-rendering is enough.

	case submittedMsg:
		if msg.ok {
			m.logger.Debug("Form submitted")
		}
	}

	m.cursor = clampCursor(m.cursor, len(m.ctrl.Visible()))
	m.syncForm()
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	visible := m.ctrl.Visible()
	m.cursor = clampCursor(m.cursor, len(visible))

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(visible))
	case "n":
		m.ctrl.ToggleCreateForm()
		m.syncForm()
	case "e":
		if t, ok := selected(visible, m.cursor); ok {
			m.ctrl.OpenEditForm(t)
			m.syncForm()
		}
	case "d":
		if t, ok := selected(visible, m.cursor); ok {
			m.confirmDel = true
			m.pendingDel = &t
		}
	case " ":
		if t, ok := selected(visible, m.cursor); ok {
			return m, m.setStatusCmd(t.ID, t.Status.Next())
		}
	case "s":
		_ = m.ctrl.SetStatusFilter(nextStatusFilter(m.ctrl.Filters().Status))
		m.cursor = 0
	case "p":
		_ = m.ctrl.SetPriorityFilter(nextPriorityFilter(m.ctrl.Filters().Priority))
		m.cursor = 0
	case "c":
		m.ctrl.ClearFilters()
	case "r":
		return m, m.loadCmd()
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	t := m.pendingDel
	m.confirmDel = false
	m.pendingDel = nil
	if t == nil {
		return m, nil
	}

	switch key {
	case "y", "Y":
		return m, m.deleteCmd(t.ID)
	default:
		m.ctrl.Delete(m.ctx, t.ID, page.Answer(false))
	}
	return m, nil
}

func (m Model) loadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

func (m Model) setStatusCmd(id int64, status task.Status) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return statusChangedMsg{err: ctrl.SetStatus(ctx, id, status)}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return deletedMsg{ok: ctrl.Delete(ctx, id, page.Answer(true))}
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return submittedMsg{ok: ctrl.SubmitForm(ctx).OK()}
	}
}

func selected(tasks []task.Task, i int) (task.Task, bool) {
	if i < 0 || i >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[i], true
}

func clampCursor(cur, n int) int {
	if n <= 0 || cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

// nextStatusFilter cycles all, then every status, then back to all.
func nextStatusFilter(s task.Status) task.Status {
	if s == "" {
		return task.Statuses[0]
	}
	for i, candidate := range task.Statuses {
		if candidate == s && i+1 < len(task.Statuses) {
			return task.Statuses[i+1]
		}
	}
	return ""
}

func nextPriorityFilter(p task.Priority) task.Priority {
	if p == "" {
		return task.Priorities[0]
	}
	for i, candidate := range task.Priorities {
		if candidate == p && i+1 < len(task.Priorities) {
			return task.Priorities[i+1]
		}
	}
	return ""
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
