package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/task"
)

func (m Model) updateFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.ctrl.Form()
	m.syncForm()
	if f == nil {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.ctrl.CloseForm()
		m.syncForm()
		return m, nil
	case "tab":
		m.focusField(field(wrapIndex(int(m.focus)+1, int(fieldCount))))
		return m, nil
	case "shift+tab":
		m.focusField(field(wrapIndex(int(m.focus)-1, int(fieldCount))))
		return m, nil
	case "enter":
		if f.Submitting() {
			return m, nil
		}
		return m, m.submitCmd()
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch m.focus {
		case fieldStatus:
			f.SetStatus(cycleStatus(f.Draft().Status, delta))
			return m, nil
		case fieldPriority:
			f.SetPriority(cyclePriority(f.Draft().Priority, delta))
			return m, nil
		}
	}

	in, ok := m.inputs[m.focus]
	if !ok {
		return m, nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	if !setDraftField(f, m.focus, in.Value()) {
		// Submitting: the draft is frozen, so undo the keystroke.
		in.SetValue(draftField(f.Draft(), m.focus))
	}
	return m, cmd
}

// syncForm refills the inputs whenever a different form is opened and
// blurs them once it is closed.
func (m *Model) syncForm() {
	f := m.ctrl.Form()
	if f == m.synced {
		return
	}
	m.synced = f
	if f == nil {
		for _, in := range m.inputs {
			in.Blur()
		}
		return
	}

	d := f.Draft()
	for fld, in := range m.inputs {
		in.SetValue(draftField(d, fld))
	}
	m.focusField(fieldTitle)
}

func (m *Model) focusField(target field) {
	m.focus = target
	for fld, in := range m.inputs {
		if fld == target {
			in.Focus()
			in.CursorEnd()
		} else {
			in.Blur()
		}
	}
}

func setDraftField(f *form.Form, fld field, value string) bool {
	switch fld {
	case fieldTitle:
		return f.SetTitle(value)
	case fieldDescription:
		return f.SetDescription(value)
	case fieldDueDate:
		return f.SetDueDate(value)
	}
	return false
}

func draftField(d form.Draft, fld field) string {
	switch fld {
	case fieldTitle:
		return d.Title
	case fieldDescription:
		return d.Description
	case fieldStatus:
		return d.Status.Label()
	case fieldPriority:
		return d.Priority.Label()
	case fieldDueDate:
		return d.DueDate
	}
	return ""
}

func cycleStatus(s task.Status, delta int) task.Status {
	for i, candidate := range task.Statuses {
		if candidate == s {
			return task.Statuses[wrapIndex(i+delta, len(task.Statuses))]
		}
	}
	return task.StatusPending
}

func cyclePriority(p task.Priority, delta int) task.Priority {
	for i, candidate := range task.Priorities {
		if candidate == p {
			return task.Priorities[wrapIndex(i+delta, len(task.Priorities))]
		}
	}
	return task.PriorityMedium
}
