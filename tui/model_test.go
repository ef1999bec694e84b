package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/apiclient"
	"github.com/GoCodeAlone/taskmaster/internal/fakeapi"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/task"
	"github.com/GoCodeAlone/taskmaster/tasklist"
)

func newTestModel(t *testing.T, seed ...task.Task) (Model, *fakeapi.Server, *page.Controller) {
	t.Helper()
	srv := fakeapi.Start()
	t.Cleanup(srv.Close)
	srv.Seed(seed...)

	client, err := apiclient.New(srv.URL(), 1)
	require.NoError(t, err)
	ctrl := page.New(client)
	t.Cleanup(func() { _ = ctrl.Close() })

	m := New(context.Background(), ctrl, nil)
	m = run(t, m, m.Init())
	return m, srv, ctrl
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one by one and runs the command of the last one.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return run(t, m, cmd)
}

// run executes cmd synchronously and feeds its message back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, quit := msg.(tea.QuitMsg); quit {
		return m
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func seeded(id int64, title string, s task.Status, p task.Priority) task.Task {
	return task.Task{ID: id, Title: title, Status: s, Priority: p, UserID: 1}
}

func TestModel_InitLoadsAndRenders(t *testing.T) {
	m, _, _ := newTestModel(t,
		seeded(1, "Write report", task.StatusPending, task.PriorityHigh),
		seeded(2, "Buy milk", task.StatusCompleted, task.PriorityLow),
	)

	view := m.View()
	assert.Contains(t, view, "Task Manager")
	assert.Contains(t, view, "Tasks (2)")
	assert.Contains(t, view, "> Buy milk", "newest task is first and selected")
	assert.Contains(t, view, "Write report")
	assert.Contains(t, view, listHelp)
}

func TestModel_EmptyState(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No tasks yet. Create your first task above!")
}

func TestModel_CreateTask(t *testing.T) {
	m, srv, ctrl := newTestModel(t)

	m = press(t, m, "n")
	require.NotNil(t, ctrl.Form())
	assert.Contains(t, m.View(), "Create New Task")

	m = press(t, m, "Buy milk", "tab", "2 litres", "tab", "right", "tab", "right", "tab", "2025-03-01")
	d := ctrl.Form().Draft()
	assert.Equal(t, "Buy milk", d.Title)
	assert.Equal(t, "2 litres", d.Description)
	assert.Equal(t, task.StatusInProgress, d.Status)
	assert.Equal(t, task.PriorityHigh, d.Priority)
	assert.Equal(t, "2025-03-01", d.DueDate)

	m = press(t, m, "enter")

	assert.Nil(t, ctrl.Form(), "form closes after a successful create")
	view := m.View()
	assert.Contains(t, view, page.MsgCreated)
	assert.Contains(t, view, "Buy milk")

	stored := srv.Tasks()
	require.Len(t, stored, 1)
	assert.Equal(t, task.StatusInProgress, stored[0].Status)
	require.NotNil(t, stored[0].DueDate)
	assert.Equal(t, "2025-03-01", stored[0].DueDate.String())
}

func TestModel_BlankTitleShowsError(t *testing.T) {
	m, srv, ctrl := newTestModel(t)

	m = press(t, m, "n", "enter")

	require.NotNil(t, ctrl.Form(), "form stays open")
	assert.Contains(t, m.View(), "Title is required")
	assert.Zero(t, srv.RequestCount(http.MethodPost))
}

func TestModel_ToggleAndEscCloseForm(t *testing.T) {
	m, _, ctrl := newTestModel(t)

	m = press(t, m, "n")
	require.NotNil(t, ctrl.Form())
	m = press(t, m, "esc")
	assert.Nil(t, ctrl.Form())

	m = press(t, m, "n")
	m = press(t, m, "draft", "esc", "n")
	require.NotNil(t, ctrl.Form())
	assert.Empty(t, ctrl.Form().Draft().Title, "a reopened form starts blank")
	_ = m
}

func TestModel_EditTask(t *testing.T) {
	m, srv, ctrl := newTestModel(t, seeded(1, "Old title", task.StatusPending, task.PriorityLow))

	m = press(t, m, "e")
	f := ctrl.Form()
	require.NotNil(t, f)
	assert.Equal(t, int64(1), f.TaskID())
	assert.Contains(t, m.View(), "Edit Task")

	m = press(t, m, " new", "enter")

	assert.Nil(t, ctrl.Form())
	assert.Contains(t, m.View(), page.MsgUpdated)
	assert.Equal(t, "Old title new", srv.Tasks()[0].Title)
}

func TestModel_DeleteAsksFirst(t *testing.T) {
	m, srv, _ := newTestModel(t, seeded(1, "Doomed", task.StatusPending, task.PriorityLow))

	m = press(t, m, "d")
	assert.Contains(t, m.View(), page.DeletePrompt)
	m = press(t, m, "n")
	assert.Zero(t, srv.RequestCount(http.MethodDelete))
	assert.NotContains(t, m.View(), page.DeletePrompt)

	m = press(t, m, "d", "y")
	assert.Equal(t, 1, srv.RequestCount(http.MethodDelete))
	assert.Empty(t, srv.Tasks())
	assert.Contains(t, m.View(), page.MsgDeleted)
}

func TestModel_DeleteFailureShowsServerMessage(t *testing.T) {
	m, srv, _ := newTestModel(t, seeded(1, "Stubborn", task.StatusPending, task.PriorityLow))
	srv.FailNext(http.MethodDelete, fakeapi.Failure{Status: http.StatusNotFound, Body: `{"detail":"Task not found"}`})

	m = press(t, m, "d", "y")

	assert.Contains(t, m.View(), "Task not found")
	assert.Len(t, srv.Tasks(), 1)
}

func TestModel_SpaceAdvancesStatus(t *testing.T) {
	m, srv, _ := newTestModel(t, seeded(1, "Step", task.StatusPending, task.PriorityLow))

	m = press(t, m, "space")
	assert.Equal(t, task.StatusInProgress, srv.Tasks()[0].Status)
	assert.Contains(t, m.View(), page.MsgStatusUpdated)

	m = press(t, m, "space")
	m = press(t, m, "space")
	assert.Equal(t, task.StatusPending, srv.Tasks()[0].Status, "completed wraps to pending")
	_ = m
}

func TestModel_Filters(t *testing.T) {
	m, srv, ctrl := newTestModel(t,
		seeded(1, "Pending low", task.StatusPending, task.PriorityLow),
		seeded(2, "Done high", task.StatusCompleted, task.PriorityHigh),
	)
	srv.ResetRequests()

	m = press(t, m, "s")
	assert.Equal(t, task.StatusPending, ctrl.Filters().Status)
	view := m.View()
	assert.Contains(t, view, "Pending low")
	assert.NotContains(t, view, "Done high")

	m = press(t, m, "p", "p", "p")
	assert.Equal(t, task.PriorityHigh, ctrl.Filters().Priority)
	assert.Contains(t, m.View(), tasklist.EmptyMessage)

	m = press(t, m, "c")
	assert.False(t, ctrl.Filters().Active())
	assert.Contains(t, m.View(), "Done high")
	assert.Zero(t, srv.RequestCount(""), "filters never hit the network")
}

func TestModel_FilterCycleReturnsToAll(t *testing.T) {
	assert.Equal(t, task.StatusPending, nextStatusFilter(""))
	assert.Equal(t, task.StatusCompleted, nextStatusFilter(task.StatusInProgress))
	assert.Equal(t, task.Status(""), nextStatusFilter(task.StatusCompleted))
	assert.Equal(t, task.Priority(""), nextPriorityFilter(task.PriorityHigh))
}

func TestModel_CursorMovesAndClamps(t *testing.T) {
	m, _, _ := newTestModel(t,
		seeded(1, "First", task.StatusPending, task.PriorityLow),
		seeded(2, "Second", task.StatusPending, task.PriorityLow),
	)

	m = press(t, m, "k")
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "j", "j", "j")
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "> First")
}

func TestModel_ReloadPicksUpServerChanges(t *testing.T) {
	m, srv, _ := newTestModel(t)
	srv.Seed(seeded(5, "Appeared", task.StatusPending, task.PriorityLow))

	assert.NotContains(t, m.View(), "Appeared")
	m = press(t, m, "r")
	assert.Contains(t, m.View(), "Appeared")
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())

	_, cmd = m.Update(keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestForwarder(t *testing.T) {
	var got []tea.Msg
	hub := taskmaster.NewEventHub(nil)
	require.NoError(t, hub.RegisterObserver(NewForwarder(func(msg tea.Msg) { got = append(got, msg) })))

	ctx := taskmaster.WithSynchronousNotification(context.Background())
	require.NoError(t, taskmaster.Emit(ctx, hub, taskmaster.EventTypeNotificationCleared, "test", nil))

	require.Len(t, got, 1)
	assert.Equal(t, EventMsg{Type: taskmaster.EventTypeNotificationCleared}, got[0])
}
