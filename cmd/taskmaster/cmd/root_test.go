package cmd

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/internal/fakeapi"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/task"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func startServer(t *testing.T, seed ...task.Task) *fakeapi.Server {
	t.Helper()
	srv := fakeapi.Start()
	t.Cleanup(srv.Close)
	srv.Seed(seed...)
	return srv
}

type fakePrompter struct {
	fill    func(d *form.Draft)
	answer  bool
	asked   []string
	drafted int
}

func (p *fakePrompter) AskDraft(d *form.Draft) error {
	p.drafted++
	if p.fill != nil {
		p.fill(d)
	}
	return nil
}

func (p *fakePrompter) Confirm(message string) (bool, error) {
	p.asked = append(p.asked, message)
	return p.answer, nil
}

func usePrompter(t *testing.T, p Prompter) {
	t.Helper()
	orig := newPrompter
	newPrompter = func() Prompter { return p }
	t.Cleanup(func() { newPrompter = orig })
}

func seeded(id int64, title string, s task.Status, p task.Priority) task.Task {
	return task.Task{ID: id, Title: title, Status: s, Priority: p, UserID: 1}
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "taskmaster", root.Use)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Taskmaster is a client for the task service")
	for _, name := range []string{"ui", "list", "show", "create", "edit", "status", "delete", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "taskmaster "+taskmaster.Version+"\n", out)
}

func TestListCommand(t *testing.T) {
	srv := startServer(t,
		seeded(1, "Write report", task.StatusPending, task.PriorityHigh),
		seeded(2, "Buy milk", task.StatusCompleted, task.PriorityLow),
	)

	out, err := execute(t, "list", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (2)")
	assert.Contains(t, out, "#2 Buy milk")
	assert.Contains(t, out, "#1 Write report")

	out, err = execute(t, "list", "--api-url", srv.URL(), "--status", "in progress", "--search", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks yet")

	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	last := reqs[len(reqs)-1]
	assert.Contains(t, last.Query, "status=in_progress")
	assert.Contains(t, last.Query, "search=report")
	assert.Contains(t, last.Query, "user_id=1")
}

func TestListCommand_JSON(t *testing.T) {
	srv := startServer(t, seeded(1, "Only", task.StatusPending, task.PriorityLow))

	out, err := execute(t, "list", "--api-url", srv.URL(), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Only"`)
	assert.Contains(t, out, `"total": 1`)
}

func TestListCommand_RejectsBadFilter(t *testing.T) {
	srv := startServer(t)

	_, err := execute(t, "list", "--api-url", srv.URL(), "--priority", "urgent")
	assert.ErrorIs(t, err, task.ErrInvalidPriority)
	assert.Zero(t, srv.RequestCount(""))
}

func TestShowCommand(t *testing.T) {
	due := task.MustParseDate("2025-03-01")
	seed := seeded(3, "Ship it", task.StatusInProgress, task.PriorityMedium)
	seed.DueDate = &due
	seed.Description = task.String("before Friday")
	srv := startServer(t, seed)

	out, err := execute(t, "show", "3", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "#3 Ship it")
	assert.Contains(t, out, "Status:   in progress")
	assert.Contains(t, out, "Due:      Mar 1, 2025")
	assert.Contains(t, out, "before Friday")

	_, err = execute(t, "show", "99", "--api-url", srv.URL())
	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())

	_, err = execute(t, "show", "abc", "--api-url", srv.URL())
	assert.EqualError(t, err, `invalid task id "abc"`)
}

func TestCreateCommand_WithFlags(t *testing.T) {
	srv := startServer(t)
	p := &fakePrompter{}
	usePrompter(t, p)

	out, err := execute(t, "create", "--api-url", srv.URL(), "--title", "Buy milk", "--priority", "high", "--due", "2025-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, page.MsgCreated)
	assert.Contains(t, out, "Buy milk")
	assert.Zero(t, p.drafted, "no prompt when the title is given")

	stored := srv.Tasks()
	require.Len(t, stored, 1)
	assert.Equal(t, task.PriorityHigh, stored[0].Priority)
	assert.Equal(t, task.StatusPending, stored[0].Status)
	require.NotNil(t, stored[0].DueDate)
	assert.Equal(t, "2025-03-01", stored[0].DueDate.String())
}

func TestCreateCommand_PromptsWithoutTitle(t *testing.T) {
	srv := startServer(t)
	p := &fakePrompter{fill: func(d *form.Draft) {
		assert.Equal(t, task.PriorityLow, d.Priority, "flags given are offered as defaults")
		d.Title = "Prompted"
	}}
	usePrompter(t, p)

	_, err := execute(t, "create", "--api-url", srv.URL(), "--priority", "low")
	require.NoError(t, err)
	assert.Equal(t, 1, p.drafted)
	require.Len(t, srv.Tasks(), 1)
	assert.Equal(t, "Prompted", srv.Tasks()[0].Title)
}

func TestCreateCommand_ValidationStopsRequest(t *testing.T) {
	srv := startServer(t)

	_, err := execute(t, "create", "--api-url", srv.URL(), "--title", "   ")
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	_, err = execute(t, "create", "--api-url", srv.URL(), "--title", "ok", "--due", "March 1")
	require.Error(t, err)
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)

	assert.Zero(t, srv.RequestCount(http.MethodPost))
}

func TestEditCommand(t *testing.T) {
	srv := startServer(t, seeded(4, "Old", task.StatusPending, task.PriorityLow))

	out, err := execute(t, "edit", "4", "--api-url", srv.URL(), "--title", "New", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, page.MsgUpdated)

	got := srv.Tasks()[0]
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, task.PriorityLow, got.Priority, "untouched fields keep their value")
}

func TestEditCommand_PromptsWithCurrentValues(t *testing.T) {
	srv := startServer(t, seeded(4, "Old", task.StatusPending, task.PriorityLow))
	p := &fakePrompter{fill: func(d *form.Draft) {
		assert.Equal(t, "Old", d.Title)
		d.Priority = task.PriorityHigh
	}}
	usePrompter(t, p)

	_, err := execute(t, "edit", "4", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, srv.Tasks()[0].Priority)
}

func TestStatusCommand(t *testing.T) {
	srv := startServer(t, seeded(5, "Step", task.StatusPending, task.PriorityLow))

	out, err := execute(t, "status", "5", "in_progress", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, page.MsgStatusUpdated)
	assert.Equal(t, task.StatusInProgress, srv.Tasks()[0].Status)

	_, err = execute(t, "status", "5", "done", "--api-url", srv.URL())
	assert.ErrorIs(t, err, task.ErrInvalidStatus)
}

func TestDeleteCommand(t *testing.T) {
	srv := startServer(t, seeded(6, "Doomed", task.StatusPending, task.PriorityLow))
	p := &fakePrompter{answer: false}
	usePrompter(t, p)

	out, err := execute(t, "delete", "6", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Equal(t, []string{page.DeletePrompt}, p.asked)
	assert.Zero(t, srv.RequestCount(http.MethodDelete))

	out, err = execute(t, "delete", "6", "--yes", "--api-url", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, page.MsgDeleted)
	assert.Empty(t, srv.Tasks())
	assert.Len(t, p.asked, 1, "--yes skips the prompt")

	_, err = execute(t, "delete", "6", "-y", "--api-url", srv.URL())
	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())
}

func TestConfigFileAndFlags(t *testing.T) {
	srv := startServer(t)
	path := filepath.Join(t.TempDir(), "taskmaster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: "+srv.URL()+"\nuser_id: 3\n"), 0o600))

	_, err := execute(t, "list", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "list", "--config", path, "--user-id", "4")
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Query, "user_id=3")
	assert.Contains(t, reqs[1].Query, "user_id=4", "flags win over the file")
}

func TestConfigErrors(t *testing.T) {
	_, err := execute(t, "list", "--api-url", "localhost:8000")
	assert.ErrorIs(t, err, taskmaster.ErrInvalidAPIURL)

	_, err = execute(t, "list", "--config", filepath.Join(t.TempDir(), "settings.ini"))
	assert.ErrorIs(t, err, taskmaster.ErrUnsupportedFormat)
}

func TestNewController_StartsAutoRefresh(t *testing.T) {
	srv := startServer(t)
	cfg := &taskmaster.Config{APIURL: srv.URL(), RefreshSchedule: "@every 1h"}
	require.NoError(t, cfg.Validate())

	ctrl, err := newController(cfg, nil, taskmaster.NewEventHub(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })
	assert.True(t, ctrl.AutoRefreshing())

	cfg.RefreshSchedule = "not a schedule"
	_, err = newController(cfg, nil, nil)
	assert.Error(t, err)
}

func TestApplier_SwitchesServiceAndSchedule(t *testing.T) {
	first := startServer(t, seeded(1, "From first", task.StatusPending, task.PriorityLow))
	second := startServer(t, seeded(1, "From second", task.StatusPending, task.PriorityLow))

	cfg := &taskmaster.Config{APIURL: first.URL()}
	require.NoError(t, cfg.Validate())
	ctrl, err := newController(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })
	require.NoError(t, ctrl.Load(context.Background()))
	assert.Equal(t, "From first", ctrl.Tasks()[0].Title)

	apply := applier(ctrl, nil, cfg.RefreshSchedule)
	next := &taskmaster.Config{APIURL: second.URL(), RefreshSchedule: "@every 1h"}
	require.NoError(t, next.Validate())
	require.NoError(t, apply(context.Background(), next))

	assert.Equal(t, "From second", ctrl.Tasks()[0].Title)
	assert.True(t, ctrl.AutoRefreshing())

	next.RefreshSchedule = ""
	require.NoError(t, apply(context.Background(), next))
	assert.Eventually(t, func() bool { return !ctrl.AutoRefreshing() }, time.Second, 10*time.Millisecond)
}
