package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/internal/fakeapi"
	"github.com/GoCodeAlone/taskmaster/task"
)

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.Start()
	t.Cleanup(srv.Close)

	c, err := New(srv.URL(), 1, opts...)
	require.NoError(t, err)
	return c, srv
}

func TestNew_Validation(t *testing.T) {
	_, err := New("not a url", 1)
	assert.ErrorIs(t, err, taskmaster.ErrInvalidAPIURL)

	_, err = New("http://localhost:8000", 0)
	assert.ErrorIs(t, err, taskmaster.ErrInvalidUserID)

	c, err := New("http://localhost:8000/", 3)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, int64(3), c.UserID())
}

func TestClient_CreateThenList(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, task.Create{Title: "Write report", Description: task.String("Q3")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, int64(1), created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/v1/tasks", reqs[0].Path)
	assert.Equal(t, "user_id=1", reqs[0].Query)
	assert.Contains(t, reqs[0].Body, `"user_id":1`)

	list, err := c.ListTasks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, []int64{created.ID}, task.IDs(list.Tasks))
}

func TestClient_ListTasksSendsOnlySetFilters(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(
		task.Task{ID: 1, Title: "A", Status: task.StatusPending, Priority: task.PriorityLow, UserID: 1},
		task.Task{ID: 2, Title: "B", Status: task.StatusCompleted, Priority: task.PriorityLow, UserID: 1},
		task.Task{ID: 3, Title: "C", Status: task.StatusPending, Priority: task.PriorityHigh, UserID: 2},
	)

	list, err := c.ListTasks(context.Background(), &task.ListFilters{Status: task.StatusPending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, task.IDs(list.Tasks))
	assert.Equal(t, 1, list.Pages)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "limit=10&status=pending&user_id=1", reqs[0].Query)
}

func TestClient_EmptyListIsNotNil(t *testing.T) {
	c, _ := newTestClient(t)
	list, err := c.ListTasks(context.Background(), &task.ListFilters{})
	require.NoError(t, err)
	assert.NotNil(t, list.Tasks)
	assert.Empty(t, list.Tasks)
	assert.Equal(t, 0, list.Pages)
}

func TestClient_UpdateRoundTripKeepsUnpatchedFields(t *testing.T) {
	c, srv := newTestClient(t)
	due := task.MustParseDate("2025-06-01")
	srv.Seed(task.Task{ID: 5, Title: "Old", Description: task.String("keep me"), Status: task.StatusPending, Priority: task.PriorityLow, DueDate: &due, UserID: 1})
	ctx := context.Background()

	priority := task.PriorityHigh
	_, err := c.UpdateTask(ctx, 5, task.Update{Title: task.String("New"), Priority: &priority})
	require.NoError(t, err)

	reqs := srv.Requests()
	assert.JSONEq(t, `{"title":"New","priority":"high"}`, reqs[len(reqs)-1].Body)

	got, err := c.GetTask(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, "keep me", got.DescriptionText())
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Equal(t, due, *got.DueDate)
}

func TestClient_UpdateTaskStatus(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(task.Task{ID: 2, Title: "A", Status: task.StatusPending, Priority: task.PriorityLow, UserID: 1})

	got, err := c.UpdateTaskStatus(context.Background(), 2, task.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "/api/v1/tasks/2/status", reqs[0].Path)
	assert.JSONEq(t, `{"new_status":"in_progress"}`, reqs[0].Body)
}

func TestClient_DeleteThenGetIsNotFound(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(task.Task{ID: 9, Title: "A", Status: task.StatusPending, Priority: task.PriorityLow, UserID: 1})
	ctx := context.Background()

	res, err := c.DeleteTask(ctx, 9)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Task deleted successfully", res.Message)

	_, err = c.GetTask(ctx, 9)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Task not found", err.Error())
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name        string
		failure     fakeapi.Failure
		wantMessage string
		wantStatus  int
	}{
		{
			name:        "detail string",
			failure:     fakeapi.Failure{Status: http.StatusNotFound, Body: `{"detail":"Task not found"}`},
			wantMessage: "Task not found",
			wantStatus:  http.StatusNotFound,
		},
		{
			name:        "validation list",
			failure:     fakeapi.Failure{Status: http.StatusUnprocessableEntity, Body: `{"detail":[{"loc":["body","title"],"msg":"Field required"},{"loc":["body","priority"],"msg":"Input should be 'low', 'medium' or 'high'"}]}`},
			wantMessage: "Field required; Input should be 'low', 'medium' or 'high'",
			wantStatus:  http.StatusUnprocessableEntity,
		},
		{
			name:        "undecodable body",
			failure:     fakeapi.Failure{Status: http.StatusInternalServerError, Body: "<html>oops</html>"},
			wantMessage: "failed to update task: 500 Internal Server Error",
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name:        "empty body",
			failure:     fakeapi.Failure{Status: http.StatusBadGateway},
			wantMessage: "failed to update task: 502 Bad Gateway",
			wantStatus:  http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(t)
			srv.FailNext(http.MethodPut, tt.failure)

			_, err := c.UpdateTask(context.Background(), 1, task.Update{Title: task.String("x")})

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, OpUpdateTask, reqErr.Op)
			assert.Equal(t, tt.wantStatus, reqErr.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, 1)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.NotNil(t, reqErr.Err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to fetch tasks: "), err.Error())
}

func TestClient_ContextCancellation(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetTask(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_InvalidEnumInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"title":"A","status":"archived","priority":"low","user_id":1}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 1)
	require.NoError(t, err)

	_, err = c.GetTask(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.ErrorIs(t, err, task.ErrInvalidStatus)
	assert.False(t, IsNotFound(err))
}

func TestClient_NonCanonicalEnumInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tasks":[{"id":1,"title":"A","status":"In Progress","priority":"HIGH","user_id":1}],"total":1,"page":1,"pages":1}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 1)
	require.NoError(t, err)

	resp, err := c.ListTasks(context.Background(), nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.ErrorIs(t, err, task.ErrInvalidStatus)
}

func TestClient_ServerRejectsBlankTitle(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.CreateTask(context.Background(), task.Create{Title: "  "})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))
	assert.Equal(t, "String should have at least 1 character", err.Error())
	assert.Empty(t, srv.Tasks())
}

func TestClient_ForbiddenForOtherUser(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(task.Task{ID: 4, Title: "theirs", Status: task.StatusPending, Priority: task.PriorityLow, UserID: 2})

	_, err := c.DeleteTask(context.Background(), 4)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, "Not authorized to delete this task", err.Error())
	assert.Len(t, srv.Tasks(), 1)
}

func TestClient_RequestModifier(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(task.ListResponse{})
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 1, WithRequestModifier(UserAgent("taskmaster-test")))
	require.NoError(t, err)
	_, err = c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "taskmaster-test", seen)
}

func TestClient_RequestModifiersChain(t *testing.T) {
	var ua, trace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua, trace = r.Header.Get("User-Agent"), r.Header.Get("X-Trace")
		_ = json.NewEncoder(w).Encode(task.ListResponse{})
	}))
	t.Cleanup(srv.Close)

	cfg := taskmaster.DefaultConfig()
	cfg.APIURL = srv.URL
	c, err := FromConfig(cfg, nil, WithRequestModifier(func(req *http.Request) *http.Request {
		req.Header.Set("X-Trace", "abc")
		return req
	}))
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "taskmaster/"+taskmaster.Version, ua)
	assert.Equal(t, "abc", trace)
}

type capturedEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []capturedEntry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, capturedEntry{level, msg, args})
}

func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }

func (l *captureLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.msg)
	}
	return out
}

func (l *captureLogger) detail(msg string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg != msg {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == "details" {
				s, _ := e.args[i+1].(string)
				return s
			}
		}
	}
	return ""
}

func TestClient_VerboseLogging(t *testing.T) {
	logger := &captureLogger{}
	c, srv := newTestClient(t,
		WithLogger(logger),
		WithVerbose(&taskmaster.VerboseOptions{LogHeaders: true, LogBody: true, MaxBodyLogSize: 4096}),
	)
	srv.Seed(task.Task{ID: 1, Title: "Logged task", Status: task.StatusPending, Priority: task.PriorityLow, UserID: 1})

	list, err := c.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1, "the body is restored after logging")

	assert.Equal(t, []string{"Outgoing request", "Received response"}, logger.messages())
	assert.Contains(t, logger.detail("Received response"), "Logged task")
}

func TestLoggingTransport_Truncates(t *testing.T) {
	lt := newLoggingTransport(http.DefaultTransport, nil, &taskmaster.VerboseOptions{MaxBodyLogSize: 5})
	assert.Equal(t, "HTTP/ [truncated]", lt.truncate("HTTP/1.1 200 OK"))
	assert.Equal(t, "abc", lt.truncate("abc"))
}

func TestRequestError_Messages(t *testing.T) {
	cause := errors.New("connection refused")
	assert.Equal(t, "failed to delete task: connection refused", (&RequestError{Op: OpDeleteTask, Err: cause}).Error())
	assert.Equal(t, "Task not found", (&RequestError{Op: OpDeleteTask, StatusCode: 404, Detail: "Task not found"}).Error())
	assert.Equal(t, "task request failed", (&RequestError{Op: "other"}).Error())
	assert.ErrorIs(t, &RequestError{Op: OpGetTask, Err: cause}, cause)
}

func TestFromConfig(t *testing.T) {
	cfg := taskmaster.DefaultConfig()
	cfg.UserID = 7
	c, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID())
	assert.Equal(t, taskmaster.DefaultAPIURL, c.BaseURL())

	_, err = FromConfig(nil, nil)
	assert.ErrorIs(t, err, taskmaster.ErrConfigNil)
}
