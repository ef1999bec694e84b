// Package apiclient is a typed client for the task service REST API.
//
// Every method is one stateless round trip: there is no retry, no caching
// and no de-duplication. Failures of any kind come back as *RequestError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/task"
)

// BasePath is prefixed to every endpoint.
const BasePath = "/api/v1"

// Client talks to one task service on behalf of one user.
type Client struct {
	baseURL        *url.URL
	userID         int64
	http           *http.Client
	logger         taskmaster.Logger
	modifier       RequestModifierFunc
	verbose        bool
	verboseOptions *taskmaster.VerboseOptions
}

// New creates a client for the service at baseURL ("http://host:port").
func New(baseURL string, userID int64, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", taskmaster.ErrInvalidAPIURL, baseURL)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: %d", taskmaster.ErrInvalidUserID, userID)
	}

	c := &Client{
		baseURL:  u,
		userID:   userID,
		http:     &http.Client{},
		logger:   taskmaster.NopLogger,
		modifier: func(r *http.Request) *http.Request { return r },
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.verbose {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *c.http
		wrapped.Transport = newLoggingTransport(base, c.logger, c.verboseOptions)
		c.http = &wrapped
	}
	return c, nil
}

// FromConfig builds a client from a validated configuration.
func FromConfig(cfg *taskmaster.Config, logger taskmaster.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, taskmaster.ErrConfigNil
	}
	base := []Option{
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		WithRequestModifier(UserAgent("taskmaster/" + taskmaster.Version)),
	}
	if cfg.Verbose {
		base = append(base, WithVerbose(cfg.VerboseOptions))
	}
	return New(cfg.APIURL, cfg.UserID, append(base, opts...)...)
}

// UserID is the user every request is made for.
func (c *Client) UserID() int64 { return c.userID }

// BaseURL is the service root without the API base path.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ListTasks fetches one page of the user's tasks. Nil or zero filters are
// not sent, leaving paging and ordering to the server.
func (c *Client) ListTasks(ctx context.Context, filters *task.ListFilters) (*task.ListResponse, error) {
	query := url.Values{}
	filters.Query(query)

	var out task.ListResponse
	if err := c.do(ctx, OpListTasks, http.MethodGet, "/tasks", query, nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []task.Task{}
	}
	return &out, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, OpGetTask, http.MethodGet, taskPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask stores a new task and returns it with its server-assigned
// fields. An unset user id in data is filled with the client's user.
func (c *Client) CreateTask(ctx context.Context, data task.Create) (*task.Task, error) {
	if data.UserID == 0 {
		data.UserID = c.userID
	}
	data = data.WithDefaults()

	var out task.Task
	if err := c.do(ctx, OpCreateTask, http.MethodPost, "/tasks", nil, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask merges the present fields of patch into the task.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch task.Update) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, OpUpdateTask, http.MethodPut, taskPath(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes the task.
func (c *Client) DeleteTask(ctx context.Context, id int64) (*task.DeleteResult, error) {
	var out task.DeleteResult
	if err := c.do(ctx, OpDeleteTask, http.MethodDelete, taskPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskStatus changes only the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error) {
	var out task.Task
	body := task.StatusUpdate{NewStatus: status}
	if err := c.do(ctx, OpUpdateTaskStatus, http.MethodPatch, taskPath(id)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// do performs one request. query may be nil; user_id is always added.
func (c *Client) do(ctx context.Context, op Op, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("user_id", strconv.FormatInt(c.userID, 10))

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + BasePath + path
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req = c.modifier(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Task service unreachable", "op", string(op), "method", method, "path", endpoint.Path, "error", err)
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
		c.logger.Debug("Task service rejected request", "op", string(op), "status", resp.StatusCode, "detail", reqErr.Detail)
		return reqErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("Undecodable task service response", "op", string(op), "status", resp.StatusCode, "error", err)
		return &RequestError{Op: op, Err: fmt.Errorf("%w: %w", ErrInvalidResponse, err)}
	}
	return nil
}
