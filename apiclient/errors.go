package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidResponse marks a success response whose body could not be
// decoded into the expected shape.
var ErrInvalidResponse = errors.New("invalid response from task service")

// Op names a client operation. Its label prefixes messages that have no
// server detail to show.
type Op string

const (
	OpListTasks        Op = "list_tasks"
	OpGetTask          Op = "get_task"
	OpCreateTask       Op = "create_task"
	OpUpdateTask       Op = "update_task"
	OpDeleteTask       Op = "delete_task"
	OpUpdateTaskStatus Op = "update_task_status"
)

var opLabels = map[Op]string{
	OpListTasks:        "failed to fetch tasks",
	OpGetTask:          "failed to fetch task",
	OpCreateTask:       "failed to create task",
	OpUpdateTask:       "failed to update task",
	OpDeleteTask:       "failed to delete task",
	OpUpdateTaskStatus: "failed to update task status",
}

// Label is the generic failure message of the operation.
func (o Op) Label() string {
	if l, ok := opLabels[o]; ok {
		return l
	}
	return "task request failed"
}

// RequestError is the single error type returned by every Client method.
//
// A server-provided detail is the whole message, so callers can show it to
// the user as is. Without a detail the message is the operation label
// followed by the status line or the transport cause.
type RequestError struct {
	Op         Op
	StatusCode int    // zero for transport failures
	Detail     string // server-provided message, if any
	Err        error  // transport or decode cause
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op.Label(), e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op.Label(), e.Err)
	}
	return e.Op.Label()
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the task service.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode extracts the HTTP status of a RequestError, or zero.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// errorBody is the error envelope of the service. detail is a string for
// handled errors and a list of issues for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseDetail pulls a human readable message out of an error body. It
// returns "" when the body is not the expected envelope.
func parseDetail(body []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg == "" {
				continue
			}
			msgs = append(msgs, issue.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
