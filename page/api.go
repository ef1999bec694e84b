package page

import (
	"context"
	"errors"

	"github.com/GoCodeAlone/taskmaster/task"
)

// API is the slice of the task service the controller needs.
// *apiclient.Client satisfies it.
type API interface {
	ListTasks(ctx context.Context, filters *task.ListFilters) (*task.ListResponse, error)
	CreateTask(ctx context.Context, data task.Create) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, patch task.Update) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) (*task.DeleteResult, error)
	UpdateTaskStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error)
}

var (
	ErrNoAPI            = errors.New("page: no task service configured")
	ErrNoOpenForm       = errors.New("page: no form is open")
	ErrInvalidFilter    = errors.New("page: invalid filter value")
	ErrRefreshScheduled = errors.New("page: auto refresh already running")
	ErrClosed           = errors.New("page: controller closed")
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this task?"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Answer returns a Confirmer that always gives the same answer.
func Answer(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return yes })
}
