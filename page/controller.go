// Package page is the controller behind the task view. It owns the loaded
// collection and the transient view state (loading flag, open form,
// notification, local filters) and runs every flow against the task
// service: mutate, notify, then reload the whole collection.
//
// Requests are not sequenced. When two loads overlap, whichever response
// arrives last replaces the collection.
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/task"
)

// eventSource is the CloudEvents source of everything the controller emits.
const eventSource = "taskmaster.page"

// Notification messages.
const (
	MsgCreated       = "Task created successfully!"
	MsgUpdated       = "Task updated successfully!"
	MsgDeleted       = "Task deleted successfully!"
	MsgStatusUpdated = "Task status updated!"

	MsgLoadFailed   = "Failed to load tasks"
	MsgCreateFailed = "Failed to create task"
	MsgUpdateFailed = "Failed to update task"
	MsgDeleteFailed = "Failed to delete task"
	MsgStatusFailed = "Failed to update task status"
)

// FormState tells which form, if any, is open.
type FormState int

const (
	FormClosed FormState = iota
	FormCreate
	FormEdit
)

func (s FormState) String() string {
	switch s {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	}
	return "closed"
}

// Filters are the local status and priority selections. Empty means all.
type Filters struct {
	Status   task.Status
	Priority task.Priority
}

// Active reports whether any filter is set.
func (f Filters) Active() bool { return f.Status != "" || f.Priority != "" }

// Apply returns the tasks matching both selections.
func (f Filters) Apply(tasks []task.Task) []task.Task {
	return task.FilterByPriority(task.FilterByStatus(tasks, f.Status), f.Priority)
}

// Controller is the single owner of the view state. All methods are safe
// for concurrent use.
type Controller struct {
	mu sync.Mutex

	api     API
	userID  int64
	query   task.ListFilters
	logger  taskmaster.Logger
	subject taskmaster.Subject

	tasks    []task.Task
	total    int
	loaded   bool
	inflight int

	formState FormState
	form      *form.Form

	filters Filters

	notificationTimeout time.Duration
	notification        *Notification
	notificationGen     uint64
	notificationTimer   *time.Timer

	cron          *cron.Cron
	refreshCtx    context.Context
	refreshCancel context.CancelFunc
	closed        bool
}

// New creates a controller. Nothing is loaded until Load is called.
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:                 api,
		userID:              taskmaster.DefaultUserID,
		logger:              taskmaster.NopLogger,
		notificationTimeout: taskmaster.DefaultNotificationTimeout,
		tasks:               []task.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAPI points the controller at another service or user, typically after
// a configuration reload. The collection is kept until the next Load.
func (c *Controller) SetAPI(api API, userID int64) {
	c.mu.Lock()
	c.api = api
	if userID > 0 {
		c.userID = userID
	}
	c.mu.Unlock()
	c.logger.Info("Task service changed", "userID", userID)
}

// Load replaces the collection with a fresh list from the service. On
// failure the previous collection is kept and an error notification shown.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	api, query := c.api, c.query
	c.inflight++
	c.mu.Unlock()

	if api == nil {
		c.finishLoad()
		c.fail(ctx, "load", 0, ErrNoAPI, MsgLoadFailed)
		return ErrNoAPI
	}

	resp, err := api.ListTasks(ctx, &query)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		// Cancelled by whoever started the load, not a service failure.
		c.finishLoad()
		c.logger.Debug("Load cancelled", "error", err)
		return err
	}
	if err != nil {
		c.finishLoad()
		c.logger.Error("Failed to load tasks", "error", err)
		c.fail(ctx, "load", 0, err, MsgLoadFailed)
		c.emit(ctx, taskmaster.EventTypeTasksLoadFailed, map[string]any{"error": err.Error()})
		return err
	}

	c.mu.Lock()
	c.inflight--
	c.tasks = append([]task.Task(nil), resp.Tasks...)
	c.total = resp.Total
	c.loaded = true
	count := len(c.tasks)
	c.mu.Unlock()

	c.logger.Debug("Tasks loaded", "count", count, "total", resp.Total)
	c.emit(ctx, taskmaster.EventTypeTasksLoaded, map[string]any{"count": count, "total": resp.Total})
	return nil
}

func (c *Controller) finishLoad() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}

// Create stores a new task. On success the create form is closed, a
// notification shown and the collection reloaded. On failure the error is
// shown and also returned so the form can display it.
func (c *Controller) Create(ctx context.Context, v form.Values) error {
	c.mu.Lock()
	api, userID := c.api, c.userID
	c.mu.Unlock()
	if api == nil {
		c.fail(ctx, "create", 0, ErrNoAPI, MsgCreateFailed)
		return ErrNoAPI
	}

	created, err := api.CreateTask(ctx, v.ToCreate(userID))
	if err != nil {
		c.logger.Error("Failed to create task", "error", err)
		c.fail(ctx, "create", 0, err, MsgCreateFailed)
		return err
	}

	c.mu.Lock()
	if c.formState == FormCreate {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	c.logger.Info("Task created", "taskID", created.ID)
	c.emit(ctx, taskmaster.EventTypeTaskCreated, map[string]any{"taskId": created.ID, "title": created.Title})
	c.notify(ctx, KindSuccess, MsgCreated)
	_ = c.Load(ctx)
	return nil
}

// Update patches an existing task. It mirrors Create.
func (c *Controller) Update(ctx context.Context, id int64, v form.Values) error {
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	if api == nil {
		c.fail(ctx, "update", id, ErrNoAPI, MsgUpdateFailed)
		return ErrNoAPI
	}

	if _, err := api.UpdateTask(ctx, id, v.ToUpdate()); err != nil {
		c.logger.Error("Failed to update task", "taskID", id, "error", err)
		c.fail(ctx, "update", id, err, MsgUpdateFailed)
		return err
	}

	c.mu.Lock()
	if c.formState == FormEdit && c.form != nil && c.form.TaskID() == id {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	c.logger.Info("Task updated", "taskID", id)
	c.emit(ctx, taskmaster.EventTypeTaskUpdated, map[string]any{"taskId": id})
	c.notify(ctx, KindSuccess, MsgUpdated)
	_ = c.Load(ctx)
	return nil
}

// SetStatus is the quick status change of a single task.
func (c *Controller) SetStatus(ctx context.Context, id int64, status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidStatus, string(status))
	}
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	if api == nil {
		c.fail(ctx, "status", id, ErrNoAPI, MsgStatusFailed)
		return ErrNoAPI
	}

	if _, err := api.UpdateTaskStatus(ctx, id, status); err != nil {
		c.logger.Error("Failed to update task status", "taskID", id, "status", string(status), "error", err)
		c.fail(ctx, "status", id, err, MsgStatusFailed)
		return err
	}

	c.emit(ctx, taskmaster.EventTypeTaskStatusChanged, map[string]any{"taskId": id, "status": string(status)})
	c.notify(ctx, KindSuccess, MsgStatusUpdated)
	_ = c.Load(ctx)
	return nil
}

// Delete asks confirm first and does nothing when the answer is no or
// there is nobody to ask. Failures are shown, not returned: the result only
// tells whether the task was deleted.
func (c *Controller) Delete(ctx context.Context, id int64, confirm Confirmer) bool {
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		c.logger.Debug("Delete declined", "taskID", id)
		return false
	}

	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	if api == nil {
		c.fail(ctx, "delete", id, ErrNoAPI, MsgDeleteFailed)
		return false
	}

	if _, err := api.DeleteTask(ctx, id); err != nil {
		c.logger.Error("Failed to delete task", "taskID", id, "error", err)
		c.fail(ctx, "delete", id, err, MsgDeleteFailed)
		return false
	}

	c.mu.Lock()
	if c.formState == FormEdit && c.form != nil && c.form.TaskID() == id {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	c.logger.Info("Task deleted", "taskID", id)
	c.emit(ctx, taskmaster.EventTypeTaskDeleted, map[string]any{"taskId": id})
	c.notify(ctx, KindSuccess, MsgDeleted)
	_ = c.Load(ctx)
	return true
}

// SubmitForm submits the open form to Create or Update depending on its
// mode. The form records the outcome; the controller closes it on success.
func (c *Controller) SubmitForm(ctx context.Context) form.Result {
	c.mu.Lock()
	f := c.form
	c.mu.Unlock()
	if f == nil {
		return form.Result{Outcome: form.Rejected, Err: ErrNoOpenForm}
	}

	return f.Submit(ctx, func(ctx context.Context, v form.Values) error {
		if f.Mode() == form.ModeEdit {
			return c.Update(ctx, f.TaskID(), v)
		}
		return c.Create(ctx, v)
	})
}

// fail shows the error of a failed operation. The service's message is
// shown as is; fallback is used when there is none.
func (c *Controller) fail(ctx context.Context, op string, id int64, err error, fallback string) {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	if op != "load" {
		c.emit(ctx, taskmaster.EventTypeTaskOperationFailed, map[string]any{"operation": op, "taskId": id, "error": msg})
	}
	c.notify(ctx, KindError, msg)
}

func (c *Controller) emit(ctx context.Context, eventType string, data map[string]any) {
	c.mu.Lock()
	subject := c.subject
	c.mu.Unlock()
	if subject == nil {
		return
	}
	if err := taskmaster.Emit(ctx, subject, eventType, eventSource, data); err != nil {
		taskmaster.HandleEventEmissionError(err, c.logger, eventSource, eventType)
	}
}
