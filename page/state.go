package page

import (
	"fmt"

	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/task"
)

// Snapshot is a copy of the view state, safe to read without locking.
type Snapshot struct {
	Tasks   []task.Task // the whole loaded collection
	Visible []task.Task // Tasks after the local filters
	Total   int         // total reported by the service
	Loaded  bool        // at least one load has succeeded
	Loading bool

	FormState FormState
	Form      *form.Form

	Filters      Filters
	Notification *Notification
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := append([]task.Task(nil), c.tasks...)
	s := Snapshot{
		Tasks:     tasks,
		Visible:   c.filters.Apply(tasks),
		Total:     c.total,
		Loaded:    c.loaded,
		Loading:   c.inflight > 0,
		FormState: c.formState,
		Form:      c.form,
		Filters:   c.filters,
	}
	if c.notification != nil {
		n := *c.notification
		s.Notification = &n
	}
	return s
}

// Tasks returns a copy of the loaded collection.
func (c *Controller) Tasks() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]task.Task(nil), c.tasks...)
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// OpenCreateForm shows the create form, keeping an already open one.
func (c *Controller) OpenCreateForm() *form.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form.Reseed(c.form, nil)
	c.formState = FormCreate
	return c.form
}

// ToggleCreateForm closes the create form when it is open and opens a
// fresh one otherwise, discarding any edit in progress.
func (c *Controller) ToggleCreateForm() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formState == FormCreate {
		c.closeFormLocked()
		return c.formState
	}
	c.form = form.Reseed(c.form, nil)
	c.formState = FormCreate
	return c.formState
}

// OpenEditForm shows the edit form for t. A form already editing t is kept;
// any other form is replaced by one seeded from t.
func (c *Controller) OpenEditForm(t task.Task) *form.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form.Reseed(c.form, &t)
	c.formState = FormEdit
	return c.form
}

// CloseForm discards the open form and its draft.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormLocked()
}

// Form returns the open form, or nil.
func (c *Controller) Form() *form.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) closeFormLocked() {
	c.form = nil
	c.formState = FormClosed
}

// SetStatusFilter shows only tasks with status s. "" shows every status.
func (c *Controller) SetStatusFilter(s task.Status) error {
	if s != "" && !s.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, string(s))
	}
	c.mu.Lock()
	c.filters.Status = s
	c.mu.Unlock()
	return nil
}

// SetPriorityFilter shows only tasks with priority p. "" shows every priority.
func (c *Controller) SetPriorityFilter(p task.Priority) error {
	if p != "" && !p.Valid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidFilter, string(p))
	}
	c.mu.Lock()
	c.filters.Priority = p
	c.mu.Unlock()
	return nil
}

// ClearFilters shows every loaded task again.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	c.filters = Filters{}
	c.mu.Unlock()
}

// Filters returns the current selections.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Visible is the loaded collection after the local filters.
func (c *Controller) Visible() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Apply(append([]task.Task(nil), c.tasks...))
}
