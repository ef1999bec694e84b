// Package form holds the draft of a task being created or edited and the
// submission rules around it.
//
// A Form never talks to the network. Submit hands the validated draft to a
// caller-supplied function and records how that went; the caller decides
// whether to close the form.
package form

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/GoCodeAlone/taskmaster/task"
)

var (
	// ErrSubmitInProgress is returned by Submit while an earlier submission
	// has not completed.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrNoSubmitFunc is returned when Submit is called with a nil function.
	ErrNoSubmitFunc = errors.New("no submit function")
)

// Mode tells whether a form creates a new task or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// NewKey is the Key of every create form.
const NewKey = "new"

// Draft is the editable copy of a task's mutable fields. DueDate is kept as
// typed, "" meaning no due date.
type Draft struct {
	Title       string
	Description string
	Status      task.Status
	Priority    task.Priority
	DueDate     string
}

// SubmitFunc receives the validated values. A non-nil error keeps the form
// open with the error shown.
type SubmitFunc func(ctx context.Context, v Values) error

// Form is safe for use from several goroutines: a TUI submits in a
// background command while the view keeps rendering.
type Form struct {
	mu sync.Mutex

	key    string
	mode   Mode
	taskID int64
	draft  Draft

	submitting bool
	err        error
}

// New creates a form in create mode when t is nil and in edit mode, seeded
// from t, otherwise.
func New(t *task.Task) *Form {
	f := &Form{
		key:  KeyFor(t),
		mode: ModeCreate,
		draft: Draft{
			Status:   task.StatusPending,
			Priority: task.PriorityMedium,
		},
	}
	if t == nil {
		return f
	}

	f.mode = ModeEdit
	f.taskID = t.ID
	f.draft.Title = t.Title
	f.draft.Description = t.DescriptionText()
	if t.Status.Valid() {
		f.draft.Status = t.Status
	}
	if t.Priority.Valid() {
		f.draft.Priority = t.Priority
	}
	if t.DueDate != nil {
		f.draft.DueDate = t.DueDate.String()
	}
	return f
}

// KeyFor is the identity of the form for t: "new" or "task-<id>".
func KeyFor(t *task.Task) string {
	if t == nil {
		return NewKey
	}
	return "task-" + strconv.FormatInt(t.ID, 10)
}

// Reseed returns f itself when it already belongs to t, and a fresh form
// otherwise. Switching between create and edit, or between two tasks,
// always goes through here so the draft never leaks across tasks.
func Reseed(f *Form, t *task.Task) *Form {
	if f != nil && f.Key() == KeyFor(t) {
		return f
	}
	return New(t)
}

func (f *Form) Key() string { return f.key }
func (f *Form) Mode() Mode  { return f.mode }

// TaskID is the edited task, or zero in create mode.
func (f *Form) TaskID() int64 { return f.taskID }

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Edit applies fn to the draft. Edits are ignored while submitting, the
// same way a disabled input ignores typing.
func (f *Form) Edit(fn func(d *Draft)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return false
	}
	fn(&f.draft)
	return true
}

func (f *Form) SetTitle(s string) bool       { return f.Edit(func(d *Draft) { d.Title = s }) }
func (f *Form) SetDescription(s string) bool { return f.Edit(func(d *Draft) { d.Description = s }) }
func (f *Form) SetDueDate(s string) bool     { return f.Edit(func(d *Draft) { d.DueDate = s }) }

func (f *Form) SetStatus(s task.Status) bool {
	if !s.Valid() {
		return false
	}
	return f.Edit(func(d *Draft) { d.Status = s })
}

func (f *Form) SetPriority(p task.Priority) bool {
	if !p.Valid() {
		return false
	}
	return f.Edit(func(d *Draft) { d.Priority = p })
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Error is the message of the last failed submission or validation, or "".
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		return ""
	}
	return f.err.Error()
}

// Err is the last failure itself.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Heading is the title shown above the fields.
func (f *Form) Heading() string {
	if f.mode == ModeEdit {
		return "Edit Task"
	}
	return "Create New Task"
}

// SubmitLabel is the label of the submit action for the current state.
func (f *Form) SubmitLabel() string {
	if f.Submitting() {
		return "Saving..."
	}
	if f.mode == ModeEdit {
		return "Update Task"
	}
	return "Create Task"
}

// CanSubmit mirrors the enabled state of the submit action: not in flight
// and the title is not blank.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.submitting && strings.TrimSpace(f.draft.Title) != ""
}

// Submit validates the draft and, when it passes, calls fn with the values.
// The form stays in the submitting state until fn returns. Nothing is reset
// on success.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) Result {
	if fn == nil {
		return Result{Outcome: Failed, Err: ErrNoSubmitFunc}
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Result{Outcome: Rejected, Err: ErrSubmitInProgress}
	}
	values, err := validate(f.draft)
	if err != nil {
		f.err = err
		f.mu.Unlock()
		return Result{Outcome: Rejected, Err: err}
	}
	f.submitting = true
	f.err = nil
	f.mu.Unlock()

	err = fn(ctx, values)

	f.mu.Lock()
	f.submitting = false
	f.err = err
	f.mu.Unlock()

	if err != nil {
		return Result{Outcome: Failed, Err: err, Values: values}
	}
	return Result{Outcome: Submitted, Values: values}
}

// ClearError drops a displayed error without touching the draft.
func (f *Form) ClearError() {
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
}

func validate(d Draft) (Values, error) {
	if strings.TrimSpace(d.Title) == "" {
		return Values{}, &ValidationError{Field: "title", Message: "Title is required"}
	}

	v := Values{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
	}
	if raw := strings.TrimSpace(d.DueDate); raw != "" {
		due, err := task.ParseDate(raw)
		if err != nil || !isPlainDate(raw) {
			return Values{}, &ValidationError{Field: "due_date", Message: "Due date must be a date in YYYY-MM-DD format"}
		}
		v.DueDate = &due
	}
	return v, nil
}

func isPlainDate(raw string) bool {
	return len(raw) == len(task.DateLayout)
}
