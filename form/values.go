package form

import (
	"github.com/GoCodeAlone/taskmaster/task"
)

// Values is a validated draft. DueDate is nil when no date was entered.
type Values struct {
	Title       string
	Description string
	Status      task.Status
	Priority    task.Priority
	DueDate     *task.Date
}

// ToCreate builds the create payload. An empty description is not sent.
func (v Values) ToCreate(userID int64) task.Create {
	c := task.Create{
		Title:    v.Title,
		Status:   v.Status,
		Priority: v.Priority,
		DueDate:  v.DueDate,
		UserID:   userID,
	}
	if v.Description != "" {
		c.Description = task.String(v.Description)
	}
	return c.WithDefaults()
}

// ToUpdate builds the patch for an edit. The form always holds every
// field, so every field is sent; the description is sent even when empty
// so that clearing it sticks. An absent due date is left unchanged.
func (v Values) ToUpdate() task.Update {
	status, priority := v.Status, v.Priority
	u := task.Update{
		Title:       task.String(v.Title),
		Description: task.String(v.Description),
		DueDate:     v.DueDate,
	}
	if status.Valid() {
		u.Status = &status
	}
	if priority.Valid() {
		u.Priority = &priority
	}
	return u
}
