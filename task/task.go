// Package task defines the shapes exchanged with the task service.
//
// Status and Priority only ever hold one of their three values: decoding any
// other value fails, so a Task that made it through the api client can be
// trusted by every component that renders or filters it.
package task

import (
	"net/url"
	"strconv"
)

// Task is a persisted work item. ID, UserID, CreatedAt and UpdatedAt are
// assigned by the server and never sent by the client.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     *Date     `json:"due_date,omitempty"`
	UserID      int64     `json:"user_id"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// DescriptionText returns the description or "".
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// Create is the payload for creating a task.
type Create struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	DueDate     *Date    `json:"due_date,omitempty"`
	UserID      int64    `json:"user_id"`
}

// WithDefaults returns a copy with an empty status or priority replaced by
// pending and medium.
func (c Create) WithDefaults() Create {
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return c
}

// Update is a partial patch. Nil fields are not sent and stay unchanged on
// the server.
type Update struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *Date     `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil && u.DueDate == nil
}

// Apply returns t with the patched fields replaced. The server is the
// authority; Apply exists for fakes and for predicting a round trip.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		d := *u.Description
		t.Description = &d
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	return t
}

// StatusUpdate is the body of the status-only patch.
type StatusUpdate struct {
	NewStatus Status `json:"new_status"`
}

// ListFilters narrow a list request. Zero values are not sent.
type ListFilters struct {
	Status   Status
	Priority Priority
	Search   string
	Page     int
	Limit    int
}

// Query encodes the set filters into v.
func (f *ListFilters) Query(v url.Values) {
	if f == nil {
		return
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		v.Set("priority", string(f.Priority))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
}

// ListResponse is one page of tasks.
type ListResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}

// DeleteResult acknowledges a delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }
