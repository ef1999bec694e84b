package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label is the human readable form, "in_progress" becomes "in progress".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Next returns the following status, wrapping completed back to pending.
func (s Status) Next() Status {
	for i, candidate := range Statuses {
		if candidate == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

func (s Status) String() string { return string(s) }

// MarshalText rejects statuses outside the enumeration.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText accepts only the exact wire values.
func (s *Status) UnmarshalText(text []byte) error {
	parsed := Status(text)
	if !parsed.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(text))
	}
	*s = parsed
	return nil
}

// ParseStatus accepts the wire form as well as the label form
// ("in progress") in any case. It is meant for user input; decoding
// server payloads is strict.
func ParseStatus(raw string) (Status, error) {
	normalized := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	if !normalized.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return normalized, nil
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) Label() string  { return string(p) }
func (p Priority) String() string { return string(p) }

// Next returns the following priority, wrapping high back to low.
func (p Priority) Next() Priority {
	for i, candidate := range Priorities {
		if candidate == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityLow
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
	return []byte(p), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed := Priority(text)
	if !parsed.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, string(text))
	}
	*p = parsed
	return nil
}

// ParsePriority is case insensitive.
func ParsePriority(raw string) (Priority, error) {
	normalized := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !normalized.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return normalized, nil
}
