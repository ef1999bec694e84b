package taskmaster

import (
	"errors"
)

// Configuration errors
var (
	ErrConfigNil          = errors.New("config is nil")
	ErrConfigNotPointer   = errors.New("config must be a pointer")
	ErrInvalidAPIURL      = errors.New("api_url must be an absolute http(s) URL")
	ErrInvalidUserID      = errors.New("user_id must be a positive integer")
	ErrInvalidTimeout     = errors.New("timeouts must not be negative")
	ErrConfigFeederError  = errors.New("config feeder error")
	ErrUnsupportedFormat  = errors.New("unsupported config file format")
	ErrNoSubjectForEvents = errors.New("no subject available for event emission")
)

// Observer errors
var (
	ErrObserverNil  = errors.New("observer is nil")
	ErrObserverNoID = errors.New("observer id is empty")
	ErrInvalidEvent = errors.New("invalid cloud event")
)
