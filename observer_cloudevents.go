package taskmaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type.
type CloudEvent = cloudevents.Event

// NewCloudEvent creates a CloudEvent with a time-ordered id, the given type
// and source, optional JSON data and metadata extensions.
func NewCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}

	for key, value := range metadata {
		event.SetExtension(key, value)
	}

	return event
}

// generateEventID returns a UUIDv7, falling back to v4.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// ValidateCloudEvent validates that a CloudEvent conforms to the specification.
func ValidateCloudEvent(event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// Emit builds an event and hands it to subject. A nil subject is reported as
// ErrNoSubjectForEvents so callers can treat "nobody listening" as a no-op.
func Emit(ctx context.Context, subject Subject, eventType, source string, data any) error {
	if subject == nil {
		return ErrNoSubjectForEvents
	}
	return subject.NotifyObservers(ctx, NewCloudEvent(eventType, source, data, nil))
}

// HandleEventEmissionError logs emission failures other than a missing
// subject. It returns true when the error has been dealt with.
func HandleEventEmissionError(err error, logger Logger, source, eventType string) bool {
	if err == nil || errors.Is(err, ErrNoSubjectForEvents) {
		return true
	}
	if logger != nil {
		logger.Debug("Failed to emit event", "source", source, "eventType", eventType, "error", err)
		return true
	}
	return false
}
