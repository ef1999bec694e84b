package taskmaster

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer defines the interface for objects that want to be notified of
// client events. Events use the CloudEvents specification.
type Observer interface {
	// OnEvent is called for every event the observer subscribed to.
	// Observers should return quickly; the TUI forwards events into its
	// program loop instead of rendering inline.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
type Subject interface {
	// RegisterObserver adds an observer. With no eventTypes the observer
	// receives every event.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all interested observers.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the client, in reverse domain notation.
const (
	// Collection events
	EventTypeTasksLoaded     = "com.taskmaster.tasks.loaded"
	EventTypeTasksLoadFailed = "com.taskmaster.tasks.load_failed"

	// Mutation events
	EventTypeTaskCreated         = "com.taskmaster.task.created"
	EventTypeTaskUpdated         = "com.taskmaster.task.updated"
	EventTypeTaskStatusChanged   = "com.taskmaster.task.status_changed"
	EventTypeTaskDeleted         = "com.taskmaster.task.deleted"
	EventTypeTaskOperationFailed = "com.taskmaster.task.operation_failed"

	// Notification (toast) events
	EventTypeNotificationShown   = "com.taskmaster.notification.shown"
	EventTypeNotificationCleared = "com.taskmaster.notification.cleared"

	// Configuration events
	EventTypeConfigReloaded = "com.taskmaster.config.reloaded"
)

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that calls handler for each event.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements Observer.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements Observer.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
