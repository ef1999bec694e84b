package taskmaster

import (
	"context"
	"sort"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// EventHub is the Subject shared by the controller and the front ends.
// Delivery runs each observer in its own goroutine unless the context was
// marked with WithSynchronousNotification.
type EventHub struct {
	logger        Logger
	observers     map[string]*observerRegistration
	observerMutex sync.RWMutex
}

var _ Subject = (*EventHub)(nil)

// NewEventHub creates an empty hub.
func NewEventHub(logger Logger) *EventHub {
	return &EventHub{
		logger:    LoggerOrNop(logger),
		observers: make(map[string]*observerRegistration),
	}
}

// RegisterObserver implements Subject. Registering the same id twice
// replaces the earlier registration.
func (h *EventHub) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	if observer.ObserverID() == "" {
		return ErrObserverNoID
	}

	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	h.observerMutex.Lock()
	h.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}
	h.observerMutex.Unlock()

	h.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver implements Subject.
func (h *EventHub) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return nil
	}
	h.observerMutex.Lock()
	defer h.observerMutex.Unlock()

	if _, exists := h.observers[observer.ObserverID()]; exists {
		delete(h.observers, observer.ObserverID())
		h.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}
	return nil
}

// NotifyObservers implements Subject.
func (h *EventHub) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		h.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	h.observerMutex.RLock()
	targets := make([]*observerRegistration, 0, len(h.observers))
	for _, registration := range h.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}
		targets = append(targets, registration)
	}
	h.observerMutex.RUnlock()

	synchronous := IsSynchronousNotification(ctx)
	for _, registration := range targets {
		if synchronous {
			h.deliver(ctx, registration.observer, event)
			continue
		}
		go h.deliver(ctx, registration.observer, event)
	}
	return nil
}

func (h *EventHub) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		h.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers implements Subject. Results are sorted by id.
func (h *EventHub) GetObservers() []ObserverInfo {
	h.observerMutex.RLock()
	defer h.observerMutex.RUnlock()

	info := make([]ObserverInfo, 0, len(h.observers))
	for _, registration := range h.observers {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}
		sort.Strings(eventTypes)

		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].ID < info[j].ID })
	return info
}
