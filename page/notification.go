package page

import (
	"context"
	"time"

	"github.com/GoCodeAlone/taskmaster"
)

// Kind is the flavor of a notification.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notification is a transient message. A newer one replaces it, and it is
// cleared once the notification timeout has passed since it was shown.
type Notification struct {
	ID      uint64
	Kind    Kind
	Message string
	ShownAt time.Time
}

// Notification returns the visible notification, or nil.
func (c *Controller) Notification() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notification == nil {
		return nil
	}
	n := *c.notification
	return &n
}

// DismissNotification clears the visible notification right away.
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	id := c.notificationGen
	c.mu.Unlock()
	c.clearNotification(id)
}

func (c *Controller) notify(ctx context.Context, kind Kind, message string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.notificationGen++
	id := c.notificationGen
	c.notification = &Notification{ID: id, Kind: kind, Message: message, ShownAt: time.Now()}

	if c.notificationTimer != nil {
		c.notificationTimer.Stop()
	}
	c.notificationTimer = time.AfterFunc(c.notificationTimeout, func() { c.clearNotification(id) })
	c.mu.Unlock()

	c.emit(ctx, taskmaster.EventTypeNotificationShown, map[string]any{"id": id, "kind": kind.String(), "message": message})
}

// clearNotification clears notification id if it is still the visible one.
// Timers of replaced notifications are therefore harmless.
func (c *Controller) clearNotification(id uint64) {
	c.mu.Lock()
	if c.notification == nil || c.notification.ID != id {
		c.mu.Unlock()
		return
	}
	c.notification = nil
	c.mu.Unlock()

	c.emit(context.Background(), taskmaster.EventTypeNotificationCleared, map[string]any{"id": id})
}
