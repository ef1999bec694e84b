package page

import (
	"time"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/task"
)

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger taskmaster.Logger) Option {
	return func(c *Controller) { c.logger = taskmaster.LoggerOrNop(logger) }
}

// WithSubject sets where events are emitted. Without one nothing is emitted.
func WithSubject(subject taskmaster.Subject) Option {
	return func(c *Controller) { c.subject = subject }
}

// WithNotificationTimeout sets how long a notification stays up.
func WithNotificationTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.notificationTimeout = d
		}
	}
}

// WithUserID sets the owner of created tasks.
func WithUserID(id int64) Option {
	return func(c *Controller) { c.userID = id }
}

// WithQuery sets the server-side search and paging sent with every load.
// Status and priority are ignored; those filters are applied locally.
func WithQuery(q task.ListFilters) Option {
	return func(c *Controller) {
		q.Status, q.Priority = "", ""
		c.query = q
	}
}

// FromConfig translates the client configuration into options.
func FromConfig(cfg *taskmaster.Config) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithUserID(cfg.UserID),
		WithNotificationTimeout(cfg.NotificationTimeout),
		WithQuery(task.ListFilters{Search: cfg.Search, Limit: cfg.ListLimit}),
	}
}
