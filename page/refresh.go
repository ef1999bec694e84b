package page

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StartAutoRefresh reloads the collection on a cron schedule, either a
// standard five field spec or a descriptor such as "@every 30s". Runs that
// would overlap a still running reload are skipped.
func (c *Controller) StartAutoRefresh(spec string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.cron != nil {
		return ErrRefreshScheduled
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := scheduler.AddFunc(spec, func() { c.refresh(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	c.cron = scheduler
	c.refreshCtx, c.refreshCancel = ctx, cancel
	scheduler.Start()
	c.logger.Info("Auto refresh started", "schedule", spec)
	return nil
}

// StopAutoRefresh stops scheduled reloads and waits for a running one to
// notice cancellation.
func (c *Controller) StopAutoRefresh() {
	c.mu.Lock()
	scheduler, cancel := c.cron, c.refreshCancel
	c.cron, c.refreshCtx, c.refreshCancel = nil, nil, nil
	c.mu.Unlock()

	if scheduler == nil {
		return
	}
	cancel()
	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
		c.logger.Warn("Auto refresh did not stop in time")
	}
	c.logger.Info("Auto refresh stopped")
}

// AutoRefreshing reports whether a refresh schedule is active.
func (c *Controller) AutoRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cron != nil
}

func (c *Controller) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := c.Load(ctx); err != nil {
		c.logger.Debug("Scheduled reload failed", "error", err)
	}
}

// Close stops auto refresh and the notification timer. Later notifications
// are dropped.
func (c *Controller) Close() error {
	c.StopAutoRefresh()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.notificationTimer != nil {
		c.notificationTimer.Stop()
		c.notificationTimer = nil
	}
	return nil
}
