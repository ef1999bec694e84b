package configwatch

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/taskmaster"
)

// Reloader loads a fresh configuration and hands it to Apply. A load or
// validation failure leaves the running configuration in place.
type Reloader struct {
	Load    func() (*taskmaster.Config, error)
	Apply   func(ctx context.Context, cfg *taskmaster.Config) error
	Subject taskmaster.Subject
	Logger  taskmaster.Logger
}

// Reload is an Options.OnChange.
func (r Reloader) Reload(ctx context.Context) error {
	logger := taskmaster.LoggerOrNop(r.Logger)

	cfg, err := r.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := r.Apply(ctx, cfg); err != nil {
		return fmt.Errorf("apply configuration: %w", err)
	}
	logger.Info("Configuration reloaded", "apiURL", cfg.APIURL, "userID", cfg.UserID)

	if r.Subject != nil {
		data := map[string]any{"apiUrl": cfg.APIURL, "userId": cfg.UserID}
		if err := taskmaster.Emit(ctx, r.Subject, taskmaster.EventTypeConfigReloaded, "taskmaster.configwatch", data); err != nil {
			taskmaster.HandleEventEmissionError(err, logger, "taskmaster.configwatch", taskmaster.EventTypeConfigReloaded)
		}
	}
	return nil
}
