package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/apiclient"
	"github.com/GoCodeAlone/taskmaster/configwatch"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/tui"
)

func newUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive task view",
		Args:  cobra.NoArgs,
		RunE:  a.runUI,
	}
}

func (a *app) runUI(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := taskmaster.WithValues(taskmaster.NewConsoleLogger(logFile, cfg.LogLevel), "pid", os.Getpid())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	hub := taskmaster.NewEventHub(logger)
	ctrl, err := newController(cfg, logger, hub)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if path := a.watchedConfig(); path != "" {
		reloader := configwatch.Reloader{
			Load:    func() (*taskmaster.Config, error) { return a.loadConfig(cmd) },
			Apply:   applier(ctrl, logger, cfg.RefreshSchedule),
			Subject: hub,
			Logger:  logger,
		}
		watcher, err := configwatch.New(configwatch.Options{
			Paths:    []string{path},
			OnChange: reloader.Reload,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("Configuration will not be reloaded", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	return tui.Run(ctx, ctrl, hub, logger)
}

// watchedConfig is the configuration file in use, if any.
func (a *app) watchedConfig() string {
	if a.opts.ConfigPath != "" {
		return a.opts.ConfigPath
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// newController wires a page controller to the task service described by
// cfg and starts auto refresh when a schedule is configured.
func newController(cfg *taskmaster.Config, logger taskmaster.Logger, subject taskmaster.Subject) (*page.Controller, error) {
	client, err := apiclient.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := append(page.FromConfig(cfg), page.WithLogger(logger), page.WithSubject(subject))
	ctrl := page.New(client, opts...)

	if cfg.RefreshSchedule != "" {
		if err := ctrl.StartAutoRefresh(cfg.RefreshSchedule); err != nil {
			_ = ctrl.Close()
			return nil, err
		}
	}
	return ctrl, nil
}

// applier returns the Reloader.Apply that points ctrl at the reloaded
// service and reschedules auto refresh when the schedule changed.
func applier(ctrl *page.Controller, logger taskmaster.Logger, schedule string) func(context.Context, *taskmaster.Config) error {
	var mu sync.Mutex
	return func(ctx context.Context, cfg *taskmaster.Config) error {
		client, err := apiclient.FromConfig(cfg, logger)
		if err != nil {
			return err
		}
		ctrl.SetAPI(client, cfg.UserID)

		mu.Lock()
		defer mu.Unlock()
		if cfg.RefreshSchedule != schedule {
			ctrl.StopAutoRefresh()
			if cfg.RefreshSchedule != "" {
				if err := ctrl.StartAutoRefresh(cfg.RefreshSchedule); err != nil {
					return err
				}
			}
			schedule = cfg.RefreshSchedule
		}
		return ctrl.Load(ctx)
	}
}
