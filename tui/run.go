package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/page"
)

// ObserverID identifies the forwarder on the event hub.
const ObserverID = "taskmaster.tui"

// NewForwarder returns an observer that hands every event to send,
// typically a running program's Send.
func NewForwarder(send func(tea.Msg)) taskmaster.Observer {
	return taskmaster.NewFunctionalObserver(ObserverID, func(_ context.Context, event cloudevents.Event) error {
		send(EventMsg{Type: event.Type()})
		return nil
	})
}

// Run starts the program and blocks until the user quits or ctx is done.
// When subject is set, controller events redraw the screen as they happen.
func Run(ctx context.Context, ctrl *page.Controller, subject taskmaster.Subject, logger taskmaster.Logger, opts ...tea.ProgramOption) error {
	logger = taskmaster.LoggerOrNop(logger)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(New(ctx, ctrl, logger), opts...)

	if subject != nil {
		fwd := NewForwarder(program.Send)
		if err := subject.RegisterObserver(fwd); err != nil {
			return err
		}
		defer func() {
			if err := subject.UnregisterObserver(fwd); err != nil {
				logger.Warn("Failed to unregister tui observer", "error", err)
			}
		}()
	}

	logger.Info("Starting terminal UI")
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
