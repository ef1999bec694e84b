// Package taskmaster is the shared kernel of the taskmaster client: logging,
// configuration, errors and the CloudEvents observer plumbing used by the
// api client, the page controller and the terminal front ends.
package taskmaster

// Logger defines the interface for client logging.
// Every component logs with structured key-value pairs:
//
//	logger.Info("Tasks loaded", "count", 12, "total", 40)
//
// *slog.Logger satisfies this interface, as does the zerolog adapter returned
// by NewZerologLogger.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

// NopLogger discards everything. Components fall back to it when constructed
// without a logger.
var NopLogger Logger = nopLogger{}

// LoggerOrNop returns l, or NopLogger when l is nil.
func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger
	}
	return l
}
