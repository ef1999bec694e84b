package taskmaster

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	zl zerolog.Logger
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerologLogger wraps zl.
func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zl: zl}
}

// NewConsoleLogger builds a human readable zerolog logger writing to w at the
// given level ("debug", "info", "warn", "error"). Unknown levels mean info.
func NewConsoleLogger(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().Timestamp().Logger()
	return NewZerologLogger(zl)
}

func (l *ZerologLogger) Info(msg string, args ...any)  { l.emit(l.zl.Info(), msg, args) }
func (l *ZerologLogger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }
func (l *ZerologLogger) Warn(msg string, args ...any)  { l.emit(l.zl.Warn(), msg, args) }
func (l *ZerologLogger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }

// emit attaches args as fields. A trailing key without a value is logged
// under "!BADKEY", the same convention log/slog uses.
func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			ev = ev.Interface("!BADKEY", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if err, isErr := args[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
