package taskmaster

// valueLogger prepends fixed key-value pairs to every log call.
type valueLogger struct {
	inner  Logger
	values []any
}

// WithValues returns a logger that adds values to every entry, for example
// the command or session a line belongs to. Wrapping a logger returned by
// WithValues keeps a single layer.
func WithValues(inner Logger, values ...any) Logger {
	inner = LoggerOrNop(inner)
	if len(values) == 0 {
		return inner
	}
	if v, ok := inner.(*valueLogger); ok {
		return &valueLogger{inner: v.inner, values: append(append([]any(nil), v.values...), values...)}
	}
	return &valueLogger{inner: inner, values: values}
}

func (l *valueLogger) combine(args []any) []any {
	if len(args) == 0 {
		return l.values
	}
	combined := make([]any, 0, len(l.values)+len(args))
	combined = append(combined, l.values...)
	return append(combined, args...)
}

func (l *valueLogger) Info(msg string, args ...any)  { l.inner.Info(msg, l.combine(args)...) }
func (l *valueLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.combine(args)...) }
func (l *valueLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.combine(args)...) }
func (l *valueLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.combine(args)...) }
