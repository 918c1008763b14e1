package log

import "fmt"

// WrappedLogger tags every line with the components it passed through e.g. '(Arango) (HTTP) ...' and provides a
// helper per level. The zero value, or one wrapping a <nil> logger, drops every line.
type WrappedLogger struct {
	logger Logger
	prefix string
}

var _ Logger = WrappedLogger{}

// NewWrappedLogger returns a logger which tags lines with the given components before passing them to the logger.
func NewWrappedLogger(logger Logger, tags ...string) WrappedLogger {
	return WrappedLogger{logger: logger}.With(tags...)
}

// With returns a copy of the logger which also tags lines with the given components, after any existing tags.
func (w WrappedLogger) With(tags ...string) WrappedLogger {
	for _, tag := range tags {
		w.prefix += "(" + tag + ") "
	}

	return w
}

// Prefix returns the tags added to each line.
func (w WrappedLogger) Prefix() string {
	return w.prefix
}

// Log passes the tagged line to the underlying logger.
func (w WrappedLogger) Log(level Level, format string, args ...any) {
	if w.logger == nil {
		return
	}

	w.logger.Log(level, w.prefix+format, args...)
}

func (w WrappedLogger) Tracef(format string, args ...any) {
	w.Log(LevelTrace, format, args...)
}

func (w WrappedLogger) Debugf(format string, args ...any) {
	w.Log(LevelDebug, format, args...)
}

func (w WrappedLogger) Infof(format string, args ...any) {
	w.Log(LevelInfo, format, args...)
}

func (w WrappedLogger) Warnf(format string, args ...any) {
	w.Log(LevelWarning, format, args...)
}

func (w WrappedLogger) Errorf(format string, args ...any) {
	w.Log(LevelError, format, args...)
}

// Panicf logs the line at the panic level then panics with it, even when lines are being dropped.
func (w WrappedLogger) Panicf(format string, args ...any) {
	w.Log(LevelPanic, format, args...)
	panic(fmt.Sprintf(w.prefix+format, args...))
}
