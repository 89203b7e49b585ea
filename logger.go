package postfx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so the caller skips message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called concurrently with running pipelines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for pipelines created afterwards.
// By default postfx produces no log output.
//
// Pass nil to restore the silent default. A running pipeline keeps its logger;
// use Pipeline.SetLogger to change it.
//
// Log levels used by postfx:
//   - [slog.LevelDebug]: per-frame diagnostics (resizes applied, shader loads)
//   - [slog.LevelInfo]: lifecycle events (pipeline created, shader reloaded)
//   - [slog.LevelWarn]: recoverable failures (resize allocation, shader compile)
//   - [slog.LevelError]: pipeline defects (stale material binding)
//
// Example:
//
//	postfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by components that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes l to every component that implements loggerSetter.
func propagateLogger(l *slog.Logger, components ...any) {
	for _, c := range components {
		if ls, ok := c.(loggerSetter); ok {
			ls.SetLogger(l)
		}
	}
}
