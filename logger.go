package spritekit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record. All levels report disabled, so log calls
// return before formatting.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h silentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silentHandler) WithGroup(string) slog.Handler           { return h }

var (
	silent = slog.New(silentHandler{})

	// active is nil until SetLogger installs a logger.
	active atomic.Pointer[slog.Logger]
)

// SetLogger routes the log output of spritekit and its internal packages to
// l. Nothing is logged until it is called; SetLogger(nil) silences output
// again. It may be called at any time, from any goroutine.
//
// Levels:
//   - [slog.LevelDebug]: run widths, averages and bounds of each sheet
//   - [slog.LevelInfo]: imports and rewritten sheets
//   - [slog.LevelWarn]: skipped sheets and optimizer failures
//
// For example, to trace detection on stderr:
//
//	spritekit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	active.Store(l)
}

// Logger returns the logger installed by SetLogger, or a silent one.
func Logger() *slog.Logger {
	if l := active.Load(); l != nil {
		return l
	}
	return silent
}
