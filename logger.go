package foliage

import (
	"log/slog"

	"github.com/gogpu/foliage/internal/logx"
)

// SetLogger configures the logger for foliage and all its sub-packages.
// By default, foliage produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by foliage:
//   - [slog.LevelDebug]: per-frame detail (bundle re-records, buffer growth, atlas uploads)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, surface configured)
//   - [slog.LevelWarn]: recoverable conditions (surface lost, traffic for unknown kinds)
//   - [slog.LevelError]: aborted frames
//
// Example:
//
//	foliage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger used by foliage.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logx.Logger()
}
