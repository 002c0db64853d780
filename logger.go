package triangle

import (
	"log/slog"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/internal/logging"
)

// SetLogger configures the logger for triangle and all its sub-packages.
// By default, triangle produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// The logger is also passed to every registered backend that accepts one;
// the native backend forwards it to gogpu/wgpu.
//
// Log levels used by triangle:
//   - [slog.LevelDebug]: frame state transitions, pipeline builds, releases
//   - [slog.LevelInfo]: adapter selection, surface configuration
//   - [slog.LevelWarn]: repeated initialization
//
// Example:
//
//	triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
	backend.PropagateLogger(Logger())
}

// Logger returns the current logger used by triangle.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
