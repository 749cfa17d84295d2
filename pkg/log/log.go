// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on the default slog logger at the given
// level. Unrecognized levels fall back to info.
func Setup(logLevel string) {
	level := slog.LevelInfo

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// WithModule returns the default logger tagged with the subsystem writing
// through it. Editor packages log through a module-tagged logger so entries
// can be filtered per concern.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
