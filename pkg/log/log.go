// Package log configures the process-wide slog logger.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger. Text output by default; set
// LOG_FORMAT=json for machine-readable logs.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// WithModule returns the default logger tagged with a module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
