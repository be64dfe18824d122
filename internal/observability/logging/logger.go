// Package logging builds the process-wide slog logger. Every pipeline
// component logs through a child of the logger produced here, so output is
// uniformly JSON and always carries the service and component attributes.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON logger tagged with the service name. A nil writer
// defaults to stdout; an unknown level string falls back to info.
func New(service, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// ForComponent derives a child logger tagged with the pipeline component
// emitting the records (extractor, ingest, chat, forms, reports).
func ForComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}

// ParseLevel maps the configured level string onto a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
