// Package logging builds the slog loggers used by the gateway binaries.
//
// Production gets JSON lines on stdout so log shippers can parse them;
// development gets the human readable text handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to slog
// levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New returns a logger writing to stdout.
func New(level string, development bool) *slog.Logger {
	return NewWithWriter(os.Stdout, level, development)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, level string, development bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if development {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
