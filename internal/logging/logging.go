// Package logging configures the structured loggers used by the client and
// the dev backend.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options selects the log level and output format.
type Options struct {
	// Level is one of debug, info, warn, error. Case-insensitive; empty means info.
	Level string
	// Format is text (default) or json.
	Format string
}

// New builds a logger writing to w. An invalid level falls back to info
// and is reported once through the returned logger.
func New(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		return Discard()
	}
	level, err := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	logger := slog.New(handler)
	if err != nil {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", opts.Level,
			"default_level", "info")
	}
	return logger
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// ValidFormat reports whether format names a supported handler.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "json":
		return true
	default:
		return false
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
