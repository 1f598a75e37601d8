package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below debug, for the most verbose output.
const LevelTrace = slog.LevelDebug - 4

// levelOff is above every level the application logs at.
const levelOff = slog.Level(100)

// ParseLevel converts a log level name into a slog.Level.
// Accepts trace, debug, info, warn, warning, error and off (case-insensitive).
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off":
		return levelOff, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger creates a text logger from cfg. The returned close function
// releases the log file, if one was opened, and must always be called.
func NewLogger(cfg LogConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, noop, &ConfigError{Err: err}
	}
	if level == levelOff {
		return slog.New(slog.DiscardHandler), noop, nil
	}

	w := stderr
	closeFn := noop
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}
