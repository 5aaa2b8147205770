// Package logging installs the process-wide slog logger: human-readable text
// on an interactive terminal, the systemd journal otherwise.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"golang.org/x/term"
)

// Setup builds the logger for the given level and makes it the slog default.
func Setup(level string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	switch {
	case term.IsTerminal(int(os.Stdin.Fd())):
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	case journal.Enabled():
		handler = NewJournalHandler(lvl)
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
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
