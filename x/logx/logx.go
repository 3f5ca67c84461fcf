// Package logx owns the process logger.
package logx

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer
}

var (
	mu     sync.RWMutex
	global = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// Setup replaces the process logger and returns it.
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l := slog.New(h)

	mu.Lock()
	global = l
	mu.Unlock()
	return l
}

// L returns the current process logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
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
