// Package logging sets up the run-wide slog logger: a tinted console
// handler for the operator plus an always-on file handler for later
// inspection of per-item failures.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options controls logger construction
type Options struct {
	// FilePath receives the full log stream; empty disables file logging.
	FilePath string
	// Level applies to the log file.
	Level string
	// Verbose lowers the console handler from warn to Level.
	Verbose bool
}

// New builds the logger and returns it with a close func for the log file
func New(opts Options) (*slog.Logger, func() error, error) {
	level := ParseLevel(opts.Level)

	consoleLevel := slog.LevelWarn
	if opts.Verbose {
		consoleLevel = level
	}
	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      consoleLevel,
		TimeFormat: time.TimeOnly,
	})

	closeFn := func() error { return nil }
	handlers := []slog.Handler{console}

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closeFn = f.Close
	}

	return slog.New(fanout(handlers)), closeFn, nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything, for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type multiHandler []slog.Handler

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return multiHandler(handlers)
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
