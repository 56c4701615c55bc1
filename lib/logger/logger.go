// Package logger provides the structured console logger used during boot.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

type contextKey string

const loggerKey contextKey = "logger"

// Options configures New.
type Options struct {
	// Level is the minimum level written.
	Level slog.Level
	// NoColor disables ANSI colours in the log output.
	NoColor bool
}

// New creates a logger writing human-readable lines to w.
// Format: 10:15:30.000 INF message phase=reaper pid=42
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: "15:04:05.000",
		NoColor:    opts.NoColor,
	}))
}

// OpenConsole opens the console device at path for writing, falling back to
// stderr when path is empty or cannot be opened. The returned file is
// close-on-exec, so it never leaks into the shell.
func OpenConsole(path string) *os.File {
	if path == "" {
		return os.Stderr
	}
	if f, err := os.OpenFile(path, os.O_WRONLY, 0); err == nil {
		return f
	}
	return os.Stderr
}

// AddToContext adds a logger to the context
func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or returns default
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
