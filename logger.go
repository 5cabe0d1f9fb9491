package rawmem

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with rawmem-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithBacking adds a backing field to the logger.
func (l *Logger) WithBacking(b Backing) *Logger {
	return &Logger{
		Logger: l.Logger.With("backing", b.String()),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogAllocate logs a heap or direct allocation.
func (l *Logger) LogAllocate(kind Backing, capacity int64, err error) {
	if err != nil {
		l.Error("allocate failed",
			"backing", kind.String(),
			"capacity", capacity,
			"error", err,
		)
	} else {
		l.Debug("allocated",
			"backing", kind.String(),
			"capacity", capacity,
		)
	}
}

// LogMap logs a file mapping.
func (l *Logger) LogMap(path string, offset, capacity int64, readOnly bool, err error) {
	if err != nil {
		l.Error("map failed",
			"path", path,
			"offset", offset,
			"capacity", capacity,
			"read_only", readOnly,
			"error", err,
		)
	} else {
		l.Debug("mapped",
			"path", path,
			"offset", offset,
			"capacity", capacity,
			"read_only", readOnly,
		)
	}
}

// LogRelease logs an explicit release of a direct or mapped resource.
func (l *Logger) LogRelease(kind Backing, capacity int64, err error) {
	if err != nil {
		l.Error("release failed",
			"backing", kind.String(),
			"capacity", capacity,
			"error", err,
		)
	} else {
		l.Debug("released",
			"backing", kind.String(),
			"capacity", capacity,
		)
	}
}

// LogCleanup logs a release performed by the garbage-collector safety net.
// It always warns: the owner dropped the resource without closing it.
func (l *Logger) LogCleanup(kind Backing, capacity int64, err error) {
	l.Warn("resource released by cleanup, Close was never called",
		"backing", kind.String(),
		"capacity", capacity,
		"error", err,
	)
}

// LogGrowth logs a capacity-growth request.
func (l *Logger) LogGrowth(from, to int64, err error) {
	if err != nil {
		l.Error("growth failed",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.Debug("grown",
			"from", from,
			"to", to,
		)
	}
}
