package palette

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with palette-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// A nil writer logs to stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
// A nil writer logs to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithName adds an image name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogFit logs a clustering run.
func (l *Logger) LogFit(ctx context.Context, k, samples, iterations int, converged bool, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"k", k,
			"samples", samples,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "fit completed",
		"k", k,
		"samples", samples,
		"iterations", iterations,
		"converged", converged,
		"duration", d,
	)
}

// LogJob logs a single image job of a batch run.
func (l *Logger) LogJob(ctx context.Context, name, output string, colors int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "job failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "job completed",
		"name", name,
		"output", output,
		"colors", colors,
		"duration", d,
	)
}

// LogBatch logs the outcome of a batch run.
func (l *Logger) LogBatch(ctx context.Context, total, failed int, d time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", total,
			"failed", failed,
			"success", total-failed,
			"duration", d,
		)
		return
	}
	l.InfoContext(ctx, "batch completed",
		"total", total,
		"duration", d,
	)
}
