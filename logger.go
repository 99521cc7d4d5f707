package hybridgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hybridgo-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSubQueries adds a sub-query count field to the logger.
func (l *Logger) WithSubQueries(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("sub_queries", n),
	}
}

// WithDocBase adds a segment docBase field to the logger.
func (l *Logger) WithDocBase(docBase int) *Logger {
	return &Logger{
		Logger: l.Logger.With("doc_base", docBase),
	}
}

// LogSearch logs one shard-level search.
func (l *Logger) LogSearch(ctx context.Context, subQueries, segments int, totalHits int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "hybrid search failed",
			"sub_queries", subQueries,
			"segments", segments,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "hybrid search completed",
			"sub_queries", subQueries,
			"segments", segments,
			"total_hits", totalHits,
			"duration", duration,
		)
	}
}

// LogSegment logs the collection pass over one segment.
func (l *Logger) LogSegment(ctx context.Context, docBase, maxDoc int, terminated bool) {
	l.DebugContext(ctx, "segment collected",
		"doc_base", docBase,
		"max_doc", maxDoc,
		"terminated_early", terminated,
	)
}

// LogScorerSetup logs the parallel scorer construction for one segment.
func (l *Logger) LogScorerSetup(ctx context.Context, docBase, built, matchless int, duration time.Duration) {
	l.DebugContext(ctx, "sub-scorers built",
		"doc_base", docBase,
		"built", built,
		"matchless", matchless,
		"duration", duration,
	)
}
