package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// NewContext stores l in ctx for From and With.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// With adds fields to the context logger.
func With(ctx context.Context, fields ...any) context.Context {
	return NewContext(ctx, From(ctx).With(fields...))
}

// From returns the context logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return LoggerWrapper()
}
