// Package telemetry wraps slog with request correlation and exposes the
// metrics Provider abstraction (prometheus/otel backends), grounded on
// engine/telemetry/logging and engine/telemetry/metrics.
package telemetry

import (
	"context"
	"log/slog"
)

// correlationKey is the context key under which the current request's
// correlation ID (the JSON-RPC call's id, or a generated one for
// notifications) is stored.
type correlationKey struct{}

// WithCorrelationID attaches a correlation ID to ctx for downstream logging.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationKey{}).(string)
	return v
}

// Logger is a minimal interface wrapper that injects the request
// correlation ID into every log line, the way engine/telemetry/logging
// injects trace/span IDs extracted from an OTEL span in context.
type Logger interface {
	InfoCtx(ctx context.Context, msg string, attrs ...any)
	WarnCtx(ctx context.Context, msg string, attrs ...any)
	ErrorCtx(ctx context.Context, msg string, attrs ...any)
}

type correlatedLogger struct{ base *slog.Logger }

// New returns a correlated Logger wrapping base (or slog.Default if nil).
func New(base *slog.Logger) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &correlatedLogger{base: base}
}

func (l *correlatedLogger) with(ctx context.Context, attrs []any) []any {
	if id := correlationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	return attrs
}

func (l *correlatedLogger) InfoCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.InfoContext(ctx, msg, l.with(ctx, attrs)...)
}

func (l *correlatedLogger) WarnCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.WarnContext(ctx, msg, l.with(ctx, attrs)...)
}

func (l *correlatedLogger) ErrorCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.ErrorContext(ctx, msg, l.with(ctx, attrs)...)
}
