package observability

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger provides structured logging with context awareness.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
}

// Field represents a structured log field.
type Field = zap.Field

// ZapLogger adds the request ID from the context to every entry.
type ZapLogger struct {
	base *zap.Logger
}

// NewLogger wraps a zap logger. A nil logger discards everything.
func NewLogger(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.base.Debug(msg, withRequestID(ctx, fields)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.base.Info(msg, withRequestID(ctx, fields)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.base.Warn(msg, withRequestID(ctx, fields)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.base.Error(msg, withRequestID(ctx, fields)...)
}

// Zap returns the underlying logger
func (l *ZapLogger) Zap() *zap.Logger {
	return l.base
}

func withRequestID(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	if id := chimw.GetReqID(ctx); id != "" {
		return append(fields, zap.String("request_id", id))
	}
	return fields
}
