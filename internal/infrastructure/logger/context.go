package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	metaKey
)

// RequestMeta identifies the request and actor behind a log entry.
// Approvals, cancellations and refunds are audited through UserID and Role.
type RequestMeta struct {
	RequestID string
	UserID    string
	Role      string
}

func (m RequestMeta) fields() []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if m.RequestID != "" {
		fields = append(fields, zap.String("request_id", m.RequestID))
	}
	if m.UserID != "" {
		fields = append(fields, zap.String("user_id", m.UserID), zap.String("role", m.Role))
	}
	return fields
}

// MetaFrom returns the request metadata stored in ctx
func MetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(metaKey).(RequestMeta)
	return m
}

// WithRequestID records the request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	m := MetaFrom(ctx)
	m.RequestID = requestID
	return context.WithValue(ctx, metaKey, m)
}

// WithActor records the authenticated user in ctx
func WithActor(ctx context.Context, userID, role string) context.Context {
	m := MetaFrom(ctx)
	m.UserID, m.Role = userID, role
	return context.WithValue(ctx, metaKey, m)
}

// WithContext stores logger in ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// For returns base enriched with the trace, request and actor fields of ctx.
//
//	logger.For(ctx, log).Info("Receipt approved", zap.String("receipt_number", n))
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if ctx == nil {
		return base
	}
	fields := MetaFrom(ctx).fields()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// L is For over the logger stored in ctx
func L(ctx context.Context) *zap.Logger {
	return For(ctx, FromContext(ctx))
}
