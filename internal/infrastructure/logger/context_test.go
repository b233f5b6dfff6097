package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// withValidSpan attaches a sampled remote span context with fixed IDs
func withValidSpan(ctx context.Context) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x0b, 0x0c, 0x0d, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x10, 0x11, 0x12},
		SpanID:     trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithSpanContext(ctx, sc)
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop().Named("sales")
	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestRequestMeta(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithActor(ctx, "user-7", "HOF")

	assert.Equal(t, RequestMeta{RequestID: "req-1", UserID: "user-7", Role: "HOF"}, MetaFrom(ctx))
	assert.Equal(t, RequestMeta{}, MetaFrom(context.Background()))

	// the actor survives a later request ID
	ctx = WithRequestID(ctx, "req-2")
	assert.Equal(t, "user-7", MetaFrom(ctx).UserID)
}

func TestFor_EnrichesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	ctx := withValidSpan(context.Background())
	ctx = WithRequestID(ctx, "req-9")
	ctx = WithActor(ctx, "user-1", "ACCOUNT_MANAGER")

	For(ctx, zap.New(core)).Info("Receipt forwarded", zap.String("receipt_number", "RCV-202601-00001"))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "RCV-202601-00001", fields["receipt_number"])
	assert.Equal(t, "0a0b0c0d010203040506070809101112", fields["trace_id"])
	assert.Equal(t, "0102030405060708", fields["span_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "ACCOUNT_MANAGER", fields["role"])
}

func TestFor_WithoutMetadata(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, For(context.Background(), base))
	assert.NotNil(t, For(context.Background(), nil))

	core, logs := observer.New(zapcore.DebugLevel)
	For(WithActor(context.Background(), "", ""), zap.New(core)).Warn("no actor")
	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "user_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestL_UsesStoredLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(WithRequestID(context.Background(), "req-3"), zap.New(core))

	L(ctx).Info("Sale created")

	assert.Equal(t, "req-3", logs.All()[0].ContextMap()["request_id"])
}
