package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Sale", uuid.New())}
}

type recordingHandler struct {
	eventTypes []string
	err        error
	panicMsg   string

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("ReceiptApproved")
	bus.Subscribe(handler)

	first := newTestEvent("ReceiptApproved")
	second := newTestEvent("ReceiptApproved")
	require.NoError(t, bus.Publish(context.Background(), first, second))

	require.Equal(t, 2, handler.count())
	assert.Equal(t, first, handler.handled[0])
	assert.Equal(t, second, handler.handled[1])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	receipts := newRecordingHandler("ReceiptApproved")
	sales := newRecordingHandler("SaleCompleted")
	all := newRecordingHandler()
	bus.Subscribe(receipts)
	bus.Subscribe(sales)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ReceiptApproved"),
		newTestEvent("ExpenseApproved"),
	))

	assert.Equal(t, 1, receipts.count())
	assert.Equal(t, 0, sales.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("ReceiptApproved")
	bus.Subscribe(handler, "SaleCompleted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ReceiptApproved"), newTestEvent("SaleCompleted")))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newRecordingHandler("SaleCompleted")
	failing.err = errors.New("sms gateway down")
	panicking := newRecordingHandler("SaleCompleted")
	panicking.panicMsg = "boom"
	healthy := newRecordingHandler("SaleCompleted")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))
	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("SaleCreated")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("SaleCreated"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("SaleCreated"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StopRejectsPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	err := bus.Publish(context.Background(), newTestEvent("SaleCreated"))
	assert.ErrorIs(t, err, ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCreated")))
}
