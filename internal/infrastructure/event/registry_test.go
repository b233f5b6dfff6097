package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptions_Add(t *testing.T) {
	subs := newSubscriptions()
	handler := newRecordingHandler()

	subs.add(handler, "ReceiptApproved", "ExpenseApproved")

	assert.Len(t, subs.forType("ReceiptApproved"), 1)
	assert.Len(t, subs.forType("ExpenseApproved"), 1)
	assert.Empty(t, subs.forType("SaleCreated"))
}

func TestSubscriptions_AddTwiceIsNoop(t *testing.T) {
	subs := newSubscriptions()
	handler := newRecordingHandler()

	subs.add(handler, "SaleCreated")
	subs.add(handler, "SaleCreated")
	subs.add(handler)
	subs.add(handler)

	// once as typed, once as catch-all
	assert.Len(t, subs.forType("SaleCreated"), 2)
	assert.Equal(t, 1, subs.count())
}

func TestSubscriptions_TypedBeforeCatchAll(t *testing.T) {
	subs := newSubscriptions()
	catchAll := newRecordingHandler()
	typed := newRecordingHandler()

	subs.add(catchAll)
	subs.add(typed, "SaleCompleted")

	handlers := subs.forType("SaleCompleted")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, catchAll, handlers[1])
}

func TestSubscriptions_Remove(t *testing.T) {
	subs := newSubscriptions()
	keep := newRecordingHandler()
	drop := newRecordingHandler()

	subs.add(keep, "SaleCreated")
	subs.add(drop, "SaleCreated", "SaleCompleted")
	subs.add(drop)

	subs.remove(drop)

	assert.Len(t, subs.forType("SaleCreated"), 1)
	assert.Empty(t, subs.forType("SaleCompleted"))
	assert.Equal(t, 1, subs.count())
}

func TestSubscriptions_SnapshotIsIndependent(t *testing.T) {
	subs := newSubscriptions()
	first := newRecordingHandler()
	subs.add(first, "SaleCreated")

	snapshot := subs.forType("SaleCreated")
	subs.add(newRecordingHandler(), "SaleCreated")

	assert.Len(t, snapshot, 1)
	assert.Len(t, subs.forType("SaleCreated"), 2)
}
