package lock

import (
	"context"
	"time"

	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

// Instrumented records how long callers wait for their keys
type Instrumented struct {
	next    shared.Locker
	backend string
	wait    *telemetry.Histogram
}

// NewInstrumented wraps next with a landerp_lock_wait_seconds histogram
func NewInstrumented(next shared.Locker, backend string, meter metric.Meter) (*Instrumented, error) {
	wait, err := telemetry.NewHistogram(meter, "landerp_lock_wait_seconds",
		"Time spent waiting for keyed locks", "s", telemetry.LockWaitBuckets)
	if err != nil {
		return nil, err
	}
	return &Instrumented{next: next, backend: backend, wait: wait}, nil
}

// Lock delegates to the wrapped Locker and records the wait
func (i *Instrumented) Lock(ctx context.Context, keys ...string) (func(), error) {
	ctx, span := telemetry.StartSpan(ctx, "lock.acquire", "lock.backend", i.backend, "lock.keys", len(keys))
	defer span.End()

	start := time.Now()
	unlock, err := i.next.Lock(ctx, keys...)

	outcome := "acquired"
	if err != nil {
		outcome = "failed"
		telemetry.RecordError(span, err)
	}
	i.wait.RecordDuration(ctx, time.Since(start),
		telemetry.AttrLockBackend.String(i.backend),
		telemetry.AttrLockOutcome.String(outcome),
	)
	return unlock, err
}

var _ shared.Locker = (*Instrumented)(nil)
