package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which (handler, event) pairs already ran so
// that a redelivered event does not notify a client twice.
type IdempotencyStore interface {
	// MarkProcessed returns false when key was already marked and has not expired
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls the deduplicating handler wrapper. A zero TTL
// falls back to one day.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}
