package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Locker serializes work on named keys. Implementations acquire multiple
// keys in a stable order so callers never deadlock on overlapping sets.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// LockKey builds a lock key such as "sale:<uuid>"
func LockKey(kind string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", kind, id.String())
}
