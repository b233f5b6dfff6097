package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "landerp:lock:"

// ErrLockTimeout is returned when a key stays held until the context ends
var ErrLockTimeout = errors.New("timed out waiting for lock")

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockerConfig configures a RedisLocker
type RedisLockerConfig struct {
	// TTL bounds how long a crashed holder can block a key
	TTL time.Duration
	// RetryDelay is the pause between SET NX attempts
	RetryDelay time.Duration
}

// RedisLocker is a Locker shared by every API instance. Each key is a
// SET NX PX entry holding a random token; release only deletes entries
// whose token matches.
type RedisLocker struct {
	client redis.UniversalClient
	config RedisLockerConfig
	logger *zap.Logger
}

// NewRedisLocker creates a Redis-backed Locker
func NewRedisLocker(client redis.UniversalClient, config RedisLockerConfig, logger *zap.Logger) *RedisLocker {
	if config.TTL <= 0 {
		config.TTL = 30 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 25 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, config: config, logger: logger}
}

// Lock acquires every key in sorted order, polling until ctx ends
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := normalize(keys)
	token := uuid.NewString()
	held := make([]string, 0, len(ordered))

	for _, key := range ordered {
		if err := l.acquire(ctx, redisKeyPrefix+key, token); err != nil {
			l.release(held, token)
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		held = append(held, redisKeyPrefix+key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(held, token) })
	}, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.config.RetryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.config.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ErrLockTimeout
			}
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// release runs on a fresh context so a cancelled request still frees its keys
func (l *RedisLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		n, err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Int()
		switch {
		case err != nil:
			l.logger.Error("Failed to release lock", zap.String("key", keys[i]), zap.Error(err))
		case n == 0:
			l.logger.Warn("Lock expired before release", zap.String("key", keys[i]))
		}
	}
}

var _ shared.Locker = (*RedisLocker)(nil)
