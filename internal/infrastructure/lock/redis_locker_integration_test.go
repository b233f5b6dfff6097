//go:build integration

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisLocker_Integration(t *testing.T) {
	client := newRedisClient(t)
	locker := NewRedisLocker(client, RedisLockerConfig{TTL: 5 * time.Second, RetryDelay: 5 * time.Millisecond}, zap.NewNop())

	t.Run("serializes the same key", func(t *testing.T) {
		var inside, violations atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				unlock, err := locker.Lock(ctx, "sale:1", "plot:1")
				if !assert.NoError(t, err) {
					return
				}
				if inside.Add(1) > 1 {
					violations.Add(1)
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				unlock()
			}()
		}
		wg.Wait()
		assert.Zero(t, violations.Load())
	})

	t.Run("times out while held", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), "receipt:1")
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "receipt:1")
		assert.ErrorIs(t, err, ErrLockTimeout)
	})

	t.Run("release leaves foreign tokens alone", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), "expense:1")
		require.NoError(t, err)

		// simulate expiry and takeover by another holder
		key := redisKeyPrefix + "expense:1"
		require.NoError(t, client.Set(context.Background(), key, "someone-else", time.Minute).Err())
		unlock()

		val, err := client.Get(context.Background(), key).Result()
		require.NoError(t, err)
		assert.Equal(t, "someone-else", val)
	})
}
