// Package cache holds the Redis client and the idempotency stores used to
// de-duplicate event handling.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepInterval = 5 * time.Minute

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewIdempotencyStore picks the store named by cfg. The redis store needs
// a client; without one it falls back to memory outside production.
func NewIdempotencyStore(cfg config.EventConfig, client *redis.Client, production bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if cfg.IdempotencyStore == "redis" {
		if client != nil {
			logger.Info("Using Redis idempotency store")
			return NewRedisIdempotencyStore(client, ""), nil
		}
		if production {
			return nil, fmt.Errorf("event.idempotency_store is redis but no Redis client is available")
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store")
	}
	return NewInMemoryIdempotencyStore(sweepInterval), nil
}
