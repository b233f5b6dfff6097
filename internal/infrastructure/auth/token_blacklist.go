package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocation says why a token may no longer be used
type Revocation int

const (
	NotRevoked Revocation = iota
	// TokenRevoked: the jti itself was revoked, usually by logout
	TokenRevoked
	// SessionsRevoked: every token the user held at some instant was cut off,
	// e.g. after a role change
	SessionsRevoked
)

func (r Revocation) String() string {
	switch r {
	case TokenRevoked:
		return "token revoked"
	case SessionsRevoked:
		return "sessions revoked"
	default:
		return "not revoked"
	}
}

// TokenBlacklist revokes access tokens before they expire
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error
	// Check looks up both the jti and the user's cut-off. An empty jti
	// only checks the cut-off.
	Check(ctx context.Context, jti, userID string, issuedAt time.Time) (Revocation, error)
}

func verdict(jtiRevoked bool, cutoff time.Time, issuedAt time.Time) Revocation {
	switch {
	case jtiRevoked:
		return TokenRevoked
	case !cutoff.IsZero() && !issuedAt.After(cutoff):
		return SessionsRevoked
	default:
		return NotRevoked
	}
}

const blacklistPrefix = "landerp:token:blacklist:"

func jtiKey(jti string) string     { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

// RedisTokenBlacklist keeps revocations in Redis so every instance sees them
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeSessions stores the cut-off in unix seconds, matching the
// precision of the iat claim
func (b *RedisTokenBlacklist) RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

// Check reads both keys in one round trip
func (b *RedisTokenBlacklist) Check(ctx context.Context, jti, userID string, issuedAt time.Time) (Revocation, error) {
	var exists *redis.IntCmd
	var cutoffCmd *redis.StringCmd
	_, err := b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if jti != "" {
			exists = pipe.Exists(ctx, jtiKey(jti))
		}
		cutoffCmd = pipe.Get(ctx, userKey(userID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return NotRevoked, fmt.Errorf("check token blacklist: %w", err)
	}

	jtiRevoked := exists != nil && exists.Val() > 0
	var cutoff time.Time
	if raw, err := cutoffCmd.Result(); err == nil {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NotRevoked, fmt.Errorf("parse session cut-off %q: %w", raw, err)
		}
		cutoff = time.Unix(secs, 0)
	}
	return verdict(jtiRevoked, cutoff, issuedAt.Truncate(time.Second)), nil
}

// InMemoryTokenBlacklist is a single-process blacklist for dev and tests
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // jti -> expiry
	cutoffs map[string]time.Time // user id -> cut-off
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:  make(map[string]time.Time),
		cutoffs: make(map[string]time.Time),
	}
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) RevokeSessions(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cutoffs[userID] = time.Now()
	return nil
}

func (b *InMemoryTokenBlacklist) Check(_ context.Context, jti, userID string, issuedAt time.Time) (Revocation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	jtiRevoked := false
	if expiry, ok := b.tokens[jti]; ok && jti != "" {
		if time.Now().After(expiry) {
			delete(b.tokens, jti)
		} else {
			jtiRevoked = true
		}
	}
	return verdict(jtiRevoked, b.cutoffs[userID], issuedAt), nil
}
