package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBlacklist runs the behaviour both implementations share
func exerciseBlacklist(t *testing.T, blacklist auth.TokenBlacklist) {
	t.Helper()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Hour)

	check := func(jti, userID string, issuedAt time.Time) auth.Revocation {
		t.Helper()
		r, err := blacklist.Check(ctx, jti, userID, issuedAt)
		require.NoError(t, err)
		return r
	}

	assert.Equal(t, auth.NotRevoked, check("jti-1", "user-1", issuedBefore))

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-1", time.Hour))
	assert.Equal(t, auth.TokenRevoked, check("jti-1", "user-1", issuedBefore))
	assert.Equal(t, auth.NotRevoked, check("jti-2", "user-1", issuedBefore))

	require.NoError(t, blacklist.RevokeSessions(ctx, "user-1", time.Hour))
	assert.Equal(t, auth.SessionsRevoked, check("jti-2", "user-1", issuedBefore))
	assert.Equal(t, auth.SessionsRevoked, check("", "user-1", issuedBefore))
	assert.Equal(t, auth.TokenRevoked, check("jti-1", "user-1", issuedBefore))
	assert.Equal(t, auth.NotRevoked, check("jti-2", "user-1", time.Now().Add(time.Hour)))
	assert.Equal(t, auth.NotRevoked, check("jti-2", "user-2", issuedBefore))
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	exerciseBlacklist(t, auth.NewInMemoryTokenBlacklist())
}

func TestInMemoryTokenBlacklist_EntriesExpire(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.RevokeToken(ctx, "short", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	r, err := blacklist.Check(ctx, "short", "user-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, auth.NotRevoked, r)
}

func TestRevocation_String(t *testing.T) {
	assert.Equal(t, "not revoked", auth.NotRevoked.String())
	assert.Equal(t, "token revoked", auth.TokenRevoked.String())
	assert.Equal(t, "sessions revoked", auth.SessionsRevoked.String())
}
