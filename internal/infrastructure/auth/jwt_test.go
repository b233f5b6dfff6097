package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		Issuer:                "landerp-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func hofActor(t *testing.T) shared.Actor {
	t.Helper()
	actor, err := shared.NewActor(uuid.New(), "Farah Siddiqui", shared.RoleHOF)
	require.NoError(t, err)
	return actor
}

func sign(t *testing.T, claims *auth.Claims, secret string, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID, role string) *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "landerp-test",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: userID,
		Role:   role,
	}
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newService(t)
	actor := hofActor(t)

	token, expiresAt, err := svc.IssueAccessToken(actor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID.String(), claims.UserID)
	assert.Equal(t, "HOF", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)
	assert.False(t, claims.IssuedAt().IsZero())

	got, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestJWTService_ValidateAccessToken_Rejections(t *testing.T) {
	svc := newService(t)
	userID := uuid.NewString()

	expired := validClaims(userID, "ADMIN")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	notYet := validClaims(userID, "ADMIN")
	notYet.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	wrongIssuer := validClaims(userID, "ADMIN")
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not.a.jwt", auth.ErrInvalidToken},
		{"wrong secret", sign(t, validClaims(userID, "ADMIN"), "another-secret", jwt.SigningMethodHS256), auth.ErrInvalidToken},
		{"wrong algorithm", sign(t, validClaims(userID, "ADMIN"), testSecret, jwt.SigningMethodHS512), auth.ErrInvalidToken},
		{"expired", sign(t, expired, testSecret, jwt.SigningMethodHS256), auth.ErrExpiredToken},
		{"not yet valid", sign(t, notYet, testSecret, jwt.SigningMethodHS256), auth.ErrTokenNotYetValid},
		{"wrong issuer", sign(t, wrongIssuer, testSecret, jwt.SigningMethodHS256), auth.ErrInvalidClaims},
		{"missing user", sign(t, validClaims("", "ADMIN"), testSecret, jwt.SigningMethodHS256), auth.ErrMissingUserID},
		{"unknown role", sign(t, validClaims(userID, "CASHIER"), testSecret, jwt.SigningMethodHS256), auth.ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTService_EmptyIssuerAcceptsAny(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{Secret: testSecret})
	assert.Equal(t, time.Hour, svc.AccessTokenExpiration())

	claims := validClaims(uuid.NewString(), "ACCOUNT_MANAGER")
	claims.Issuer = "identity.example.com"
	_, err := svc.ValidateAccessToken(sign(t, claims, testSecret, jwt.SigningMethodHS256))
	assert.NoError(t, err)
}

func TestClaims_ActorRejectsMalformedUserID(t *testing.T) {
	claims := validClaims("user-42", "ADMIN")
	_, err := claims.Actor()
	assert.ErrorIs(t, err, auth.ErrMissingUserID)

	expired := validClaims(uuid.NewString(), "ADMIN")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, expired.RemainingTTL())
	assert.Zero(t, (&auth.Claims{}).RemainingTTL())
}
