package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys set by JWTAuth
const (
	ClaimsKey    = "jwt_claims"
	actorKey     = "actor"
	bearerPrefix = "Bearer "
)

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Service   *auth.JWTService
	Blacklist auth.TokenBlacklist // optional
	Logger    *zap.Logger
}

// JWTAuth authenticates the bearer token and stores the actor for handlers.
// Blacklist lookups fail open so a Redis outage does not lock everyone out.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortAuth(c, log, auth.ErrInvalidToken, "Missing bearer token")
			return
		}

		claims, err := cfg.Service.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			abortAuth(c, log, err, "Token validation failed")
			return
		}

		if cfg.Blacklist != nil {
			revocation, err := cfg.Blacklist.Check(c.Request.Context(), claims.ID, claims.UserID, claims.IssuedAt())
			switch {
			case err != nil:
				log.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.String("user_id", claims.UserID),
					zap.Error(err),
				)
			case revocation != auth.NotRevoked:
				abortAuth(c, log, auth.ErrTokenBlacklisted, revocation.String())
				return
			}
		}

		actor, err := claims.Actor()
		if err != nil {
			abortAuth(c, log, auth.ErrInvalidClaims, err.Error())
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(actorKey, actor)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Set(logger.GinRoleKey, claims.Role)

		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), claims.UserID, claims.Role))
		c.Next()
	}
}

func abortAuth(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.CodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.CodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.CodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrUnknownRole):
		message = "Token carries an unknown role"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, c.GetString(requestIDKey), nil))
}

// GetActor returns the authenticated actor
func GetActor(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
