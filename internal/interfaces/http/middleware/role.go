package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/interfaces/http/dto"
)

// RequireRole lets through actors holding any of the roles. Run after JWTAuth.
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	allowed := strings.Join(names, ", ")

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.CodeUnauthorized, "Authentication required", c.GetString(requestIDKey), nil))
			return
		}
		if !actor.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.CodeForbidden, "This action requires role "+allowed, c.GetString(requestIDKey),
				map[string]any{"role": string(actor.Role), "required": names}))
			return
		}
		c.Next()
	}
}
