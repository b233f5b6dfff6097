package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
)

// Profiling labels the profiling samples of each request with its route
// pattern, method, resource and the caller's role. Mount it after JWTAuth.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:   c.Request.Method,
			telemetry.ProfilingLabelRoute:    route,
			telemetry.ProfilingLabelResource: resourceOf(route),
			telemetry.ProfilingLabelRole:     c.GetString(logger.GinRoleKey),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf returns the first static segment after the API version,
// e.g. "/api/v1/finance/receipts/:id" -> "finance"
func resourceOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part):
			continue
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			return ""
		default:
			return part
		}
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	return strings.Trim(s[1:], "0123456789") == ""
}
