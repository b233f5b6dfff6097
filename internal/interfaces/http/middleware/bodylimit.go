package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes; 0 turns the cap off.
// Instrument scans never pass through here, they go straight to object
// storage via presigned URLs.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		switch {
		case c.Request.Body == nil || c.Request.Body == http.NoBody:
		case c.Request.ContentLength > maxBytes:
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.CodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(requestIDKey),
				map[string]any{"max_bytes": maxBytes},
			))
			return
		default:
			// unknown or lying Content-Length: fail on read
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
