package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vietsaga/vietsaga/pkg/id"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID tags each request with a ULID, honoring an inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.New()
		}
		c.Header(HeaderXRequestID, requestID)
		c.Set(requestIDKey, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID from the gin context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
