package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "RequestID"
)

// RequestID adds a unique request ID to each request, reusing the caller's
// X-Request-ID when one is supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "" outside of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
