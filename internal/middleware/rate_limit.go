package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimitMiddleware creates a per-IP rate limiting middleware allowing
// requestsPerMinute requests per minute.
func NewRateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	return NewRateLimitMiddlewareWithConfig(int64(requestsPerMinute), time.Minute)
}

// NewRateLimitMiddlewareWithConfig creates a rate limiting middleware with a custom period
func NewRateLimitMiddlewareWithConfig(limit int64, period time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance)
}
