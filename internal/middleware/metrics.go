package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/programmernewbie/multimodule-template/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the registry in the Prometheus text format. A
// non-empty token requires "Authorization: Bearer <token>".
func MetricsHandler(m *metrics.Metrics, token string) gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})

	return func(c *gin.Context) {
		if token != "" {
			provided, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}
