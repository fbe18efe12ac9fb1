package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs one structured line per request. Paths in skipPaths
// (matched on the registered route) are not logged.
func RequestLogger(log zerolog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if _, ok := skip[route]; ok {
			return
		}

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500 && !clientGone(c):
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}

// clientGone reports whether the request failed because the client
// disconnected, which is routine rather than a server fault.
func clientGone(c *gin.Context) bool {
	for _, e := range c.Errors {
		if errors.Is(e.Err, context.Canceled) {
			return true
		}
	}
	return false
}
