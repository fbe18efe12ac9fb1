// Package handlers contains HTTP request handlers for the template service.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/programmernewbie/multimodule-template/internal/metrics"
	"github.com/programmernewbie/multimodule-template/internal/middleware"
	"github.com/programmernewbie/multimodule-template/pkg/greeting"
)

// ResponseTypeAsync marks responses produced by the async greeting
const ResponseTypeAsync = "async"

// WelcomeResponse represents the welcome response
type WelcomeResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// AsyncWelcomeResponse represents the async welcome response
type AsyncWelcomeResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// ErrorResponse represents an error returned to the client
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ExampleHandler exposes the greeting service over HTTP
type ExampleHandler struct {
	greeter greeting.Greeter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExampleHandler creates a new example handler
func NewExampleHandler(greeter greeting.Greeter) *ExampleHandler {
	return &ExampleHandler{
		greeter: greeter,
		now:     time.Now,
	}
}

// WithMetrics sets the collectors used to count greetings
func (h *ExampleHandler) WithMetrics(m *metrics.Metrics) *ExampleHandler {
	h.metrics = m
	return h
}

// Welcome handles GET /welcome?name=
func (h *ExampleHandler) Welcome(c *gin.Context) {
	msg := h.greeter.Greet(nameParam(c))
	h.metrics.ObserveGreeting(metrics.VariantSync)

	c.JSON(http.StatusOK, WelcomeResponse{
		Message:   msg,
		Timestamp: h.timestamp(),
	})
}

// WelcomeAsync handles GET /welcome-async?name=. The simulated delay is
// bound to the request context, so a client that disconnects stops the wait.
func (h *ExampleHandler) WelcomeAsync(c *gin.Context) {
	msg, err := h.greeter.GreetAsync(c.Request.Context(), nameParam(c))
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "Request cancelled before greeting completed",
			RequestID: middleware.GetRequestID(c),
		})
		return
	}
	h.metrics.ObserveGreeting(metrics.VariantAsync)

	c.JSON(http.StatusOK, AsyncWelcomeResponse{
		Message:   msg,
		Timestamp: h.timestamp(),
		Type:      ResponseTypeAsync,
	})
}

// nameParam binds the optional name query parameter. Absent and empty both
// fall back to the default name.
func nameParam(c *gin.Context) string {
	if name := c.Query("name"); name != "" {
		return name
	}
	return greeting.DefaultName
}

func (h *ExampleHandler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}
