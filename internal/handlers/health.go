package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// StatusUp is reported while the process is serving
	StatusUp = "UP"

	// ServiceName identifies this service in health responses
	ServiceName = "kotlin-multimodule-template"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health handles health check requests. It does not touch the greeting service.
func (h *ExampleHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  StatusUp,
		Service: ServiceName,
	})
}
