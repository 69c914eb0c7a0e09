package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the state of the database and optional dependencies
type HealthHandler struct {
	version  string
	required map[string]HealthCheck
	optional map[string]HealthCheck
}

// NewHealthHandler creates a health handler. Required checks fail the probe with 503;
// optional checks are reported as degraded.
func NewHealthHandler(version string, required, optional map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, required: required, optional: optional}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "healthy"
	components := gin.H{}

	for name, check := range h.required {
		if err := check(ctx); err != nil {
			components[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
			continue
		}
		components[name] = "healthy"
	}

	for name, check := range h.optional {
		if err := check(ctx); err != nil {
			components[name] = "degraded: " + err.Error()
			if overall == "healthy" {
				overall = "degraded"
			}
			continue
		}
		components[name] = "healthy"
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
		"version":    h.version,
		"timestamp":  time.Now().Unix(),
	})
}
