package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db      Pinger
	driver  string
	version string
}

// NewHealthHandler creates a new health handler. db may be nil for the memory driver.
func NewHealthHandler(db Pinger, driver, version string) *HealthHandler {
	return &HealthHandler{db: db, driver: driver, version: version}
}

// Live handles liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": gin.H{"database": "unhealthy: " + err.Error()},
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": gin.H{"database": "healthy"},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":     "paybatch",
		"version": h.version,
		"storage": h.driver,
	})
}
