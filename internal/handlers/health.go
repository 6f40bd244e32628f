package handlers

import (
	"net/http"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	upstreamChecker *services.UpstreamHealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(upstreamChecker *services.UpstreamHealthChecker) *HealthHandler {
	return &HealthHandler{upstreamChecker: upstreamChecker}
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    services.HealthStatus            `json:"status"`
	Timestamp time.Time                        `json:"timestamp"`
	Services  map[string]*services.HealthCheck `json:"services"`
}

// GetHealth returns the overall health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	upstream := h.upstreamChecker.CheckHealth(c.Request.Context())

	response := HealthResponse{
		Status:    upstream.Status,
		Timestamp: time.Now(),
		Services: map[string]*services.HealthCheck{
			"market_data": upstream,
		},
	}

	statusCode := http.StatusOK
	if upstream.Status == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetLiveness returns a simple liveness check
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// GetReadiness returns readiness status. The service can still answer from
// cache when the upstream is down, so degraded upstream does not fail it.
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	upstream := h.upstreamChecker.CheckHealth(c.Request.Context())

	if upstream.Status == services.HealthStatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"message":   "market data source not available",
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}
