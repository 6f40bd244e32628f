package services

import (
	"context"
	"time"
)

// HealthStatus represents the health status of a service
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck represents a health check result
type HealthCheck struct {
	Service      string        `json:"service"`
	Status       HealthStatus  `json:"status"`
	Message      string        `json:"message,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

// UpstreamHealthChecker probes the external market-data source
type UpstreamHealthChecker struct {
	source MarketDataSource
}

// NewUpstreamHealthChecker creates a health checker over the data source
func NewUpstreamHealthChecker(source MarketDataSource) *UpstreamHealthChecker {
	return &UpstreamHealthChecker{source: source}
}

// CheckHealth probes the data source once
func (hc *UpstreamHealthChecker) CheckHealth(ctx context.Context) *HealthCheck {
	start := time.Now()
	err := hc.source.IsHealthy(ctx)
	elapsed := time.Since(start)

	check := &HealthCheck{
		Service:      "market_data",
		Status:       HealthStatusHealthy,
		ResponseTime: elapsed,
		Timestamp:    time.Now(),
	}

	if err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = err.Error()
	} else if elapsed > 2*time.Second {
		check.Status = HealthStatusDegraded
		check.Message = "slow response from data source"
	}

	return check
}
