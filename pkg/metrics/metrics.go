package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds performance metrics for the application
type Metrics struct {
	// Request metrics
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`

	// Response time metrics
	AverageResponseTime time.Duration `json:"average_response_time"`
	MinResponseTime     time.Duration `json:"min_response_time"`
	MaxResponseTime     time.Duration `json:"max_response_time"`

	// Cache metrics
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	// Upstream data-source metrics
	UpstreamCalls       int64         `json:"upstream_calls"`
	UpstreamFailures    int64         `json:"upstream_failures"`
	RateLimitRejections int64         `json:"rate_limit_rejections"`
	AverageUpstreamTime time.Duration `json:"average_upstream_time"`

	// Concurrency metrics
	ActiveRequests int64 `json:"active_requests"`

	// Internal fields for calculations
	totalResponseTime time.Duration
	totalUpstreamTime time.Duration
	mutex             sync.RWMutex
}

// Collector provides thread-safe metrics collection
type Collector struct {
	metrics   *Metrics
	startTime time.Time
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		metrics: &Metrics{
			MinResponseTime: time.Duration(^uint64(0) >> 1), // Max duration
		},
		startTime: time.Now(),
	}
}

// RecordRequest records a new request
func (c *Collector) RecordRequest() {
	atomic.AddInt64(&c.metrics.TotalRequests, 1)
	atomic.AddInt64(&c.metrics.ActiveRequests, 1)
}

// RecordRequestComplete records request completion
func (c *Collector) RecordRequestComplete(duration time.Duration, success bool) {
	atomic.AddInt64(&c.metrics.ActiveRequests, -1)

	if success {
		atomic.AddInt64(&c.metrics.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&c.metrics.FailedRequests, 1)
	}

	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	c.metrics.totalResponseTime += duration

	if duration < c.metrics.MinResponseTime {
		c.metrics.MinResponseTime = duration
	}
	if duration > c.metrics.MaxResponseTime {
		c.metrics.MaxResponseTime = duration
	}

	completed := atomic.LoadInt64(&c.metrics.SuccessfulRequests) + atomic.LoadInt64(&c.metrics.FailedRequests)
	if completed > 0 {
		c.metrics.AverageResponseTime = c.metrics.totalResponseTime / time.Duration(completed)
	}
}

// RecordCacheHit records a cache hit
func (c *Collector) RecordCacheHit() {
	atomic.AddInt64(&c.metrics.CacheHits, 1)
}

// RecordCacheMiss records a cache miss
func (c *Collector) RecordCacheMiss() {
	atomic.AddInt64(&c.metrics.CacheMisses, 1)
}

// RecordUpstreamCall records an outbound call to the data source
func (c *Collector) RecordUpstreamCall(duration time.Duration, success bool) {
	atomic.AddInt64(&c.metrics.UpstreamCalls, 1)
	if !success {
		atomic.AddInt64(&c.metrics.UpstreamFailures, 1)
	}

	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	c.metrics.totalUpstreamTime += duration
	calls := atomic.LoadInt64(&c.metrics.UpstreamCalls)
	if calls > 0 {
		c.metrics.AverageUpstreamTime = c.metrics.totalUpstreamTime / time.Duration(calls)
	}
}

// RecordRateLimitRejection records an admission denied before any call was made
func (c *Collector) RecordRateLimitRejection() {
	atomic.AddInt64(&c.metrics.RateLimitRejections, 1)
}

// GetMetrics returns a snapshot of current metrics
func (c *Collector) GetMetrics() *Metrics {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()

	return &Metrics{
		TotalRequests:       atomic.LoadInt64(&c.metrics.TotalRequests),
		SuccessfulRequests:  atomic.LoadInt64(&c.metrics.SuccessfulRequests),
		FailedRequests:      atomic.LoadInt64(&c.metrics.FailedRequests),
		AverageResponseTime: c.metrics.AverageResponseTime,
		MinResponseTime:     c.metrics.MinResponseTime,
		MaxResponseTime:     c.metrics.MaxResponseTime,
		CacheHits:           atomic.LoadInt64(&c.metrics.CacheHits),
		CacheMisses:         atomic.LoadInt64(&c.metrics.CacheMisses),
		UpstreamCalls:       atomic.LoadInt64(&c.metrics.UpstreamCalls),
		UpstreamFailures:    atomic.LoadInt64(&c.metrics.UpstreamFailures),
		RateLimitRejections: atomic.LoadInt64(&c.metrics.RateLimitRejections),
		AverageUpstreamTime: c.metrics.AverageUpstreamTime,
		ActiveRequests:      atomic.LoadInt64(&c.metrics.ActiveRequests),
	}
}

// GetCacheHitRatio returns the cache hit ratio as a percentage
func (c *Collector) GetCacheHitRatio() float64 {
	hits := atomic.LoadInt64(&c.metrics.CacheHits)
	misses := atomic.LoadInt64(&c.metrics.CacheMisses)

	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// GetSuccessRate returns the request success rate as a percentage
func (c *Collector) GetSuccessRate() float64 {
	success := atomic.LoadInt64(&c.metrics.SuccessfulRequests)
	failed := atomic.LoadInt64(&c.metrics.FailedRequests)

	total := success + failed
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}

// GetUptime returns how long the collector has been running
func (c *Collector) GetUptime() time.Duration {
	return time.Since(c.startTime)
}
