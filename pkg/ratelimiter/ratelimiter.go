package ratelimiter

import (
	"sync"
	"time"
)

// Limiter implements sliding-window admission control over a single budget.
// Only request timestamps within the trailing window count against the limit;
// a rejected request is not recorded and does not consume budget.
type Limiter struct {
	timestamps []time.Time
	mutex      sync.Mutex
	limit      int
	window     time.Duration
	now        func() time.Time
}

// New creates a new Limiter with the specified limit and window
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether a request is admitted right now and, if so, records
// it. The stale-drop, check and record happen under one lock so concurrent
// callers cannot race past the same admission check.
func (l *Limiter) Allow() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	l.evict(now)

	if len(l.timestamps) >= l.limit {
		return false
	}

	l.timestamps = append(l.timestamps, now)
	return true
}

// Remaining returns how many admissions are left in the current window
func (l *Limiter) Remaining() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.evict(l.now())
	remaining := l.limit - len(l.timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Limit returns the configured ceiling
func (l *Limiter) Limit() int {
	return l.limit
}

// ResetTime returns when the oldest recorded request leaves the window
func (l *Limiter) ResetTime() time.Time {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	l.evict(now)
	if len(l.timestamps) == 0 {
		return now
	}
	return l.timestamps[0].Add(l.window)
}

// evict drops timestamps older than the window. Caller must hold the lock.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.timestamps) && !l.timestamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[idx:]...)
	}
}

// KeyedLimiter tracks an independent sliding window per key (e.g. client IP)
type KeyedLimiter struct {
	limiters map[string]*Limiter
	mutex    sync.Mutex
	limit    int
	window   time.Duration
}

// NewKeyed creates a new KeyedLimiter with the specified limit and window
func NewKeyed(limit int, window time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*Limiter),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether the given key may make a request right now
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.get(key).Allow()
}

// Info returns the remaining budget and reset time for a key
func (kl *KeyedLimiter) Info(key string) (remaining int, resetTime time.Time) {
	l := kl.get(key)
	return l.Remaining(), l.ResetTime()
}

// Limit returns the configured per-key ceiling
func (kl *KeyedLimiter) Limit() int {
	return kl.limit
}

// Cleanup removes per-key windows that have fully elapsed
func (kl *KeyedLimiter) Cleanup() {
	kl.mutex.Lock()
	defer kl.mutex.Unlock()

	for key, l := range kl.limiters {
		l.mutex.Lock()
		l.evict(l.now())
		idle := len(l.timestamps) == 0
		l.mutex.Unlock()
		if idle {
			delete(kl.limiters, key)
		}
	}
}

// Size returns the number of tracked keys
func (kl *KeyedLimiter) Size() int {
	kl.mutex.Lock()
	defer kl.mutex.Unlock()

	return len(kl.limiters)
}

func (kl *KeyedLimiter) get(key string) *Limiter {
	kl.mutex.Lock()
	defer kl.mutex.Unlock()

	l, exists := kl.limiters[key]
	if !exists {
		l = New(kl.limit, kl.window)
		kl.limiters[key] = l
	}
	return l
}
