package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int) (*Limiter, *time.Time) {
	l := New(limit, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterCeiling(t *testing.T) {
	l, _ := newTestLimiter(10)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(), "admission %d should succeed", i+1)
	}
	assert.False(t, l.Allow(), "admission past the ceiling should be denied")
	assert.Equal(t, 0, l.Remaining())
}

func TestLimiterSlidingWindow(t *testing.T) {
	l, now := newTestLimiter(2)

	assert.True(t, l.Allow())
	*now = now.Add(30 * time.Second)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	// First request leaves the window; one slot opens
	*now = now.Add(31 * time.Second)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	// Full window elapses; budget resets completely
	*now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow())
	assert.Equal(t, 1, l.Remaining())
}

func TestLimiterRejectionNotRecorded(t *testing.T) {
	l, now := newTestLimiter(1)

	assert.True(t, l.Allow())
	for i := 0; i < 5; i++ {
		assert.False(t, l.Allow())
	}

	// Denied attempts consumed nothing; budget returns when the one
	// recorded request ages out
	*now = now.Add(61 * time.Second)
	assert.True(t, l.Allow())
}

func TestKeyedLimiterIndependentBudgets(t *testing.T) {
	kl := NewKeyed(1, time.Minute)

	assert.True(t, kl.Allow("10.0.0.1"))
	assert.False(t, kl.Allow("10.0.0.1"))
	assert.True(t, kl.Allow("10.0.0.2"), "second key has its own budget")

	assert.Equal(t, 2, kl.Size())
}

func TestKeyedLimiterCleanup(t *testing.T) {
	kl := NewKeyed(5, 10*time.Millisecond)

	kl.Allow("10.0.0.1")
	time.Sleep(20 * time.Millisecond)
	kl.Cleanup()

	assert.Equal(t, 0, kl.Size())
}
