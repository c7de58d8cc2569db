package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookshare/internal/config"
)

func TestRateLimiter_LocksAfterMaxAttempts(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxAttempts: 3, WindowDuration: time.Minute, LockoutDuration: time.Minute})
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		locked, _ := rl.RecordFailure("10.0.0.1", "reader@example.com")
		assert.False(t, locked)
		allowed, _ := rl.Allow("10.0.0.1", "reader@example.com")
		assert.True(t, allowed)
	}

	locked, retryAfter := rl.RecordFailure("10.0.0.1", "READER@example.com")
	assert.True(t, locked, "emails are compared case-insensitively")
	assert.Equal(t, time.Minute, retryAfter)

	allowed, _ := rl.Allow("10.0.0.1", "reader@example.com")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("10.0.0.2", "reader@example.com")
	assert.True(t, allowed, "other clients are unaffected")
}

func TestRateLimiter_SuccessResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Minute})
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "reader@example.com")
	rl.RecordSuccess("10.0.0.1", "reader@example.com")

	locked, _ := rl.RecordFailure("10.0.0.1", "reader@example.com")
	assert.False(t, locked)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter(cfg RateLimitConfig) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(cfg)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter_WindowExpiryResetsCount(t *testing.T) {
	rl, clock := newClockedLimiter(RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Hour})
	defer rl.Stop()

	locked, _ := rl.RecordFailure("10.0.0.1", "reader@example.com")
	assert.False(t, locked)

	clock.advance(2 * time.Minute)

	locked, _ = rl.RecordFailure("10.0.0.1", "reader@example.com")
	assert.False(t, locked, "the first failure fell out of the window")
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	rl, clock := newClockedLimiter(RateLimitConfig{MaxAttempts: 1, WindowDuration: time.Minute, LockoutDuration: 10 * time.Minute})
	defer rl.Stop()

	locked, _ := rl.RecordFailure("10.0.0.1", "reader@example.com")
	assert.True(t, locked)

	clock.advance(4 * time.Minute)
	allowed, retryAfter := rl.Allow("10.0.0.1", "reader@example.com")
	assert.False(t, allowed)
	assert.Equal(t, 6*time.Minute, retryAfter)

	clock.advance(7 * time.Minute)
	allowed, _ = rl.Allow("10.0.0.1", "reader@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_SweepKeepsLockedEntries(t *testing.T) {
	rl, clock := newClockedLimiter(RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Hour})
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "stale@example.com")
	rl.RecordFailure("10.0.0.2", "locked@example.com")
	rl.RecordFailure("10.0.0.2", "locked@example.com")

	clock.advance(5 * time.Minute)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.entries, 1)
	assert.Contains(t, rl.entries, keyFor("10.0.0.2", "locked@example.com"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestFromConfig_FillsDefaults(t *testing.T) {
	cfg := FromConfig(config.Auth{MaxLoginAttempts: 3})
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, DefaultRateLimitConfig().WindowDuration, cfg.WindowDuration)
	assert.Equal(t, DefaultRateLimitConfig().CleanupInterval, cfg.CleanupInterval)
}
