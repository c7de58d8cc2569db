package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookshare/internal/config"
)

// RateLimitConfig controls how many failed logins a client may make for one
// email before it is locked out.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows 5 failures per 15 minutes and locks for 30.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// FromConfig builds a RateLimitConfig from the auth configuration. Unset values
// keep their defaults.
func FromConfig(cfg config.Auth) RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	}.withDefaults()
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	def := DefaultRateLimitConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = def.WindowDuration
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = def.LockoutDuration
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}

type loginKey struct {
	ip    string
	email string
}

type failures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

func (f *failures) locked(now time.Time) bool {
	return now.Before(f.lockedUntil)
}

// RateLimiter counts failed logins per client IP and email. Once MaxAttempts
// failures land inside one window the pair is locked for LockoutDuration.
type RateLimiter struct {
	cfg  RateLimitConfig
	now  func() time.Time
	stop chan struct{}
	once sync.Once

	mu      sync.Mutex
	entries map[loginKey]*failures
}

// NewRateLimiter starts a limiter with a background sweep of stale entries.
// Call Stop to end the sweep.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		stop:    make(chan struct{}),
		entries: make(map[loginKey]*failures),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func keyFor(ip, email string) loginKey {
	return loginKey{ip: ip, email: strings.ToLower(strings.TrimSpace(email))}
}

// Allow reports whether a login attempt may proceed and, if not, how long the
// caller has to wait.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.entries[keyFor(ip, email)]
	if !ok {
		return true, 0
	}
	if f.locked(now) {
		return false, f.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed login. It returns true with the lockout length
// when this failure locks the pair.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	now := rl.now()
	key := keyFor(ip, email)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.entries[key]
	if !ok || (!f.locked(now) && now.Sub(f.windowStart) > rl.cfg.WindowDuration) {
		f = &failures{windowStart: now}
		rl.entries[key] = f
	}

	f.count++
	if f.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets earlier failures for the pair.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.entries, keyFor(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep drops entries whose window has passed and that are not locked.
func (rl *RateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, f := range rl.entries {
		if !f.locked(now) && now.Sub(f.windowStart) > rl.cfg.WindowDuration {
			delete(rl.entries, key)
		}
	}
}
