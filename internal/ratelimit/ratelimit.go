package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter implements a simple in-memory sliding window rate limiter
type Limiter struct {
	mu       sync.RWMutex
	counters map[string]*counter
	window   time.Duration
	max      int
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a new rate limiter with the specified window and max requests
func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
	}
	go l.cleanup()
	return l
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}

	if c.count >= l.max {
		return false
	}

	c.count++
	return true
}

// GetRemaining returns the number of remaining requests for the given key
func (l *Limiter) GetRemaining(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		return l.max
	}

	remaining := l.max - c.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup periodically removes expired counters
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, c := range l.counters {
			if now.After(c.expiresAt) {
				delete(l.counters, key)
			}
		}
		l.mu.Unlock()
	}
}

// Config sets the per-minute budgets of the rate limited endpoints.
type Config struct {
	LoginPerMinute  int `mapstructure:"login_per_minute"`
	UploadPerMinute int `mapstructure:"upload_per_minute"`
}

const (
	keyLogin  = "ip_login"
	keyUpload = "ip_upload"
)

// MultiKeyLimiter manages multiple rate limiters for different types of operations
type MultiKeyLimiter struct {
	limiters map[string]*Limiter
}

// NewMultiKeyLimiter creates a limiter; zero budgets fall back to defaults.
func NewMultiKeyLimiter(c Config) *MultiKeyLimiter {
	if c.LoginPerMinute <= 0 {
		c.LoginPerMinute = 10
	}
	if c.UploadPerMinute <= 0 {
		c.UploadPerMinute = 60
	}
	return &MultiKeyLimiter{
		limiters: map[string]*Limiter{
			keyLogin:  NewLimiter(time.Minute, c.LoginPerMinute),
			keyUpload: NewLimiter(time.Minute, c.UploadPerMinute),
		},
	}
}

// CheckLogin verifies if a login attempt is allowed from the given IP
func (m *MultiKeyLimiter) CheckLogin(ip string) error {
	if !m.limiters[keyLogin].Allow(ip) {
		return fmt.Errorf("too many login attempts from this IP address, please try again later")
	}
	return nil
}

// CheckUpload verifies if an upload batch is allowed from the given IP
func (m *MultiKeyLimiter) CheckUpload(ip string) error {
	if !m.limiters[keyUpload].Allow(ip) {
		return fmt.Errorf("too many uploads, please slow down")
	}
	return nil
}

// LoginRemaining returns remaining login attempts for the IP
func (m *MultiKeyLimiter) LoginRemaining(ip string) int {
	return m.limiters[keyLogin].GetRemaining(ip)
}
