package api

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMin: 3})
	defer rl.Stop()

	key := "sub:dashboard"

	for i := 0; i < 3; i++ {
		if !rl.Allow(key, 3) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow(key, 3) {
		t.Fatal("4th request should be denied")
	}
}

func TestRateLimiter_DifferentKeys(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMin: 1})
	defer rl.Stop()

	if !rl.Allow("sub:alice", 1) {
		t.Fatal("first request for alice should be allowed")
	}
	if rl.Allow("sub:alice", 1) {
		t.Fatal("second request for alice should be denied")
	}
	if !rl.Allow("sub:bob", 1) {
		t.Fatal("second caller should have its own window")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMin: 1})
	defer rl.Stop()

	key := "ip:10.0.0.1"

	if !rl.Allow(key, 1) {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow(key, 1) {
		t.Fatal("second request should be denied within same window")
	}

	rl.mu.Lock()
	rl.windows[key].expiresAt = time.Now().Add(-time.Second)
	rl.mu.Unlock()

	if !rl.Allow(key, 1) {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: false, RequestsPerMin: 1})
	defer rl.Stop()

	for i := 0; i < 10; i++ {
		if !rl.Allow("ip:127.0.0.1", 1) {
			t.Fatalf("request %d should be allowed when disabled", i+1)
		}
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMin: 5})
	defer rl.Stop()

	rl.Allow("ip:1.1.1.1", 5)
	rl.Allow("ip:2.2.2.2", 5)

	rl.mu.Lock()
	rl.windows["ip:1.1.1.1"].expiresAt = time.Now().Add(-time.Second)
	rl.mu.Unlock()

	rl.sweep(time.Now())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.windows["ip:1.1.1.1"]; ok {
		t.Fatal("expired window should be removed")
	}
	if _, ok := rl.windows["ip:2.2.2.2"]; !ok {
		t.Fatal("live window should be kept")
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimitConfig())
	rl.Stop()
	rl.Stop()
}
