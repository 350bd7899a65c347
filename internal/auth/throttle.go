// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a per-key token bucket. Accounts use it to cap verification
// and reset emails and OTP guesses independently of the per-IP limiter.
type Throttle struct {
	limiters map[string]*throttleEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

type throttleEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewThrottle allows n events per window per key, all usable at once.
func NewThrottle(n int, window time.Duration) *Throttle {
	if n < 1 {
		n = 1
	}
	return &Throttle{
		limiters: make(map[string]*throttleEntry),
		rate:     rate.Every(window / time.Duration(n)),
		burst:    n,
		idle:     window,
	}
}

// Allow consumes one event for key.
func (t *Throttle) Allow(key string) bool {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter.AllowN(now, 1)
}

// Reset forgets key, e.g. after a successful verification.
func (t *Throttle) Reset(key string) {
	t.mu.Lock()
	delete(t.limiters, key)
	t.mu.Unlock()
}

// Cleanup drops keys idle for a full window; a fresh bucket is equivalent
// to a refilled one by then. Returns the number removed.
func (t *Throttle) Cleanup() int {
	threshold := time.Now().Add(-t.idle)
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, entry := range t.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(t.limiters, key)
			removed++
		}
	}
	return removed
}

func (t *Throttle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}
