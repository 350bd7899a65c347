// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package auth

import (
	"testing"
	"time"
)

func TestThrottleAllowsBurstPerKey(t *testing.T) {
	t.Parallel()

	th := NewThrottle(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !th.Allow("a@example.com") {
			t.Fatalf("event %d denied, want allowed", i+1)
		}
	}
	if th.Allow("a@example.com") {
		t.Error("fourth event allowed, want denied")
	}
	if !th.Allow("b@example.com") {
		t.Error("other key denied")
	}

	th.Reset("a@example.com")
	if !th.Allow("a@example.com") {
		t.Error("key denied after Reset")
	}
}

func TestThrottleCleanup(t *testing.T) {
	t.Parallel()

	th := NewThrottle(1, time.Millisecond)
	th.Allow("a")
	th.Allow("b")
	time.Sleep(5 * time.Millisecond)
	if n := th.Cleanup(); n != 2 {
		t.Errorf("Cleanup() = %d, want 2", n)
	}
	if th.size() != 0 {
		t.Errorf("size after cleanup = %d", th.size())
	}
}

func TestThrottleMinimumOne(t *testing.T) {
	t.Parallel()

	th := NewThrottle(0, time.Hour)
	if !th.Allow("k") {
		t.Error("first event denied")
	}
	if th.Allow("k") {
		t.Error("second event allowed with a limit of one")
	}
}
