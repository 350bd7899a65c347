// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package authz

import (
	"testing"
	"time"
)

func newTestEnforcer(t *testing.T, cfg *EnforcerConfig) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEmbeddedPolicy(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t, nil)

	tests := []struct {
		role   string
		path   string
		action string
		want   bool
	}{
		{"user", "/api/v1/auth/me", ActionRead, true},
		{"user", "/api/v1/cart", ActionRead, true},
		{"user", "/api/v1/cart", ActionDelete, true},
		{"user", "/api/v1/cart", ActionWrite, false},
		{"user", "/api/v1/cart/items", ActionWrite, true},
		{"user", "/api/v1/cart/items/abc", ActionDelete, true},
		{"user", "/api/v1/orders", ActionRead, true},
		{"user", "/api/v1/orders/checkout", ActionWrite, true},
		{"user", "/api/v1/orders/o1", ActionDelete, false},
		{"user", "/api/v1/payments/start-payment", ActionWrite, true},
		{"user", "/api/v1/payments/status/cs_1", ActionRead, true},
		{"user", "/api/v1/admin/orders", ActionRead, false},
		{"user", "/api/v1/admin/email-queue/clear", ActionWrite, false},
		{"admin", "/api/v1/admin/orders", ActionRead, true},
		{"admin", "/api/v1/admin/venues/v1", ActionDelete, true},
		{"admin", "/api/v1/admin/email-queue/clear", ActionWrite, true},
		{"admin", "/api/v1/cart/items", ActionWrite, true},
		{"admin", "/api/v1/orders/o1", ActionRead, true},
		{"", "/api/v1/cart", ActionRead, false},
		{"guest", "/api/v1/orders", ActionRead, false},
		{"user", "/api/v1/cartography", ActionRead, false},
	}
	for _, tt := range tests {
		got, err := e.Enforce(tt.role, tt.path, tt.action)
		if err != nil {
			t.Fatalf("Enforce(%q, %q, %q) error = %v", tt.role, tt.path, tt.action, err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%q, %q, %q) = %v, want %v", tt.role, tt.path, tt.action, got, tt.want)
		}
	}
}

func TestCustomPolicy(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t, &EnforcerConfig{Policy: "p, auditor, /api/v1/admin/orders, ^read$\n"})
	if ok, _ := e.Enforce("auditor", "/api/v1/admin/orders", ActionRead); !ok {
		t.Error("auditor denied read")
	}
	if ok, _ := e.Enforce("admin", "/api/v1/admin/orders", ActionRead); ok {
		t.Error("custom policy should replace the embedded one")
	}
}

func TestMalformedPolicy(t *testing.T) {
	t.Parallel()

	for _, policy := range []string{
		"p, user, /api/v1/cart",
		"g, admin",
		"x, user, /a, read",
	} {
		if _, err := NewEnforcer(&EnforcerConfig{Policy: policy}); err == nil {
			t.Errorf("NewEnforcer(%q) expected error", policy)
		}
	}
}

func TestDecisionCache(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t, &EnforcerConfig{CacheTTL: time.Hour})
	for i := 0; i < 3; i++ {
		if ok, _ := e.Enforce("user", "/api/v1/cart", ActionRead); !ok {
			t.Fatal("user denied cart read")
		}
	}
	if e.cache.size() != 1 {
		t.Errorf("cache size = %d, want 1", e.cache.size())
	}
	if n := e.cache.sweep(time.Now().Add(2 * time.Hour)); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}

	uncached := newTestEnforcer(t, &EnforcerConfig{})
	if uncached.cache != nil {
		t.Error("zero TTL should disable the cache")
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"GET":     ActionRead,
		"HEAD":    ActionRead,
		"OPTIONS": ActionRead,
		"POST":    ActionWrite,
		"PUT":     ActionWrite,
		"PATCH":   ActionWrite,
		"DELETE":  ActionDelete,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
