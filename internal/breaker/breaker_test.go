// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/weddingbook/internal/metrics"
)

var errRemote = errors.New("remote unavailable")

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	b := New[int]("test-opens", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, errRemote }); !errors.Is(err, errRemote) {
			t.Fatalf("call %d: err = %v, want remote error", i, err)
		}
	}
	if got := b.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	called := false
	_, err := b.Execute(func() (int, error) { called = true; return 1, nil })
	if !IsOpen(err) {
		t.Errorf("expected open-state rejection, got %v", err)
	}
	if called {
		t.Error("guarded call ran while circuit open")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-opens")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-opens", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestBreakerIgnoresSuccessfulClassification(t *testing.T) {
	t.Parallel()

	errInput := errors.New("bad input")
	b := New[string]("test-classify", Settings{
		MinRequests:  2,
		FailureRatio: 0.5,
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errInput) },
	})

	for i := 0; i < 5; i++ {
		_, _ = b.Execute(func() (string, error) { return "", errInput })
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}

	v, err := b.Execute(func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Errorf("Execute() = %q, %v", v, err)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	b := New[struct{}]("test-name", Settings{})
	if b.Name() != "test-name" || b.State() != "closed" {
		t.Errorf("Name/State = %s/%s", b.Name(), b.State())
	}
}
