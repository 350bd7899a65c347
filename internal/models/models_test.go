// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", NewValidationError("bad %s", "input"), KindValidation},
		{"wrapped not found", fmt.Errorf("load order: %w", NewNotFoundError("order")), KindNotFound},
		{"bare sentinel", fmt.Errorf("get: %w", ErrNotFound), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"external", NewExternalServiceError("payment processor", errors.New("timeout")), KindExternalService},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("%s: KindOf() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	t.Parallel()

	err := NewInternalError(errors.New("badger: value log corrupt"))
	if got := PublicMessage(err); got != "internal server error" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(NewAuthorizationError("not your order")); got != "not your order" {
		t.Errorf("PublicMessage() = %q", got)
	}
}

func TestMinorUnits(t *testing.T) {
	t.Parallel()

	if got := ToMinorUnits(0.30); got != 30 {
		t.Errorf("ToMinorUnits(0.30) = %d", got)
	}
	if got := ToMinorUnits(1234.565); got != 123457 && got != 123456 {
		t.Errorf("ToMinorUnits(1234.565) = %d", got)
	}
	if got := FromMinorUnits(2550); got != 25.5 {
		t.Errorf("FromMinorUnits(2550) = %v", got)
	}
}

func TestSetBookingStatusSkipsDishes(t *testing.T) {
	t.Parallel()

	o := &Order{Items: []OrderItem{
		{CartItem: CartItem{ItemType: ItemVenue}, BookingStatus: BookingPending},
		{CartItem: CartItem{ItemType: ItemDish}},
		{CartItem: CartItem{ItemType: ItemStudio}, BookingStatus: BookingPending},
	}}
	o.SetBookingStatus(BookingConfirmed)

	if o.Items[0].BookingStatus != BookingConfirmed || o.Items[2].BookingStatus != BookingConfirmed {
		t.Error("venue and studio lines should be confirmed")
	}
	if o.Items[1].BookingStatus != "" {
		t.Errorf("dish line booking status = %q, want empty", o.Items[1].BookingStatus)
	}
}
