// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package payments is the boundary to the external payment processor.
//
// The order workflow only needs three things from a processor: create a
// hosted checkout session for an amount, read a session back, and turn a
// signed webhook delivery into a verified event. Amounts cross this
// boundary in minor units (cents).
package payments

import (
	"context"
	"errors"

	"github.com/tomtom215/weddingbook/internal/models"
)

// MinimumChargeMinor is the smallest online charge the processor accepts.
const MinimumChargeMinor int64 = 50

// Metadata keys stored on every checkout session.
const (
	MetaOrderID       = "orderId"
	MetaUserID        = "userId"
	MetaPaymentAmount = "paymentAmount"
)

// EventCheckoutCompleted is the only webhook event the workflow acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutRequest describes one hosted checkout.
type CheckoutRequest struct {
	OrderID       string
	UserID        string
	CustomerEmail string
	Description   string
	AmountMinor   int64
	PaymentAmount models.PaymentAmount
}

// Session is the processor-neutral view of a checkout session.
type Session struct {
	ID              string
	URL             string
	Paid            bool
	AmountMinor     int64
	OrderID         string
	UserID          string
	PaymentAmount   models.PaymentAmount
	PaymentIntentID string
}

// Event is a verified webhook delivery. Session is set for checkout events.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

// Processor is implemented by Stripe and by Disabled.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// ErrInvalidSignature is returned by ParseWebhook for unverifiable payloads.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ValidateAmount rejects charges below the processor minimum.
func ValidateAmount(minor int64) error {
	if minor < MinimumChargeMinor {
		return models.NewValidationError("payment amount %.2f is below the minimum online charge of %.2f",
			models.FromMinorUnits(minor), models.FromMinorUnits(MinimumChargeMinor))
	}
	return nil
}

// Disabled is used when no processor is configured. Online payment
// requests fail; cash payments are unaffected.
type Disabled struct{}

var errDisabled = errors.New("online payments are not configured")

func (Disabled) CreateCheckoutSession(context.Context, CheckoutRequest) (*Session, error) {
	return nil, models.NewExternalServiceError("payments", errDisabled)
}

func (Disabled) GetSession(context.Context, string) (*Session, error) {
	return nil, models.NewExternalServiceError("payments", errDisabled)
}

func (Disabled) ParseWebhook([]byte, string) (*Event, error) {
	return nil, ErrInvalidSignature
}
