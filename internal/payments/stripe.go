// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/tomtom215/weddingbook/internal/breaker"
	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
)

// sessionAPI is the subset of the Stripe checkout session client in use.
type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Stripe implements Processor with Stripe Checkout.
type Stripe struct {
	sessions      sessionAPI
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
	cb            *breaker.Breaker[*stripe.CheckoutSession]
}

// NewStripe builds a processor with its own API client; the package-level
// stripe.Key is never set.
func NewStripe(cfg *config.PaymentsConfig) *Stripe {
	sc := client.New(cfg.StripeSecretKey, nil)
	return newStripe(sc.CheckoutSessions, cfg)
}

func newStripe(sessions sessionAPI, cfg *config.PaymentsConfig) *Stripe {
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &Stripe{
		sessions:      sessions,
		webhookSecret: cfg.StripeWebhookSecret,
		currency:      currency,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		cb: breaker.New[*stripe.CheckoutSession]("stripe", breaker.Settings{
			IsSuccessful: func(err error) bool { return err == nil || isClientError(err) },
		}),
	}
}

// isClientError reports Stripe 4xx responses, which say nothing about
// Stripe's availability.
func isClientError(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500
	}
	return false
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if err := ValidateAmount(req.AmountMinor); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(withSessionPlaceholder(s.successURL)),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata(MetaOrderID, req.OrderID)
	params.AddMetadata(MetaUserID, req.UserID)
	params.AddMetadata(MetaPaymentAmount, string(req.PaymentAmount))

	cs, err := s.cb.Execute(func() (*stripe.CheckoutSession, error) {
		return s.sessions.New(params)
	})
	if err != nil {
		return nil, models.NewExternalServiceError("stripe", err)
	}
	metrics.PaymentSessionsCreated.WithLabelValues(string(req.PaymentAmount)).Inc()
	return toSession(cs), nil
}

func (s *Stripe) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.cb.Execute(func() (*stripe.CheckoutSession, error) {
		return s.sessions.Get(id, params)
	})
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return nil, models.NewNotFoundError("payment session")
		}
		return nil, models.NewExternalServiceError("stripe", err)
	}
	return toSession(cs), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes checkout
// session events. API version mismatches are tolerated because only a few
// stable session fields are read.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && ev.Data != nil {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, models.NewValidationError("malformed checkout session in webhook: %v", err)
		}
		out.Session = toSession(&cs)
	}
	return out, nil
}

func toSession(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:          cs.ID,
		URL:         cs.URL,
		Paid:        cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountMinor: cs.AmountTotal,
	}
	if cs.Metadata != nil {
		s.OrderID = cs.Metadata[MetaOrderID]
		s.UserID = cs.Metadata[MetaUserID]
		s.PaymentAmount = models.PaymentAmount(cs.Metadata[MetaPaymentAmount])
	}
	if s.OrderID == "" {
		s.OrderID = cs.ClientReferenceID
	}
	if cs.PaymentIntent != nil {
		s.PaymentIntentID = cs.PaymentIntent.ID
	}
	return s
}

// withSessionPlaceholder lets the success page look the session up.
func withSessionPlaceholder(u string) string {
	if u == "" || strings.Contains(u, "{CHECKOUT_SESSION_ID}") {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "session_id={CHECKOUT_SESSION_ID}"
}
