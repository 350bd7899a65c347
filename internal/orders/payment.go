// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/payments"
	"github.com/tomtom215/weddingbook/internal/validation"
)

// Finalization sources, used for logs and metrics.
const (
	SourceCash    = "cash"
	SourceWebhook = "webhook"
	SourcePoll    = "poll"
)

// StartPaymentRequest is the body of POST /payments/start-payment. An empty
// PaymentAmount selects cash after service.
type StartPaymentRequest struct {
	OrderID       string               `json:"orderId" validate:"required"`
	PaymentAmount models.PaymentAmount `json:"paymentAmount" validate:"omitempty,oneof=25_percent full_payment"`
}

// StartPaymentResult carries either a checkout session or the confirmed
// cash order.
type StartPaymentResult struct {
	PaymentType models.PaymentType `json:"paymentType"`
	SessionID   string             `json:"sessionId,omitempty"`
	URL         string             `json:"url,omitempty"`
	Amount      float64            `json:"amount,omitempty"`
	Order       *models.Order      `json:"order"`
}

// PaymentStatus is the result of polling a checkout session.
type PaymentStatus struct {
	SessionID     string               `json:"sessionId"`
	Paid          bool                 `json:"paid"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Order         *models.Order        `json:"order"`
}

var errNotAwaitingPayment = models.NewConflictError("order is not awaiting payment")

// Reasons Finalize leaves a paid session unapplied.
const (
	skipClosed     = "closed"
	skipSuperseded = "superseded"
)

// StartPayment begins payment for an order the caller owns.
func (s *Service) StartPayment(ctx context.Context, userID string, req *StartPaymentRequest) (*StartPaymentResult, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	order, err := s.OrderForUser(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, errNotAwaitingPayment
	}
	if req.PaymentAmount == "" {
		return s.confirmCash(ctx, order.ID)
	}
	return s.startOnline(ctx, order, req.PaymentAmount)
}

func (s *Service) confirmCash(ctx context.Context, orderID string) (*StartPaymentResult, error) {
	o, changed, err := s.store.UpdateOrder(ctx, orderID, func(o *models.Order) (bool, error) {
		if o.Status != models.OrderPending {
			return false, errNotAwaitingPayment
		}
		o.PaymentType = models.PaymentCashAfterService
		o.PaymentAmount = ""
		o.Status = models.OrderConfirmed
		o.SetBookingStatus(models.BookingConfirmed)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordOrderFinalized(SourceCash, changed)
	s.logger.Info().Str("order_id", o.ID).Msg("order confirmed for cash after service")
	s.sendConfirmation(ctx, o)
	return &StartPaymentResult{PaymentType: models.PaymentCashAfterService, Order: o}, nil
}

func (s *Service) startOnline(ctx context.Context, order *models.Order, amount models.PaymentAmount) (*StartPaymentResult, error) {
	minor := models.ToMinorUnits(order.TotalAmount * amount.Fraction())
	if err := payments.ValidateAmount(minor); err != nil {
		return nil, err
	}

	var email string
	if u, err := s.store.GetUser(ctx, order.UserID); err == nil {
		email = u.Email
	}
	sess, err := s.processor.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		OrderID:       order.ID,
		UserID:        order.UserID,
		CustomerEmail: email,
		Description:   describe(order, amount),
		AmountMinor:   minor,
		PaymentAmount: amount,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create checkout session")
		return nil, err
	}

	if err := s.store.SavePaymentSession(ctx, &models.PaymentSession{
		SessionID: sess.ID,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Amount:    amount,
		Charged:   models.FromMinorUnits(minor),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	updated, _, err := s.store.UpdateOrder(ctx, order.ID, func(o *models.Order) (bool, error) {
		if o.Status != models.OrderPending {
			return false, nil
		}
		o.PaymentType = models.PaymentAdvance
		o.PaymentAmount = amount
		o.StripeSessionID = sess.ID
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("order_id", order.ID).Str("session_id", sess.ID).
		Str("amount", string(amount)).Int64("amount_minor", minor).Msg("checkout session created")

	return &StartPaymentResult{
		PaymentType: models.PaymentAdvance,
		SessionID:   sess.ID,
		URL:         sess.URL,
		Amount:      models.FromMinorUnits(minor),
		Order:       updated,
	}, nil
}

func describe(o *models.Order, amount models.PaymentAmount) string {
	if amount == models.AmountQuarter {
		return fmt.Sprintf("25%% advance for wedding order %s", o.ID)
	}
	return fmt.Sprintf("Wedding order %s", o.ID)
}

// Finalize applies a paid checkout session to its order. The paid and
// remaining amounts are derived from the session, so applying the same
// session again changes nothing and sends no second email. Unpaid sessions
// and orders that are already completed or cancelled are left alone, and
// once one paid session has been applied any other session for the same
// order is logged for a manual refund instead of overwriting it.
func (s *Service) Finalize(ctx context.Context, sess *payments.Session, source string) (*models.Order, error) {
	if sess.OrderID == "" {
		return nil, models.NewValidationError("payment session %s has no order reference", sess.ID)
	}
	if !sess.Paid {
		return s.store.GetOrder(ctx, sess.OrderID)
	}

	log := s.logger.With().Str("order_id", sess.OrderID).Str("session_id", sess.ID).Str("source", source).Logger()
	paid := models.FromMinorUnits(sess.AmountMinor)

	var skipped string
	o, changed, err := s.store.UpdateOrder(ctx, sess.OrderID, func(o *models.Order) (bool, error) {
		skipped = ""
		if o.Status.Terminal() {
			skipped = skipClosed
			return false, nil
		}
		if o.PaidAmount > 0 && o.StripeSessionID != "" && o.StripeSessionID != sess.ID {
			skipped = skipSuperseded
			return false, nil
		}
		amount := sess.PaymentAmount
		if !amount.Valid() {
			amount = o.PaymentAmount
		}
		status := models.PaymentCompleted
		if amount == models.AmountQuarter {
			status = models.PaymentPartial
		}
		remaining := models.RoundMoney(o.TotalAmount - paid)
		if remaining < 0 {
			remaining = 0
		}

		if o.Status == models.OrderConfirmed &&
			o.PaymentStatus == status &&
			o.PaidAmount == paid &&
			o.RemainingAmount == remaining &&
			o.StripeSessionID == sess.ID {
			return false, nil
		}

		o.Status = models.OrderConfirmed
		o.PaymentType = models.PaymentAdvance
		o.PaymentAmount = amount
		o.PaymentStatus = status
		o.PaidAmount = paid
		o.RemainingAmount = remaining
		o.StripeSessionID = sess.ID
		if sess.PaymentIntentID != "" {
			o.StripePaymentIntentID = sess.PaymentIntentID
		}
		o.SetBookingStatus(models.BookingConfirmed)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordOrderFinalized(source, changed)
	switch skipped {
	case skipClosed:
		log.Warn().Str("status", string(o.Status)).Msg("paid session for closed order, not applied")
	case skipSuperseded:
		log.Warn().Str("applied_session_id", o.StripeSessionID).Float64("charged", paid).
			Msg("second paid session for order, not applied; refund manually")
	}
	if !changed {
		log.Debug().Msg("finalize was a no-op")
		return o, nil
	}
	log.Info().Float64("paid", o.PaidAmount).Float64("remaining", o.RemainingAmount).
		Str("payment_status", string(o.PaymentStatus)).Msg("order payment finalized")
	s.sendConfirmation(ctx, o)
	return o, nil
}

// PollStatus reconciles a checkout session the caller started.
func (s *Service) PollStatus(ctx context.Context, userID, sessionID string) (*PaymentStatus, error) {
	rec, err := s.store.GetPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, models.NewAuthorizationError("payment session belongs to another user")
	}
	sess, err := s.processor.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OrderID == "" {
		sess.OrderID = rec.OrderID
	}
	if !sess.PaymentAmount.Valid() {
		sess.PaymentAmount = rec.Amount
	}
	o, err := s.Finalize(ctx, sess, SourcePoll)
	if err != nil {
		return nil, err
	}
	return &PaymentStatus{
		SessionID:     sessionID,
		Paid:          sess.Paid,
		PaymentStatus: o.PaymentStatus,
		Order:         o,
	}, nil
}

// ErrBadSignature is returned by HandleWebhook when the payload cannot be
// verified.
var ErrBadSignature = models.NewValidationError("invalid webhook signature")

// HandleWebhook verifies a processor delivery and applies it. Only a bad
// signature is reported; anything that goes wrong after verification is
// logged so the sender does not retry.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.processor.ParseWebhook(payload, signature)
	if errors.Is(err, payments.ErrInvalidSignature) {
		s.logger.Warn().Err(err).Msg("rejected webhook with invalid signature")
		return ErrBadSignature
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("verified webhook could not be decoded")
		return nil
	}
	log := s.logger.With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()
	if ev.Type != payments.EventCheckoutCompleted || ev.Session == nil {
		log.Debug().Msg("ignoring webhook event")
		return nil
	}
	if _, err := s.Finalize(ctx, ev.Session, SourceWebhook); err != nil {
		log.Error().Err(err).Msg("failed to finalize order from webhook")
	}
	return nil
}
