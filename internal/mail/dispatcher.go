// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
)

// DefaultBrand appears in the layout header and footer.
const DefaultBrand = "Weddingbook"

// Dispatcher renders queue payloads and sends them through a Transport.
type Dispatcher struct {
	transport Transport
	brand     string
	logger    zerolog.Logger
}

var _ emailqueue.Mailer = (*Dispatcher)(nil)

//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDispatcher(transport Transport, brand string, logger zerolog.Logger) *Dispatcher {
	if brand == "" {
		brand = DefaultBrand
	}
	return &Dispatcher{
		transport: transport,
		brand:     brand,
		logger:    logger.With().Str("component", "mail").Logger(),
	}
}

type orderData struct {
	Brand string
	emailqueue.OrderConfirmation
}

type resetData struct {
	Brand string
	emailqueue.PasswordReset
}

type otpData struct {
	Brand string
	emailqueue.VerificationOTP
}

func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, p emailqueue.OrderConfirmation) error {
	p.Name = displayName(p.Name)
	msg, err := orderTemplates.render(p.To, orderData{Brand: d.brand, OrderConfirmation: p})
	if err != nil {
		return models.NewInternalError(err)
	}
	return d.send(ctx, msg)
}

func (d *Dispatcher) SendPasswordReset(ctx context.Context, p emailqueue.PasswordReset) error {
	p.Name = displayName(p.Name)
	if p.ExpiresIn <= 0 {
		p.ExpiresIn = time.Hour
	}
	msg, err := resetTemplates.render(p.To, resetData{Brand: d.brand, PasswordReset: p})
	if err != nil {
		return models.NewInternalError(err)
	}
	return d.send(ctx, msg)
}

func (d *Dispatcher) SendVerificationOTP(ctx context.Context, p emailqueue.VerificationOTP) error {
	p.Name = displayName(p.Name)
	if p.ExpiresIn <= 0 {
		p.ExpiresIn = 10 * time.Minute
	}
	msg, err := otpTemplates.render(p.To, otpData{Brand: d.brand, VerificationOTP: p})
	if err != nil {
		return models.NewInternalError(err)
	}
	return d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	start := time.Now()
	err := d.transport.Send(ctx, msg)
	metrics.EmailSendDuration.WithLabelValues(d.transport.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		d.logger.Debug().Err(err).Str("subject", msg.Subject).Msg("transport send failed")
		return models.NewExternalServiceError("mail", err)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
