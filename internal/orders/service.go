// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package orders implements the cart, checkout and the order payment
// workflow.
//
// An order is created from the cart in pending state. The customer then
// either chooses cash after service, which confirms the order at once, or
// pays 25% or the full total online. Online payments are finalized by the
// processor webhook or by the customer polling the session, whichever comes
// first. Finalization re-derives the paid and remaining amounts from the
// session every time and runs as a compare-and-set on the stored order, so
// replays and webhook/poll races never double count.
package orders

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/catalog"
	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/payments"
	"github.com/tomtom215/weddingbook/internal/store"
)

// Enqueuer accepts email jobs. *emailqueue.Queue implements it.
type Enqueuer interface {
	Enqueue(payload emailqueue.Payload, opts ...emailqueue.Option) (string, error)
}

// ItemLookup resolves orderable catalog items. *catalog.Service implements it.
type ItemLookup interface {
	Lookup(ctx context.Context, t models.ItemType, id string) (*catalog.Item, error)
}

// Service owns carts and orders.
type Service struct {
	store     *store.Store
	items     ItemLookup
	processor payments.Processor
	queue     Enqueuer
	logger    zerolog.Logger
}

// NewService creates the order workflow.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(st *store.Store, items ItemLookup, processor payments.Processor, queue Enqueuer, logger zerolog.Logger) *Service {
	return &Service{
		store:     st,
		items:     items,
		processor: processor,
		queue:     queue,
		logger:    logger.With().Str("component", "orders").Logger(),
	}
}

// confirmationPriority drains order confirmations ahead of the default.
const confirmationPriority = 3

// sendConfirmation enqueues the confirmation email. Failures are logged and
// never reach the caller.
func (s *Service) sendConfirmation(ctx context.Context, o *models.Order) {
	log := s.logger.With().Str("order_id", o.ID).Logger()

	u, err := s.store.GetUser(ctx, o.UserID)
	if err != nil {
		log.Error().Err(err).Msg("cannot load customer for confirmation email")
		return
	}
	jobID, err := s.queue.Enqueue(emailqueue.OrderConfirmation{
		To:    u.Email,
		Name:  u.Name,
		Order: *o,
	}, emailqueue.WithPriority(confirmationPriority))
	if err != nil {
		log.Error().Err(err).Msg("failed to enqueue confirmation email")
		return
	}
	log.Debug().Str("job_id", jobID).Msg("confirmation email enqueued")
}
