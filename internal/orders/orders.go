// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package orders

import (
	"context"
	"slices"
	"time"

	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/store"
)

// Checkout turns the user's cart into a pending order and empties the cart.
func (s *Service) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.store.CheckoutCart(ctx, userID, func(c *models.Cart) (*models.Order, error) {
		now := time.Now().UTC()
		o := &models.Order{
			ID:            store.NewID(),
			UserID:        userID,
			Status:        models.OrderPending,
			Items:         make([]models.OrderItem, len(c.Items)),
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for i, it := range c.Items {
			o.Items[i] = models.OrderItem{CartItem: it}
		}
		o.SetBookingStatus(models.BookingPending)
		o.TotalAmount = c.Total()
		o.RemainingAmount = o.TotalAmount
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("order_id", order.ID).Str("user_id", userID).
		Float64("total", order.TotalAmount).Int("items", len(order.Items)).Msg("order created")
	return order, nil
}

// Order returns any order. Callers enforce access.
func (s *Service) Order(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// OrderForUser returns the order only if userID owns it.
func (s *Service) OrderForUser(ctx context.Context, userID, id string) (*models.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, models.NewAuthorizationError("order belongs to another user")
	}
	return o, nil
}

// OrdersForUser lists a customer's orders, newest first.
func (s *Service) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	slices.Reverse(orders)
	return orders, nil
}

func (s *Service) AllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Cancel is the administrative override: any order that is not already
// cancelled can be cancelled, and its bookings are released.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Order, error) {
	o, changed, err := s.store.UpdateOrder(ctx, id, func(o *models.Order) (bool, error) {
		if o.Status == models.OrderCancelled {
			return false, nil
		}
		o.Status = models.OrderCancelled
		o.SetBookingStatus(models.BookingCancelled)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info().Str("order_id", id).Msg("order cancelled")
	}
	return o, nil
}

// Complete marks a confirmed order as delivered.
func (s *Service) Complete(ctx context.Context, id string) (*models.Order, error) {
	o, changed, err := s.store.UpdateOrder(ctx, id, func(o *models.Order) (bool, error) {
		switch o.Status {
		case models.OrderCompleted:
			return false, nil
		case models.OrderConfirmed:
			o.Status = models.OrderCompleted
			return true, nil
		default:
			return false, models.NewConflictError("only confirmed orders can be completed")
		}
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info().Str("order_id", id).Msg("order completed")
	}
	return o, nil
}
