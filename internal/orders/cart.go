// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package orders

import (
	"context"
	"time"

	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/validation"
)

// MaxCartLines bounds the number of distinct items in a cart.
const MaxCartLines = 50

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ItemID     string          `json:"itemId" validate:"required"`
	ItemType   models.ItemType `json:"itemType" validate:"required,oneof=venue studio dish"`
	Quantity   int             `json:"quantity" validate:"min=1,max=100"`
	BookedFrom *time.Time      `json:"bookedFrom"`
	BookedTill *time.Time      `json:"bookedTill"`
}

// Cart returns the user's cart; a user without one gets an empty cart.
func (s *Service) Cart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.store.Cart(ctx, userID)
}

// AddToCart prices the item from the catalog and adds it. Adding a dish
// that is already in the cart raises its quantity; adding a venue or studio
// again replaces its booking window and quantity.
func (s *Service) AddToCart(ctx context.Context, userID string, req *AddItemRequest) (*models.Cart, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if err := checkBookingWindow(req); err != nil {
		return nil, err
	}
	item, err := s.items.Lookup(ctx, req.ItemType, req.ItemID)
	if err != nil {
		return nil, err
	}

	line := models.CartItem{
		ItemID:   item.ID,
		ItemType: item.Type,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: req.Quantity,
	}
	if item.Type.RequiresBooking() {
		from, till := req.BookedFrom.UTC(), req.BookedTill.UTC()
		line.BookedFrom, line.BookedTill = &from, &till
	}

	return s.store.UpdateCart(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			cur := &c.Items[i]
			if cur.ItemID != line.ItemID || cur.ItemType != line.ItemType {
				continue
			}
			if line.ItemType.RequiresBooking() {
				*cur = line
				return nil
			}
			if cur.Quantity+line.Quantity > 100 {
				return models.NewValidationError("quantity of %s cannot exceed 100", cur.Name)
			}
			cur.Quantity += line.Quantity
			cur.Price = line.Price
			return nil
		}
		if len(c.Items) >= MaxCartLines {
			return models.NewValidationError("a cart can hold at most %d items", MaxCartLines)
		}
		c.Items = append(c.Items, line)
		return nil
	})
}

func checkBookingWindow(req *AddItemRequest) error {
	if !req.ItemType.RequiresBooking() {
		req.BookedFrom, req.BookedTill = nil, nil
		return nil
	}
	if req.BookedFrom == nil || req.BookedTill == nil {
		return models.NewValidationError("bookedFrom and bookedTill are required for a %s", req.ItemType)
	}
	if !req.BookedFrom.Before(*req.BookedTill) {
		return models.NewValidationError("bookedFrom must be before bookedTill")
	}
	return nil
}

// UpdateCartItem sets the quantity of an item already in the cart.
func (s *Service) UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 1 || quantity > 100 {
		return nil, models.NewValidationError("quantity must be between 1 and 100")
	}
	return s.store.UpdateCart(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ItemID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
		return models.NewNotFoundError("cart item")
	})
}

// RemoveCartItem drops one line from the cart.
func (s *Service) RemoveCartItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	return s.store.UpdateCart(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ItemID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
		return models.NewNotFoundError("cart item")
	})
}

func (s *Service) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.store.UpdateCart(ctx, userID, func(c *models.Cart) error {
		c.Items = []models.CartItem{}
		return nil
	})
}
