// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/weddingbook/internal/models"
)

const (
	userKeyPrefix           = "user:"
	userEmailKeyPrefix      = "user_email:"
	cartKeyPrefix           = "cart:"
	orderKeyPrefix          = "order:"
	orderUserKeyPrefix      = "order_user:"
	paymentSessionKeyPrefix = "paysess:"
)

// userRecord is the persisted form of models.User. The API type hides
// credentials from JSON; the record keeps them. Field order matches
// models.User so the two convert directly.
type userRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"passwordHash"`
	Role              string    `json:"role"`
	Verified          bool      `json:"verified"`
	CreatedAt         time.Time `json:"createdAt"`
	OTPHash           string    `json:"otpHash,omitempty"`
	OTPExpiresAt      time.Time `json:"otpExpiresAt"`
	PasswordChangedAt time.Time `json:"passwordChangedAt"`
}

// NormalizeEmail is the form used for the unique email index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userKey(id string) []byte { return []byte(userKeyPrefix + id) }

func userEmailKey(email string) []byte {
	return []byte(userEmailKeyPrefix + NormalizeEmail(email))
}

// CreateUser stores u and claims its email. A taken email is a conflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	rec := userRecord(*u)
	return s.update(ctx, func(txn *badger.Txn) error {
		taken, err := exists(txn, userEmailKey(u.Email))
		if err != nil {
			return err
		}
		if taken {
			return models.NewConflictError("an account with this email already exists")
		}
		if err := setJSON(txn, userKey(u.ID), &rec); err != nil {
			return err
		}
		return txn.Set(userEmailKey(u.Email), []byte(u.ID))
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var rec userRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	u := models.User(rec)
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, userEmailKey(email))
		if err != nil {
			return err
		}
		return getJSON(txn, userKey(id), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	u := models.User(rec)
	return &u, nil
}

// UpdateUser applies fn atomically. Email changes are not supported.
func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	var out models.User
	err := s.update(ctx, func(txn *badger.Txn) error {
		var rec userRecord
		if err := getJSON(txn, userKey(id), &rec); err != nil {
			return err
		}
		u := models.User(rec)
		email := u.Email
		if err := fn(&u); err != nil {
			return err
		}
		u.Email = email
		out = u
		rec = userRecord(u)
		return setJSON(txn, userKey(id), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all accounts in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var recs []userRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		recs, err = scanJSON[userRecord](txn, []byte(userKeyPrefix))
		return err
	})
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(recs))
	for i := range recs {
		users[i] = models.User(recs[i])
	}
	return users, nil
}

// Cart returns the user's cart, or an empty cart if none is stored.
func (s *Store) Cart(ctx context.Context, userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, Items: []models.CartItem{}}
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, []byte(cartKeyPrefix+userID), cart)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return cart, nil
}

// UpdateCart applies fn to the user's cart, creating it if needed.
func (s *Store) UpdateCart(ctx context.Context, userID string, fn func(*models.Cart) error) (*models.Cart, error) {
	var out models.Cart
	key := []byte(cartKeyPrefix + userID)
	err := s.update(ctx, func(txn *badger.Txn) error {
		cart := models.Cart{UserID: userID, Items: []models.CartItem{}}
		if err := getJSON(txn, key, &cart); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := fn(&cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()
		out = cart
		return setJSON(txn, key, &cart)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func orderKey(id string) []byte { return []byte(orderKeyPrefix + id) }

func orderUserKey(userID, orderID string) []byte {
	return []byte(orderUserKeyPrefix + userID + ":" + orderID)
}

// CheckoutCart stores order and empties the owner's cart in one
// transaction. build receives the current cart and returns the order; an
// empty cart is rejected before build runs.
func (s *Store) CheckoutCart(ctx context.Context, userID string, build func(*models.Cart) (*models.Order, error)) (*models.Order, error) {
	var out *models.Order
	cartKey := []byte(cartKeyPrefix + userID)
	err := s.update(ctx, func(txn *badger.Txn) error {
		var cart models.Cart
		if err := getJSON(txn, cartKey, &cart); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return models.NewValidationError("cart is empty")
			}
			return err
		}
		if len(cart.Items) == 0 {
			return models.NewValidationError("cart is empty")
		}
		order, err := build(&cart)
		if err != nil {
			return err
		}
		if err := setJSON(txn, orderKey(order.ID), order); err != nil {
			return err
		}
		if err := txn.Set(orderUserKey(order.UserID, order.ID), []byte(order.ID)); err != nil {
			return err
		}
		out = order
		return txn.Delete(cartKey)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, orderKey(id), &o)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("order")
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrder is a compare-and-set on one order: fn sees the committed
// state and reports whether it changed anything. When it returns false
// nothing is written. Concurrent writers conflict and the loser re-runs fn
// against the winner's state.
func (s *Store) UpdateOrder(ctx context.Context, id string, fn func(*models.Order) (bool, error)) (*models.Order, bool, error) {
	var (
		out     models.Order
		changed bool
	)
	err := s.update(ctx, func(txn *badger.Txn) error {
		var o models.Order
		if err := getJSON(txn, orderKey(id), &o); err != nil {
			return err
		}
		var err error
		changed, err = fn(&o)
		if err != nil {
			return err
		}
		if !changed {
			out = o
			return nil
		}
		o.UpdatedAt = time.Now().UTC()
		out = o
		return setJSON(txn, orderKey(id), &o)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, models.NewNotFoundError("order")
	}
	if err != nil {
		return nil, false, err
	}
	return &out, changed, nil
}

// OrdersByUser returns the user's orders oldest first.
func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.view(ctx, func(txn *badger.Txn) error {
		ids, err := scanIndex(txn, []byte(orderUserKeyPrefix+userID+":"))
		if err != nil {
			return err
		}
		orders = make([]models.Order, 0, len(ids))
		for _, id := range ids {
			var o models.Order
			if err := getJSON(txn, orderKey(id), &o); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			orders = append(orders, o)
		}
		return nil
	})
	return orders, err
}

// ListOrders returns every order oldest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		orders, err = scanJSON[models.Order](txn, []byte(orderKeyPrefix))
		return err
	})
	return orders, err
}

// SavePaymentSession records who started a checkout session.
func (s *Store) SavePaymentSession(ctx context.Context, ps *models.PaymentSession) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, []byte(paymentSessionKeyPrefix+ps.SessionID), ps)
	})
}

func (s *Store) GetPaymentSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	var ps models.PaymentSession
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, []byte(paymentSessionKeyPrefix+sessionID), &ps)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("payment session")
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}
