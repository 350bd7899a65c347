// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/weddingbook/internal/models"
)

// Collection stores one kind of catalog document.
type Collection[T any] struct {
	s      *Store
	prefix string
	label  string
	idOf   func(*T) string
}

func newCollection[T any](s *Store, kind, label string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{s: s, prefix: kind + ":", label: label, idOf: idOf}
}

func (c *Collection[T]) key(id string) []byte {
	return []byte(c.prefix + id)
}

// Get returns a not-found error when id is unknown.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	err := c.s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, c.key(id), &v)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError(c.label)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create fails with a conflict if the ID is taken.
func (c *Collection[T]) Create(ctx context.Context, v *T) error {
	id := c.idOf(v)
	if id == "" {
		return models.NewValidationError("%s id is required", c.label)
	}
	return c.s.update(ctx, func(txn *badger.Txn) error {
		found, err := exists(txn, c.key(id))
		if err != nil {
			return err
		}
		if found {
			return models.NewConflictError(c.label + " already exists")
		}
		return setJSON(txn, c.key(id), v)
	})
}

// Update applies fn to the stored document and writes it back.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var out T
	err := c.s.update(ctx, func(txn *badger.Txn) error {
		var v T
		if err := getJSON(txn, c.key(id), &v); err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		out = v
		return setJSON(txn, c.key(id), &v)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError(c.label)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes id and returns the deleted document.
func (c *Collection[T]) Delete(ctx context.Context, id string) (*T, error) {
	var v T
	err := c.s.update(ctx, func(txn *badger.Txn) error {
		if err := getJSON(txn, c.key(id), &v); err != nil {
			return err
		}
		return txn.Delete(c.key(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError(c.label)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns every document in creation order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	err := c.s.view(ctx, func(txn *badger.Txn) error {
		var err error
		out, err = scanJSON[T](txn, []byte(c.prefix))
		return err
	})
	return out, err
}

// Snapshot reads the recommendable catalog in one transaction so a
// recommendation never mixes two catalog versions.
func (s *Store) Snapshot(ctx context.Context) (*models.Catalog, error) {
	cat := &models.Catalog{}
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		if cat.Venues, err = scanJSON[models.Venue](txn, []byte(s.Venues.prefix)); err != nil {
			return err
		}
		if cat.Studios, err = scanJSON[models.Studio](txn, []byte(s.Studios.prefix)); err != nil {
			return err
		}
		if cat.Categories, err = scanJSON[models.CuisineCategory](txn, []byte(s.Categories.prefix)); err != nil {
			return err
		}
		cat.Dishes, err = scanJSON[models.Dish](txn, []byte(s.Dishes.prefix))
		return err
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DishesInCategory lists the dishes of one category in creation order.
func (s *Store) DishesInCategory(ctx context.Context, categoryID string) ([]models.Dish, error) {
	all, err := s.Dishes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Dish, 0, len(all))
	for i := range all {
		if all[i].CategoryID == categoryID {
			out = append(out, all[i])
		}
	}
	return out, nil
}
