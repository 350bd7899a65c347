// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package catalog manages venues, studios, cuisine categories, dishes and
// decorations on top of the document store.
package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/storage"
	"github.com/tomtom215/weddingbook/internal/store"
)

// Service groups one Resource per catalog kind.
type Service struct {
	store *store.Store

	Venues      *Resource[models.Venue]
	Studios     *Resource[models.Studio]
	Categories  *Resource[models.CuisineCategory]
	Dishes      *Resource[models.Dish]
	Decorations *Resource[models.Decoration]
}

// NewService wires the resources to st and images.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(st *store.Store, images storage.ImageStore, logger zerolog.Logger) *Service {
	logger = logger.With().Str("component", "catalog").Logger()
	sub := func(kind string) zerolog.Logger {
		return logger.With().Str("kind", kind).Logger()
	}

	s := &Service{store: st}
	s.Venues = &Resource[models.Venue]{
		kind: "venue", coll: st.Venues, images: images, logger: sub("venue"),
		f: fields[models.Venue]{
			id:      func(v *models.Venue) *string { return &v.ID },
			created: func(v *models.Venue) *time.Time { return &v.CreatedAt },
			updated: func(v *models.Venue) *time.Time { return &v.UpdatedAt },
			images:  func(v *models.Venue) *[]string { return &v.Images },
		},
	}
	s.Studios = &Resource[models.Studio]{
		kind: "studio", coll: st.Studios, images: images, logger: sub("studio"),
		f: fields[models.Studio]{
			id:      func(v *models.Studio) *string { return &v.ID },
			created: func(v *models.Studio) *time.Time { return &v.CreatedAt },
			updated: func(v *models.Studio) *time.Time { return &v.UpdatedAt },
			images:  func(v *models.Studio) *[]string { return &v.Images },
		},
	}
	s.Categories = &Resource[models.CuisineCategory]{
		kind: "category", coll: st.Categories, images: images, logger: sub("category"),
		f: fields[models.CuisineCategory]{
			id:      func(v *models.CuisineCategory) *string { return &v.ID },
			created: func(v *models.CuisineCategory) *time.Time { return &v.CreatedAt },
		},
		guardDelete: s.categoryUnused,
	}
	s.Dishes = &Resource[models.Dish]{
		kind: "dish", coll: st.Dishes, images: images, logger: sub("dish"),
		f: fields[models.Dish]{
			id:      func(v *models.Dish) *string { return &v.ID },
			created: func(v *models.Dish) *time.Time { return &v.CreatedAt },
			updated: func(v *models.Dish) *time.Time { return &v.UpdatedAt },
			images:  func(v *models.Dish) *[]string { return &v.Images },
		},
		check: s.dishCategoryExists,
	}
	s.Decorations = &Resource[models.Decoration]{
		kind: "decoration", coll: st.Decorations, images: images, logger: sub("decoration"),
		f: fields[models.Decoration]{
			id:      func(v *models.Decoration) *string { return &v.ID },
			created: func(v *models.Decoration) *time.Time { return &v.CreatedAt },
			updated: func(v *models.Decoration) *time.Time { return &v.UpdatedAt },
			images:  func(v *models.Decoration) *[]string { return &v.Images },
		},
	}
	return s
}

// Snapshot satisfies recommend.CatalogSource.
func (s *Service) Snapshot(ctx context.Context) (*models.Catalog, error) {
	return s.store.Snapshot(ctx)
}

// DishesInCategory returns an empty list for a known category without dishes
// and not-found for an unknown one.
func (s *Service) DishesInCategory(ctx context.Context, categoryID string) ([]models.Dish, error) {
	if _, err := s.Categories.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.store.DishesInCategory(ctx, categoryID)
}

// Item is the orderable view of a catalog document.
type Item struct {
	ID    string
	Type  models.ItemType
	Name  string
	Price float64
}

// Lookup resolves an orderable item. Unknown types are a validation error.
func (s *Service) Lookup(ctx context.Context, t models.ItemType, id string) (*Item, error) {
	switch t {
	case models.ItemVenue:
		v, err := s.Venues.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Item{ID: v.ID, Type: t, Name: v.Name, Price: v.Price}, nil
	case models.ItemStudio:
		v, err := s.Studios.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Item{ID: v.ID, Type: t, Name: v.Name, Price: v.Price}, nil
	case models.ItemDish:
		v, err := s.Dishes.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Item{ID: v.ID, Type: t, Name: v.Name, Price: v.Price}, nil
	default:
		return nil, models.NewValidationError("unknown item type %q", t)
	}
}

func (s *Service) dishCategoryExists(ctx context.Context, d *models.Dish) error {
	_, err := s.Categories.Get(ctx, d.CategoryID)
	if models.KindOf(err) == models.KindNotFound {
		return models.NewValidationError("cuisine category %q does not exist", d.CategoryID)
	}
	return err
}

func (s *Service) categoryUnused(ctx context.Context, id string) error {
	dishes, err := s.store.DishesInCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(dishes) > 0 {
		return models.NewConflictError("category still has dishes")
	}
	return nil
}
