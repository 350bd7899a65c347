// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package catalog

import (
	"context"
	"fmt"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
)

// SeedDemo fills an empty catalog with a small demo data set so a fresh
// install has something to browse and recommend. It does nothing when any
// venue, studio or category exists and returns the number of documents it
// created.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if len(snap.Venues) > 0 || len(snap.Studios) > 0 || len(snap.Categories) > 0 {
		logging.Debug().Msg("catalog not empty, skipping demo seed")
		return 0, nil
	}

	created := 0
	for i := range demoVenues {
		v := demoVenues[i]
		if _, err := s.Venues.Create(ctx, &v); err != nil {
			return created, fmt.Errorf("seed venue %q: %w", v.Name, err)
		}
		created++
	}
	for i := range demoStudios {
		st := demoStudios[i]
		if _, err := s.Studios.Create(ctx, &st); err != nil {
			return created, fmt.Errorf("seed studio %q: %w", st.Name, err)
		}
		created++
	}
	for _, menu := range demoMenu {
		cat, err := s.Categories.Create(ctx, &models.CuisineCategory{Name: menu.category})
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", menu.category, err)
		}
		created++
		for i := range menu.dishes {
			d := menu.dishes[i]
			d.CategoryID = cat.ID
			if _, err := s.Dishes.Create(ctx, &d); err != nil {
				return created, fmt.Errorf("seed dish %q: %w", d.Name, err)
			}
			created++
		}
	}
	for i := range demoDecorations {
		d := demoDecorations[i]
		if _, err := s.Decorations.Create(ctx, &d); err != nil {
			return created, fmt.Errorf("seed decoration %q: %w", d.Name, err)
		}
		created++
	}

	logging.Info().Int("documents", created).Msg("seeded demo catalog")
	return created, nil
}

var demoVenues = []models.Venue{
	{Name: "Rosewood Garden Hall", Location: "Dhaka", Price: 4500, Capacity: 300, Rating: 4.7, OrderCount: 42},
	{Name: "Riverside Pavilion", Location: "Dhaka", Price: 3200, Capacity: 180, Rating: 4.4, OrderCount: 31},
	{Name: "Old Fort Courtyard", Location: "Chittagong", Price: 2800, Capacity: 220, Rating: 4.2, OrderCount: 12},
	{Name: "Tea Estate Lodge", Location: "Sylhet", Price: 6000, Capacity: 120, Rating: 4.9, OrderCount: 8},
}

var demoStudios = []models.Studio{
	{Name: "Golden Hour Studio", Location: "Dhaka", Price: 900, Rating: 4.8, OrderCount: 55,
		Services: []string{"photography", "videography", "drone"}},
	{Name: "Candid Frames", Location: "Dhaka", Price: 600, Rating: 4.5, OrderCount: 40,
		Services: []string{"photography"}},
	{Name: "Reel Moments", Location: "Chittagong", Price: 750, Rating: 4.3, OrderCount: 19,
		Services: []string{"videography", "editing"}},
}

var demoMenu = []struct {
	category string
	dishes   []models.Dish
}{
	{"Starters", []models.Dish{
		{Name: "Chicken Shami Kebab", Price: 3.5, Rating: 4.6, OrderCount: 120},
		{Name: "Vegetable Pakora", Price: 2, Rating: 4.1, OrderCount: 80},
	}},
	{"Mains", []models.Dish{
		{Name: "Kacchi Biryani", Price: 9, Rating: 4.9, OrderCount: 300},
		{Name: "Beef Rezala", Price: 7.5, Rating: 4.5, OrderCount: 150},
		{Name: "Chicken Roast", Price: 6, Rating: 4.4, OrderCount: 170},
	}},
	{"Desserts", []models.Dish{
		{Name: "Firni", Price: 2.5, Rating: 4.7, OrderCount: 140},
		{Name: "Rasmalai", Price: 3, Rating: 4.8, OrderCount: 130},
	}},
}

var demoDecorations = []models.Decoration{
	{Name: "Marigold Arch", Theme: "traditional", Price: 400},
	{Name: "Fairy Light Canopy", Theme: "modern", Price: 650},
}
