// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package recommend

import (
	"context"
	"errors"
	"io"
	"net/url"
	"reflect"
	"testing"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Venues: []models.Venue{
			{ID: "v1", Name: "Grand Hall", Location: "Dhaka", Price: 90000, Capacity: 500, Rating: 4.5, OrderCount: 20},
			{ID: "v2", Name: "Lake Garden", Location: "Sylhet", Price: 60000, Capacity: 150, Rating: 4.8, OrderCount: 40},
			{ID: "v3", Name: "Palace", Location: "Dhaka", Price: 200000, Capacity: 1000, Rating: 5, OrderCount: 90},
		},
		Studios: []models.Studio{
			{ID: "s1", Name: "Frame Co", Location: "Dhaka", Price: 40000, Services: []string{"Photography", "Drone"}, Rating: 4.2, OrderCount: 10},
			{ID: "s2", Name: "Reel Studio", Location: "Sylhet", Price: 30000, Services: []string{"Videography"}, Rating: 4.9, OrderCount: 60},
		},
		Categories: []models.CuisineCategory{
			{ID: "c1", Name: "Starters"},
			{ID: "c2", Name: "Mains"},
			{ID: "c3", Name: "Desserts"},
		},
		Dishes: []models.Dish{
			{ID: "d1", CategoryID: "c1", Name: "Samosa", Price: 3000, Rating: 4.0, OrderCount: 10},
			{ID: "d2", CategoryID: "c1", Name: "Kebab", Price: 6000, Rating: 4.7, OrderCount: 30},
			{ID: "d3", CategoryID: "c2", Name: "Biryani", Price: 9000, Rating: 4.9, OrderCount: 50},
			{ID: "d4", CategoryID: "c2", Name: "Korma", Price: 7000, Rating: 4.1, OrderCount: 5},
			{ID: "d5", CategoryID: "c3", Name: "Firni", Price: 2000, Rating: 4.3, OrderCount: 12},
		},
	}
}

func TestAllocateScenario(t *testing.T) {
	t.Parallel()

	q := Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 20000}
	pkg := Allocate(testCatalog(), q)

	if pkg.Venue == nil || pkg.Studio == nil {
		t.Fatalf("expected venue and studio, got %+v / %+v", pkg.Venue, pkg.Studio)
	}
	if pkg.Venue.ID == "v3" {
		t.Error("Palace exceeds budget*1.1 and must be filtered")
	}
	if pkg.TotalPrice > 170000*1.1 {
		t.Errorf("TotalPrice = %v exceeds combined budget with grace", pkg.TotalPrice)
	}

	var food float64
	for _, d := range pkg.Dishes {
		food += d.Price
	}
	if food > q.FoodBudget {
		t.Errorf("dish total %v exceeds food budget %v", food, q.FoodBudget)
	}
	if len(pkg.CategoriesIncluded) != len(pkg.Dishes) {
		t.Errorf("categoriesIncluded %v does not match dishes", pkg.CategoriesIncluded)
	}
	for i, d := range pkg.Dishes {
		if d.CategoryName != pkg.CategoriesIncluded[i] {
			t.Errorf("category %d = %q, want %q", i, pkg.CategoriesIncluded[i], d.CategoryName)
		}
	}
}

func TestAllocateDeterministic(t *testing.T) {
	t.Parallel()

	q := Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 20000, GuestCount: 120}
	first := Allocate(testCatalog(), q)
	for i := 0; i < 20; i++ {
		again := Allocate(testCatalog(), q)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestAllocateTiesKeepCatalogOrder(t *testing.T) {
	t.Parallel()

	cat := &models.Catalog{
		Venues: []models.Venue{
			{ID: "first", Price: 100, Rating: 4, Capacity: 100},
			{ID: "second", Price: 100, Rating: 4, Capacity: 100},
		},
	}
	pkg := Allocate(cat, Query{VenueBudget: 100, StudioBudget: 1, FoodBudget: 1})
	if pkg.Venue == nil || pkg.Venue.ID != "first" {
		t.Errorf("tie should resolve to first catalog entry, got %+v", pkg.Venue)
	}
}

func TestAllocateFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      Query
		wantVenue  string
		wantStudio string
	}{
		{"location filter", Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 1000, Location: "sylhet"}, "v2", "s2"},
		{"guest count excludes small venue", Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 1000, GuestCount: 300}, "v1", "s2"},
		{"preferred services", Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 1000, PreferredServices: []string{"drone"}}, "v2", "s1"},
		{"grace allows 10 percent overrun", Query{VenueBudget: 55000, StudioBudget: 28000, FoodBudget: 1000}, "v2", "s2"},
		{"nothing qualifies", Query{VenueBudget: 1000, StudioBudget: 1000, FoodBudget: 1000}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pkg := Allocate(testCatalog(), tt.query)

			gotVenue, gotStudio := "", ""
			if pkg.Venue != nil {
				gotVenue = pkg.Venue.ID
			}
			if pkg.Studio != nil {
				gotStudio = pkg.Studio.ID
			}
			if gotVenue != tt.wantVenue {
				t.Errorf("venue = %q, want %q", gotVenue, tt.wantVenue)
			}
			if gotStudio != tt.wantStudio {
				t.Errorf("studio = %q, want %q", gotStudio, tt.wantStudio)
			}
		})
	}
}

func TestAllocateNoVenueInsight(t *testing.T) {
	t.Parallel()

	pkg := Allocate(testCatalog(), Query{VenueBudget: 1000, StudioBudget: 50000, FoodBudget: 20000})
	found := false
	for _, s := range pkg.Insights {
		if s == "No venue found within budget 1000.00" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected no-venue insight, got %v", pkg.Insights)
	}
}

func TestAllocateDishesSkipsOverflow(t *testing.T) {
	t.Parallel()

	cat := &models.Catalog{
		Categories: []models.CuisineCategory{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		Dishes: []models.Dish{
			// sub-budget 500, ceiling 750
			{ID: "a1", CategoryID: "a", Price: 700, Rating: 5, OrderCount: 100},
			{ID: "b1", CategoryID: "b", Price: 400, Rating: 1},
		},
	}
	pkg := Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1000})

	if len(pkg.Dishes) != 1 || pkg.Dishes[0].ID != "a1" {
		t.Fatalf("expected only a1 admitted (b1 would overflow), got %+v", pkg.Dishes)
	}
	if pkg.Analysis.Food.Leftover != 300 {
		t.Errorf("food leftover = %v, want 300", pkg.Analysis.Food.Leftover)
	}
}

func TestAllocateCheapestFallback(t *testing.T) {
	t.Parallel()

	cat := &models.Catalog{
		Categories: []models.CuisineCategory{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}},
		Dishes: []models.Dish{
			// food 1000 over 4 categories: sub-budget 250, ceiling 375, fallback cap 300
			{ID: "a1", CategoryID: "a", Price: 400, Rating: 5},
			{ID: "a2", CategoryID: "a", Price: 290, Rating: 5},
			{ID: "b1", CategoryID: "b", Price: 500, Rating: 5},
		},
	}
	pkg := Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1000})

	if len(pkg.Dishes) != 1 || pkg.Dishes[0].ID != "a2" {
		t.Fatalf("expected a2 within the ceiling, got %+v", pkg.Dishes)
	}

	cat.Dishes[1].Price = 380
	pkg = Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1000})
	// a has no dish under 375; cheapest a2 at 380 exceeds the 300 fallback cap
	if len(pkg.Dishes) != 0 {
		t.Fatalf("expected no dishes, got %+v", pkg.Dishes)
	}

	cat.Dishes[1].Price = 376
	cat.Dishes = append(cat.Dishes, models.Dish{ID: "c1", CategoryID: "c", Price: 1000})
	pkg = Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1200})
	// food 1200: sub-budget 300, ceiling 450 so a2 qualifies normally now
	if len(pkg.Dishes) == 0 || pkg.Dishes[0].Fallback {
		t.Fatalf("expected a regular pick, got %+v", pkg.Dishes)
	}
}

func TestAllocateFallbackUsed(t *testing.T) {
	t.Parallel()

	cat := &models.Catalog{
		Categories: []models.CuisineCategory{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}, {ID: "e", Name: "E"}},
		Dishes: []models.Dish{
			// food 1000 over 5: sub-budget 200, ceiling 300, fallback cap 300
			{ID: "a1", CategoryID: "a", Price: 320},
			{ID: "a2", CategoryID: "a", Price: 310},
		},
	}
	pkg := Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1000})
	if len(pkg.Dishes) != 0 {
		t.Fatalf("310 exceeds the 300 fallback cap, got %+v", pkg.Dishes)
	}

	cat.Categories = cat.Categories[:3]
	// food 1000 over 3: sub-budget 333.33, ceiling 500: both qualify normally
	pkg = Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1000})
	if len(pkg.Dishes) != 1 || pkg.Dishes[0].Fallback {
		t.Fatalf("expected regular pick, got %+v", pkg.Dishes)
	}

	cat.Categories = []models.CuisineCategory{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}, {ID: "e", Name: "E"}, {ID: "f", Name: "F"}}
	// food 2000 over 6: sub-budget 333.33, ceiling 500, fallback cap 600
	cat.Dishes = []models.Dish{{ID: "a1", CategoryID: "a", Price: 550}, {ID: "a2", CategoryID: "a", Price: 520}}
	pkg = Allocate(cat, Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 2000})
	if len(pkg.Dishes) != 1 || pkg.Dishes[0].ID != "a2" || !pkg.Dishes[0].Fallback {
		t.Fatalf("expected fallback to a2, got %+v", pkg.Dishes)
	}
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", "venueBudget=100&studioBudget=50&foodBudget=20&guestCount=10&preferredServices=a,%20b", false},
		{"missing food", "venueBudget=100&studioBudget=50", true},
		{"non numeric", "venueBudget=abc&studioBudget=50&foodBudget=20", true},
		{"zero", "venueBudget=0&studioBudget=50&foodBudget=20", true},
		{"negative", "venueBudget=100&studioBudget=-5&foodBudget=20", true},
		{"nan", "venueBudget=NaN&studioBudget=5&foodBudget=20", true},
		{"bad guests", "venueBudget=100&studioBudget=50&foodBudget=20&guestCount=-1", true},
	}

	for _, tt := range tests {
		values, err := url.ParseQuery(tt.raw)
		if err != nil {
			t.Fatal(err)
		}
		q, err := ParseQuery(values)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ParseQuery() error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && models.KindOf(err) != models.KindValidation {
			t.Errorf("%s: error kind = %v, want validation", tt.name, models.KindOf(err))
		}
		if tt.name == "valid" && !reflect.DeepEqual(q.PreferredServices, []string{"a", "b"}) {
			t.Errorf("PreferredServices = %v", q.PreferredServices)
		}
	}
}

type stubSource struct {
	cat *models.Catalog
	err error
}

func (s stubSource) Snapshot(context.Context) (*models.Catalog, error) {
	return s.cat, s.err
}

func TestEngineRecommend(t *testing.T) {
	t.Parallel()

	e := NewEngine(stubSource{cat: testCatalog()}, logging.NewTestLogger(io.Discard))
	if _, err := e.Recommend(context.Background(), Query{VenueBudget: -1, StudioBudget: 1, FoodBudget: 1}); models.KindOf(err) != models.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}

	pkg, err := e.Recommend(context.Background(), Query{VenueBudget: 100000, StudioBudget: 50000, FoodBudget: 20000})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if pkg.Venue == nil {
		t.Error("expected a venue")
	}

	failing := NewEngine(stubSource{err: errors.New("store closed")}, logging.NewTestLogger(io.Discard))
	if _, err := failing.Recommend(context.Background(), Query{VenueBudget: 1, StudioBudget: 1, FoodBudget: 1}); err == nil {
		t.Error("expected snapshot error")
	}
}
