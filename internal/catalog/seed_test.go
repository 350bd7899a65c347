// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package catalog

import (
	"context"
	"testing"

	"github.com/tomtom215/weddingbook/internal/models"
)

func TestSeedDemo(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.SeedDemo(ctx)
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	dishes := 0
	for _, m := range demoMenu {
		dishes += len(m.dishes)
	}
	want := len(demoVenues) + len(demoStudios) + len(demoMenu) + dishes + len(demoDecorations)
	if n != want {
		t.Errorf("SeedDemo() created %d, want %d", n, want)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Venues) != len(demoVenues) || len(snap.Dishes) != dishes {
		t.Errorf("snapshot has %d venues and %d dishes", len(snap.Venues), len(snap.Dishes))
	}
	for _, d := range snap.Dishes {
		if _, err := svc.Categories.Get(ctx, d.CategoryID); err != nil {
			t.Errorf("dish %q points at missing category %q", d.Name, d.CategoryID)
		}
	}

	again, err := svc.SeedDemo(ctx)
	if err != nil || again != 0 {
		t.Errorf("second SeedDemo() = %d, %v; want 0, nil", again, err)
	}
}

func TestSeedDemoSkipsNonEmptyCatalog(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Studios.Create(ctx, &models.Studio{Name: "Mine", Location: "Khulna"}); err != nil {
		t.Fatal(err)
	}

	n, err := svc.SeedDemo(ctx)
	if err != nil || n != 0 {
		t.Fatalf("SeedDemo() = %d, %v; want 0, nil", n, err)
	}
	venues, _ := svc.Venues.List(ctx)
	if len(venues) != 0 {
		t.Errorf("venues seeded into a non-empty catalog: %d", len(venues))
	}
}
