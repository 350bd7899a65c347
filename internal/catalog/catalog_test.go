// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/store"
	"github.com/tomtom215/weddingbook/internal/validation"
)

type fakeImages struct {
	uploaded   []string
	deleted    []string
	failDelete map[string]bool
}

func (f *fakeImages) Upload(_ context.Context, key, _ string, body io.ReadSeeker) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, key)
	return "https://img.example/" + key, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	if f.failDelete[url] {
		return errors.New("object store down")
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeImages, *bytes.Buffer) {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	images := &fakeImages{failDelete: map[string]bool{}}
	var logs bytes.Buffer
	return NewService(st, images, logging.NewTestLogger(&logs)), images, &logs
}

func TestCreateAssignsIDAndIgnoresImages(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Venues.Create(ctx, &models.Venue{
		ID: "client-chosen", Name: "Rose Hall", Location: "Dhaka", Price: 5000, Capacity: 300,
		Images: []string{"https://evil.example/x.png"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if v.ID == "client-chosen" || v.ID == "" {
		t.Errorf("ID = %q, want a generated id", v.ID)
	}
	if len(v.Images) != 0 {
		t.Errorf("Images = %v, want none", v.Images)
	}
	if v.CreatedAt.IsZero() || !v.CreatedAt.Equal(v.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", v.CreatedAt, v.UpdatedAt)
	}
}

func TestCreateValidates(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		venue models.Venue
	}{
		{"missing name", models.Venue{Location: "Dhaka"}},
		{"negative price", models.Venue{Name: "A", Location: "Dhaka", Price: -1}},
		{"rating above five", models.Venue{Name: "A", Location: "Dhaka", Rating: 5.5}},
	}
	for _, tt := range tests {
		_, err := svc.Venues.Create(ctx, &tt.venue)
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: error = %v, want validation error", tt.name, err)
		}
	}
}

func TestListKeepsCreationOrder(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.Studios.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("List() on empty = %v, %v; want empty non-nil", empty, err)
	}
	for _, name := range []string{"Lens", "Aperture", "Frame"} {
		if _, err := svc.Studios.Create(ctx, &models.Studio{Name: name, Location: "Sylhet"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.Studios.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(got))
	for i := range got {
		names[i] = got[i].Name
	}
	if strings.Join(names, ",") != "Lens,Aperture,Frame" {
		t.Errorf("order = %v", names)
	}
}

func TestUpdateKeepsIdentityAndImages(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Venues.Create(ctx, &models.Venue{Name: "Rose Hall", Location: "Dhaka", Price: 5000})
	if err != nil {
		t.Fatal(err)
	}
	withImg, err := svc.Venues.AddImage(ctx, v.ID, "image/jpeg", []byte("jpeg"))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Venues.Update(ctx, v.ID, &models.Venue{ID: "other", Name: "Rose Garden", Location: "Dhaka", Price: 6000})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != v.ID || !updated.CreatedAt.Equal(v.CreatedAt) {
		t.Errorf("identity changed: %+v", updated)
	}
	if updated.Name != "Rose Garden" || updated.Price != 6000 {
		t.Errorf("fields not updated: %+v", updated)
	}
	if len(updated.Images) != 1 || updated.Images[0] != withImg.Images[0] {
		t.Errorf("Images = %v, want %v", updated.Images, withImg.Images)
	}

	if _, err := svc.Venues.Update(ctx, "missing", &models.Venue{Name: "A", Location: "B"}); models.KindOf(err) != models.KindNotFound {
		t.Errorf("Update(missing) kind = %v, want not found", models.KindOf(err))
	}
}

func TestDeleteIsBestEffortForImages(t *testing.T) {
	t.Parallel()

	svc, images, logs := newTestService(t)
	ctx := context.Background()

	d, err := svc.Decorations.Create(ctx, &models.Decoration{Name: "Marigold arch", Theme: "traditional"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if d, err = svc.Decorations.AddImage(ctx, d.ID, "image/png", []byte("png")); err != nil {
			t.Fatal(err)
		}
	}
	images.failDelete[d.Images[1]] = true

	if err := svc.Decorations.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Decorations.Get(ctx, d.ID); models.KindOf(err) != models.KindNotFound {
		t.Errorf("Get after delete kind = %v, want not found", models.KindOf(err))
	}
	if len(images.deleted) != 2 {
		t.Errorf("deleted %d images, want 2", len(images.deleted))
	}
	if !strings.Contains(logs.String(), "failed to delete image") {
		t.Errorf("image failure was not logged: %s", logs.String())
	}
}

func TestAddImageRules(t *testing.T) {
	t.Parallel()

	svc, images, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Studios.AddImage(ctx, "missing", "image/png", []byte("x")); models.KindOf(err) != models.KindNotFound {
		t.Errorf("missing studio kind = %v", models.KindOf(err))
	}
	s, err := svc.Studios.Create(ctx, &models.Studio{Name: "Lens", Location: "Sylhet"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Studios.AddImage(ctx, s.ID, "text/plain", []byte("x")); models.KindOf(err) != models.KindValidation {
		t.Errorf("text/plain kind = %v", models.KindOf(err))
	}
	for i := 0; i < MaxImages; i++ {
		if _, err := svc.Studios.AddImage(ctx, s.ID, "image/webp", []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Studios.AddImage(ctx, s.ID, "image/webp", []byte("x")); models.KindOf(err) != models.KindValidation {
		t.Errorf("image over limit kind = %v", models.KindOf(err))
	}
	if len(images.uploaded) != MaxImages {
		t.Errorf("uploaded = %d, want %d", len(images.uploaded), MaxImages)
	}
	if _, err := svc.Categories.AddImage(ctx, "any", "image/png", []byte("x")); models.KindOf(err) != models.KindValidation {
		t.Errorf("category image kind = %v", models.KindOf(err))
	}
}

func TestRemoveImage(t *testing.T) {
	t.Parallel()

	svc, images, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.Decorations.Create(ctx, &models.Decoration{Name: "Lanterns"})
	if err != nil {
		t.Fatal(err)
	}
	d, err = svc.Decorations.AddImage(ctx, d.ID, "image/gif", []byte("gif"))
	if err != nil {
		t.Fatal(err)
	}
	url := d.Images[0]

	d, err = svc.Decorations.RemoveImage(ctx, d.ID, url)
	if err != nil {
		t.Fatalf("RemoveImage() error = %v", err)
	}
	if len(d.Images) != 0 || len(images.deleted) != 1 {
		t.Errorf("images = %v, deleted = %v", d.Images, images.deleted)
	}
	if _, err := svc.Decorations.RemoveImage(ctx, d.ID, url); models.KindOf(err) != models.KindNotFound {
		t.Errorf("second RemoveImage kind = %v", models.KindOf(err))
	}
}

func TestDishesAndCategories(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Dishes.Create(ctx, &models.Dish{CategoryID: "nope", Name: "Kacchi", Price: 20}); models.KindOf(err) != models.KindValidation {
		t.Errorf("dish with unknown category kind = %v", models.KindOf(err))
	}

	cat, err := svc.Categories.Create(ctx, &models.CuisineCategory{Name: "Mains"})
	if err != nil {
		t.Fatal(err)
	}
	dish, err := svc.Dishes.Create(ctx, &models.Dish{CategoryID: cat.ID, Name: "Kacchi", Price: 20})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.DishesInCategory(ctx, cat.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("DishesInCategory() = %v, %v", got, err)
	}
	if _, err := svc.DishesInCategory(ctx, "missing"); models.KindOf(err) != models.KindNotFound {
		t.Errorf("unknown category kind = %v", models.KindOf(err))
	}

	if err := svc.Categories.Delete(ctx, cat.ID); models.KindOf(err) != models.KindConflict {
		t.Errorf("delete used category kind = %v, want conflict", models.KindOf(err))
	}
	if err := svc.Dishes.Delete(ctx, dish.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Categories.Delete(ctx, cat.ID); err != nil {
		t.Errorf("delete empty category error = %v", err)
	}
}

func TestLookupAndSnapshot(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Venues.Create(ctx, &models.Venue{Name: "Rose Hall", Location: "Dhaka", Price: 5000})
	if err != nil {
		t.Fatal(err)
	}
	item, err := svc.Lookup(ctx, models.ItemVenue, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Name != "Rose Hall" || item.Price != 5000 {
		t.Errorf("Lookup() = %+v", item)
	}
	if _, err := svc.Lookup(ctx, models.ItemStudio, v.ID); models.KindOf(err) != models.KindNotFound {
		t.Errorf("venue id as studio kind = %v", models.KindOf(err))
	}
	if _, err := svc.Lookup(ctx, "decoration", v.ID); models.KindOf(err) != models.KindValidation {
		t.Errorf("decoration lookup kind = %v", models.KindOf(err))
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Venues) != 1 || len(snap.Studios) != 0 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}
