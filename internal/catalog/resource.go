// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package catalog

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/storage"
	"github.com/tomtom215/weddingbook/internal/store"
	"github.com/tomtom215/weddingbook/internal/validation"
)

// MaxImages caps the images attached to one document.
const MaxImages = 10

// fields gives Resource access to the bookkeeping fields of T. updated and
// images are nil for kinds that do not carry them.
type fields[T any] struct {
	id      func(*T) *string
	created func(*T) *time.Time
	updated func(*T) *time.Time
	images  func(*T) *[]string
}

// Resource implements admin CRUD and image handling for one catalog kind.
type Resource[T any] struct {
	kind   string
	coll   *store.Collection[T]
	images storage.ImageStore
	logger zerolog.Logger
	f      fields[T]

	// check validates references before create and update.
	check func(ctx context.Context, v *T) error
	// guardDelete rejects deletes that would orphan other documents.
	guardDelete func(ctx context.Context, id string) error
}

func (r *Resource[T]) Kind() string { return r.kind }

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	items, err := r.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.coll.Get(ctx, id)
}

// Create assigns a new ID and timestamps. Images cannot be set here; they
// are attached through AddImage.
func (r *Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	if err := r.validate(ctx, v); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	*r.f.id(v) = store.NewID()
	*r.f.created(v) = now
	if r.f.updated != nil {
		*r.f.updated(v) = now
	}
	if r.f.images != nil {
		*r.f.images(v) = nil
	}
	if err := r.coll.Create(ctx, v); err != nil {
		return nil, err
	}
	r.logger.Info().Str("id", *r.f.id(v)).Msg("created")
	return v, nil
}

// Update replaces the editable fields of id with v. ID, creation time and
// images are kept from the stored document.
func (r *Resource[T]) Update(ctx context.Context, id string, v *T) (*T, error) {
	if err := r.validate(ctx, v); err != nil {
		return nil, err
	}
	return r.coll.Update(ctx, id, func(cur *T) error {
		next := *v
		*r.f.id(&next) = *r.f.id(cur)
		*r.f.created(&next) = *r.f.created(cur)
		if r.f.updated != nil {
			*r.f.updated(&next) = time.Now().UTC()
		}
		if r.f.images != nil {
			*r.f.images(&next) = *r.f.images(cur)
		}
		*cur = next
		return nil
	})
}

// Delete removes the document, then its images. Image failures are logged
// and do not fail the delete.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if r.guardDelete != nil {
		if err := r.guardDelete(ctx, id); err != nil {
			return err
		}
	}
	deleted, err := r.coll.Delete(ctx, id)
	if err != nil {
		return err
	}
	r.logger.Info().Str("id", id).Msg("deleted")
	if r.f.images == nil {
		return nil
	}
	for _, url := range *r.f.images(deleted) {
		if err := r.images.Delete(ctx, url); err != nil {
			r.logger.Warn().Err(err).Str("id", id).Str("image", url).Msg("failed to delete image")
		}
	}
	return nil
}

// AddImage uploads an image and appends its URL to the document.
func (r *Resource[T]) AddImage(ctx context.Context, id, contentType string, data []byte) (*T, error) {
	if r.f.images == nil {
		return nil, models.NewValidationError("%s does not have images", r.kind)
	}
	cur, err := r.coll.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(*r.f.images(cur)) >= MaxImages {
		return nil, models.NewValidationError("a %s can have at most %d images", r.kind, MaxImages)
	}
	key, err := storage.NewKey(r.kind, contentType)
	if err != nil {
		return nil, err
	}
	url, err := r.images.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	updated, err := r.coll.Update(ctx, id, func(v *T) error {
		imgs := r.f.images(v)
		if len(*imgs) >= MaxImages {
			return models.NewValidationError("a %s can have at most %d images", r.kind, MaxImages)
		}
		*imgs = append(*imgs, url)
		if r.f.updated != nil {
			*r.f.updated(v) = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		if derr := r.images.Delete(ctx, url); derr != nil {
			r.logger.Warn().Err(derr).Str("image", url).Msg("failed to remove orphaned image")
		}
		return nil, err
	}
	return updated, nil
}

// RemoveImage detaches url from the document and deletes it from the
// object store. The detach is kept even if the object delete fails.
func (r *Resource[T]) RemoveImage(ctx context.Context, id, url string) (*T, error) {
	if r.f.images == nil {
		return nil, models.NewValidationError("%s does not have images", r.kind)
	}
	updated, err := r.coll.Update(ctx, id, func(v *T) error {
		imgs := r.f.images(v)
		kept := (*imgs)[:0]
		found := false
		for _, u := range *imgs {
			if u == url {
				found = true
				continue
			}
			kept = append(kept, u)
		}
		if !found {
			return models.NewNotFoundError("image")
		}
		*imgs = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.images.Delete(ctx, url); err != nil {
		r.logger.Warn().Err(err).Str("id", id).Str("image", url).Msg("failed to delete image")
	}
	return updated, nil
}

func (r *Resource[T]) validate(ctx context.Context, v *T) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	if r.check != nil {
		return r.check(ctx, v)
	}
	return nil
}
