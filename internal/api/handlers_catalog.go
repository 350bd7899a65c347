// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/weddingbook/internal/catalog"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/storage"
)

// imageField is the multipart form field carrying an upload.
const imageField = "image"

// mountPublicCatalog registers the read-only routes of one catalog kind.
func mountPublicCatalog[T any](r chi.Router, path string, res *catalog.Resource[T]) {
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		items, err := res.List(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondList(w, r, items)
	})
	r.Get(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		item, err := res.Get(r.Context(), urlParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, r, item)
	})
}

// mountAdminCatalog registers create, update, delete and image routes of
// one catalog kind.
func mountAdminCatalog[T any](r chi.Router, path string, res *catalog.Resource[T], maxUpload int64) {
	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := res.Create(r.Context(), &v)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondCreated(w, r, created)
	})
	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			respondError(w, r, err)
			return
		}
		updated, err := res.Update(r.Context(), urlParam(r, "id"), &v)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, r, updated)
	})
	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := res.Delete(r.Context(), urlParam(r, "id")); err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, r, map[string]string{"deleted": urlParam(r, "id")})
	})
	r.Post(path+"/{id}/images", func(w http.ResponseWriter, r *http.Request) {
		contentType, data, err := readImage(w, r, maxUpload)
		if err != nil {
			respondError(w, r, err)
			return
		}
		updated, err := res.AddImage(r.Context(), urlParam(r, "id"), contentType, data)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondCreated(w, r, updated)
	})
	r.Delete(path+"/{id}/images", func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			respondError(w, r, models.NewValidationError("url query parameter is required"))
			return
		}
		updated, err := res.RemoveImage(r.Context(), urlParam(r, "id"), url)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, r, updated)
	})
}

// readImage pulls the image part out of a multipart form. The declared
// content type is ignored; the type is sniffed from the bytes.
func readImage(w http.ResponseWriter, r *http.Request, maxUpload int64) (string, []byte, error) {
	// Leave room for multipart headers around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+64<<10)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, models.NewValidationError("expected a multipart form with an %q file", imageField)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		return "", nil, models.NewValidationError("expected a multipart form with an %q file", imageField)
	}
	defer file.Close()
	if header.Size > maxUpload {
		return "", nil, models.NewValidationError("image exceeds %d bytes", maxUpload)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return "", nil, models.NewValidationError("failed to read image")
	}
	if int64(len(data)) > maxUpload {
		return "", nil, models.NewValidationError("image exceeds %d bytes", maxUpload)
	}
	contentType := http.DetectContentType(data)
	if _, ok := storage.AllowedContentTypes[contentType]; !ok {
		return "", nil, models.NewValidationError("unsupported image type %s", contentType)
	}
	return contentType, data, nil
}

// DishesInCategory lists the dishes of one cuisine category.
func (h *Handler) DishesInCategory(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalog.DishesInCategory(r.Context(), urlParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, dishes)
}
