// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/models"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads one JSON object from the body into v. Unknown fields are
// rejected so typos surface as 400s instead of silently dropped input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return models.NewValidationError("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return models.NewValidationError("request body is required")
		default:
			return models.NewValidationError("invalid JSON body: %s", err.Error())
		}
	}
	if dec.More() {
		return models.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}

// userID returns the authenticated caller. Routes using it sit behind
// auth.Authenticate, so a missing claim is a wiring bug.
func userID(r *http.Request) string {
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		return c.UserID
	}
	return ""
}

func urlParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
