// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/validation"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is safe to show to end users
	Message string `json:"message"`

	Details interface{} `json:"details,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeConflict            = "CONFLICT"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

func newMeta(r *http.Request) *APIMeta {
	return &APIMeta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

// respondOK writes a 200 envelope around data.
func respondOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusOK, &APIResponse{Success: true, Data: data, Meta: newMeta(r)})
}

// respondCreated writes a 201 envelope around data.
func respondCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusCreated, &APIResponse{Success: true, Data: data, Meta: newMeta(r)})
}

// respondList adds the item count to the metadata.
func respondList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	meta := newMeta(r)
	n := len(items)
	meta.Count = &n
	writeJSON(w, http.StatusOK, &APIResponse{Success: true, Data: items, Meta: meta})
}

// respondErrorCode writes an error envelope with an explicit status.
func respondErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	writeJSON(w, status, &APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
		Meta:    newMeta(r),
	})
}

// respondError maps err to a status code and error envelope. Internal
// errors are logged with full detail and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		respondErrorCode(w, r, http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, apiErr.Details)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondErrorCode(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large", nil)
		return
	}

	status, code := statusForKind(models.KindOf(err))
	switch {
	case status >= http.StatusInternalServerError:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	respondErrorCode(w, r, status, code, models.PublicMessage(err), nil)
}

func statusForKind(k models.ErrorKind) (int, string) {
	switch k {
	case models.KindValidation:
		return http.StatusBadRequest, ErrCodeValidationFailed
	case models.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case models.KindAuthentication:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case models.KindAuthorization:
		return http.StatusForbidden, ErrCodeForbidden
	case models.KindConflict:
		return http.StatusConflict, ErrCodeConflict
	case models.KindRateLimited:
		return http.StatusTooManyRequests, ErrCodeTooManyRequests
	case models.KindExternalService:
		return http.StatusBadGateway, ErrCodeExternalServiceFail
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeJSON writes v with the JSON content type.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
