// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the HTTP layer and for logging.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindAuthentication
	KindConflict
	KindExternalService
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindAuthentication:
		return "authentication"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is the typed error returned by domain services. Message is safe to
// show to clients; Err carries the underlying cause for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinels for store lookups. Services translate them into *Error.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found", Err: ErrNotFound}
}

func NewAuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NewAuthenticationError(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: ErrConflict}
}

// NewExternalServiceError wraps a mail, payment or object store failure.
func NewExternalServiceError(service string, err error) *Error {
	return &Error{Kind: KindExternalService, Message: service + " is unavailable", Err: err}
}

// NewRateLimitError reports a per-account throttle, not the per-IP limiter.
func NewRateLimitError(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// NewInternalError hides err from clients behind a generic message.
func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for untyped errors. ErrNotFound maps to KindNotFound.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// PublicMessage returns the client-safe message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "resource not found"
	}
	return "internal server error"
}
