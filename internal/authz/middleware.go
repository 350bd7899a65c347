// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package authz

import (
	"net/http"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
)

// Middleware enforces the route policy for authenticated requests.
type Middleware struct {
	enforcer *Enforcer
	onError  auth.ErrorWriter
}

// NewMiddleware renders denials through onError. A nil onError writes
// plain text responses.
func NewMiddleware(enforcer *Enforcer, onError auth.ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			status := http.StatusForbidden
			if models.KindOf(err) == models.KindInternal {
				status = http.StatusInternalServerError
			}
			http.Error(w, models.PublicMessage(err), status)
		}
	}
	return &Middleware{enforcer: enforcer, onError: onError}
}

// AuthorizeRequest checks the caller's role against the request path and
// the action derived from its method. It must run after auth.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			m.onError(w, r, models.NewAuthorizationError("no authentication context"))
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(claims.Role, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("authorization error")
			m.onError(w, r, models.NewInternalError(err))
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("access denied")
			m.onError(w, r, models.NewAuthorizationError("insufficient permissions"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
