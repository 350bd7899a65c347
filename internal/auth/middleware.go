// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenCookie is read when no Authorization header is sent.
const TokenCookie = "token"

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFromContext returns the claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates requests with access tokens.
type Middleware struct {
	jwt     *JWTManager
	onError ErrorWriter
}

// NewMiddleware uses onError to answer unauthenticated requests; nil falls
// back to a plain 401.
func NewMiddleware(jwtManager *JWTManager, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{jwt: jwtManager, onError: onError}
}

var (
	errMissingToken = models.NewAuthenticationError("missing token")
	errBadHeader    = models.NewAuthenticationError("invalid authorization header")
	errInvalidToken = models.NewAuthenticationError("invalid or expired token")
)

// Authenticate requires a valid access token and puts its claims and the
// user ID into the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			m.onError(w, r, err)
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token validation failed")
			m.onError(w, r, errInvalidToken)
			return
		}
		ctx := WithClaims(r.Context(), claims)
		ctx = logging.ContextWithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads a Bearer header, or the token cookie when there is no
// header at all.
func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		cookie, err := r.Cookie(TokenCookie)
		if err != nil || cookie.Value == "" {
			return "", errMissingToken
		}
		return cookie.Value, nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadHeader
	}
	return token, nil
}
