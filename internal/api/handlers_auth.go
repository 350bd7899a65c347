// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/weddingbook/internal/auth"
)

// genericEmailAck is returned whether or not the account exists.
const genericEmailAck = "If an account exists for that address, an email is on its way."

// Register creates an account and sends a verification code.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	u, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, r, map[string]interface{}{
		"user":    u,
		"message": "Verification code sent to " + u.Email,
	})
}

// VerifyEmail checks the code and logs the user in.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sess, err := h.accounts.VerifyEmail(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess)
	respondOK(w, r, sess)
}

// ResendOTP issues a fresh verification code.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.accounts.ResendOTP(r.Context(), &req); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"message": genericEmailAck})
}

// Login issues an access token, both in the body and as a cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sess, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess)
	respondOK(w, r, sess)
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondOK(w, r, map[string]string{"message": "Logged out"})
}

// ForgotPassword always answers 200 so callers cannot probe for accounts.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.accounts.ForgotPassword(r.Context(), &req); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"message": genericEmailAck})
}

// ResetPassword sets a new password from a reset link token.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), &req); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"message": "Password updated, please log in"})
}

// Me returns the caller's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Me(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, u)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
