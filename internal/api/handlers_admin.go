// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"net/http"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/recommend"
)

// WeddingPackage recommends a venue, a studio and dishes under three
// budgets given as query parameters.
func (h *Handler) WeddingPackage(w http.ResponseWriter, r *http.Request) {
	q, err := recommend.ParseQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	pkg, err := h.engine.Recommend(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, pkg)
}

// EmailQueueStatus reports queue counters.
func (h *Handler) EmailQueueStatus(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.queue.Status())
}

// ClearEmailQueue drops every pending email job.
func (h *Handler) ClearEmailQueue(w http.ResponseWriter, r *http.Request) {
	n := h.queue.Clear()
	logging.Ctx(r.Context()).Warn().Int("dropped", n).Msg("email queue cleared by admin")
	respondOK(w, r, map[string]int{"cleared": n})
}

// AdminUsers lists every account.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, users)
}
