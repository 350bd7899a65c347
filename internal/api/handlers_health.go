// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/weddingbook/internal/logging"
)

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	StoreConnected *bool   `json:"storeConnected,omitempty"`
	EmailQueue     *int    `json:"emailQueueDepth,omitempty"`
	Uptime         float64 `json:"uptimeSeconds"`
}

// HealthLive answers as long as the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, HealthStatus{Status: "alive", Uptime: time.Since(h.startTime).Seconds()})
}

// HealthReady reports 503 while the store is unreachable so load
// balancers stop routing traffic here.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	connected := true
	status := HealthStatus{Status: "ready", StoreConnected: &connected, Uptime: time.Since(h.startTime).Seconds()}
	if h.queue != nil {
		depth := h.queue.Status().Total
		status.EmailQueue = &depth
	}
	if err := h.health.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		status.Status = "unavailable"
		connected = false
		writeJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Success: false,
			Data:    status,
			Error:   &APIError{Code: ErrCodeServiceUnavailable, Message: "store unavailable"},
			Meta:    newMeta(r),
		})
		return
	}
	respondOK(w, r, status)
}
