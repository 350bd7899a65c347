// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"io"
	"net/http"

	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/orders"
)

// maxWebhookBody bounds payment webhook payloads.
const maxWebhookBody = 64 << 10

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// UpdateCartItemRequest is the body of PUT /cart/items/{itemId}.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the caller's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.orders.Cart(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, cart)
}

// AddCartItem adds a catalog item at its current price.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req orders.AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	cart, err := h.orders.AddToCart(r.Context(), userID(r), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, cart)
}

// UpdateCartItem changes the quantity of a cart line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	cart, err := h.orders.UpdateCartItem(r.Context(), userID(r), urlParam(r, "itemId"), req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, cart)
}

// RemoveCartItem drops a cart line.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.orders.RemoveCartItem(r.Context(), userID(r), urlParam(r, "itemId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, cart)
}

// ClearCart empties the caller's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.orders.ClearCart(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, cart)
}

// Checkout turns the cart into a pending order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Checkout(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, r, order)
}

// MyOrders lists the caller's orders, newest first.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.OrdersForUser(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, list)
}

// GetOrder returns one of the caller's orders.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.OrderForUser(r.Context(), userID(r), urlParam(r, "orderId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, order)
}

// StartPayment begins cash-after-service or online payment.
func (h *Handler) StartPayment(w http.ResponseWriter, r *http.Request) {
	var req orders.StartPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.orders.StartPayment(r.Context(), userID(r), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, result)
}

// PaymentStatus reconciles a checkout session with the processor.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.orders.PollStatus(r.Context(), userID(r), urlParam(r, "sessionId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, status)
}

// PaymentWebhook verifies and applies a processor event. Only a bad
// signature is rejected; every verified delivery is acknowledged so the
// processor stops retrying.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.orders.HandleWebhook(r.Context(), payload, r.Header.Get(StripeSignatureHeader)); err != nil {
		if models.KindOf(err) != models.KindValidation {
			logging.Ctx(r.Context()).Error().Err(err).Msg("webhook handling failed")
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// AdminOrders lists every order.
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.AllOrders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, list)
}

// AdminCancelOrder cancels an order and its bookings.
func (h *Handler) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Cancel(r.Context(), urlParam(r, "orderId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, order)
}

// AdminCompleteOrder marks a confirmed order as delivered.
func (h *Handler) AdminCompleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Complete(r.Context(), urlParam(r, "orderId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, order)
}
