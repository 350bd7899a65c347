// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/authz"
	"github.com/tomtom215/weddingbook/internal/middleware"
)

// NewRouter wires every route. enforcer guards the authenticated routes.
func NewRouter(d *Deps, enforcer *authz.Enforcer) http.Handler {
	h := newHandler(d)
	mw := NewChiMiddleware(ChiMiddlewareConfigFrom(&d.Config.Security))
	authn := auth.NewMiddleware(d.JWT, respondError)
	authzMW := authz.NewMiddleware(enforcer, respondError)

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondErrorCode(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondErrorCode(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		// Signature-verified; must stay outside rate limits so processor
		// retries are never refused.
		r.Post("/payments/webhook", h.PaymentWebhook)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			// ========================
			// Accounts
			// ========================
			r.Route("/auth", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimitAuth())
					r.Post("/register", h.Register)
					r.Post("/verify-email", h.VerifyEmail)
					r.Post("/resend-otp", h.ResendOTP)
					r.Post("/login", h.Login)
					r.Post("/forgot-password", h.ForgotPassword)
					r.Post("/reset-password", h.ResetPassword)
				})
				r.Post("/logout", h.Logout)
				r.With(authn.Authenticate, authzMW.AuthorizeRequest).Get("/me", h.Me)
			})

			// ========================
			// Public catalog
			// ========================
			mountPublicCatalog(r, "/venues", d.Catalog.Venues)
			mountPublicCatalog(r, "/studios", d.Catalog.Studios)
			mountPublicCatalog(r, "/categories", d.Catalog.Categories)
			mountPublicCatalog(r, "/dishes", d.Catalog.Dishes)
			mountPublicCatalog(r, "/decorations", d.Catalog.Decorations)
			r.Get("/categories/{id}/dishes", h.DishesInCategory)
			r.Get("/wedding-package", h.WeddingPackage)

			// ========================
			// Authenticated
			// ========================
			r.Group(func(r chi.Router) {
				r.Use(authn.Authenticate)
				r.Use(authzMW.AuthorizeRequest)

				r.Get("/cart", h.GetCart)
				r.Delete("/cart", h.ClearCart)
				r.Post("/cart/items", h.AddCartItem)
				r.Put("/cart/items/{itemId}", h.UpdateCartItem)
				r.Delete("/cart/items/{itemId}", h.RemoveCartItem)

				r.Get("/orders", h.MyOrders)
				r.Post("/orders/checkout", h.Checkout)
				r.Get("/orders/{orderId}", h.GetOrder)

				r.Post("/payments/start-payment", h.StartPayment)
				r.Get("/payments/status/{sessionId}", h.PaymentStatus)

				r.Route("/admin", func(r chi.Router) {
					mountAdminCatalog(r, "/venues", d.Catalog.Venues, h.maxUpload)
					mountAdminCatalog(r, "/studios", d.Catalog.Studios, h.maxUpload)
					mountAdminCatalog(r, "/categories", d.Catalog.Categories, h.maxUpload)
					mountAdminCatalog(r, "/dishes", d.Catalog.Dishes, h.maxUpload)
					mountAdminCatalog(r, "/decorations", d.Catalog.Decorations, h.maxUpload)

					r.Get("/orders", h.AdminOrders)
					r.Post("/orders/{orderId}/cancel", h.AdminCancelOrder)
					r.Post("/orders/{orderId}/complete", h.AdminCompleteOrder)
					r.Get("/users", h.AdminUsers)

					r.Get("/email-queue/status", h.EmailQueueStatus)
					r.Post("/email-queue/clear", h.ClearEmailQueue)
				})
			})
		})
	})

	return r
}
