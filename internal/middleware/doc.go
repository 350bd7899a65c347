// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package middleware provides HTTP middleware shared by the API router:
// request IDs wired into the logging context, Prometheus request
// instrumentation and structured access logs.
//
// All middleware uses the func(http.Handler) http.Handler shape so it
// composes with chi:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
//	r.Use(middleware.AccessLog)
package middleware
