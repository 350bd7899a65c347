// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package api exposes the booking backend over HTTP using the chi router.
//
// Every JSON response uses one envelope:
//
//	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}
//
// Service errors carry a models.ErrorKind which respondError maps to a
// status: validation 400, authentication 401, authorization 403, not found
// 404, conflict 409, rate limited 429, external service 502 and anything
// else 500 with a generic message. The payment webhook is the exception:
// it answers {"received": true} so the processor's own client understands it.
//
// Route groups:
//
//	/api/v1/health/*           probes, no auth
//	/api/v1/auth/*             account flows, strict per-IP rate limit
//	/api/v1/{catalog kind}     public catalog reads
//	/api/v1/wedding-package    budget recommendation
//	/api/v1/cart, /orders, /payments   bearer token or cookie, casbin policy
//	/api/v1/admin/*            admin role only
//	/metrics                   Prometheus
package api
