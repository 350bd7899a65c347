// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package authz enforces role-based access to API routes using Casbin.
//
// Requests flow through authentication first and authorization second:
//
//	Request -> auth.Authenticate -> authz.AuthorizeRequest -> Handler
//
// The model is RBAC with path patterns and action regexes:
//
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
//
// The subject is the role carried in the access token ("user" or "admin").
// Actions come from the HTTP method: GET/HEAD/OPTIONS are read,
// POST/PUT/PATCH are write, DELETE is delete. The admin role inherits
// every customer permission and adds /api/v1/admin/*.
//
// Public routes (catalog reads, the wedding package, account flows, the
// payment webhook and health probes) are mounted outside this middleware.
package authz
