// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/catalog"
	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/orders"
	"github.com/tomtom215/weddingbook/internal/recommend"
	"github.com/tomtom215/weddingbook/internal/store"
)

// EmailQueue is the admin view of the email queue.
type EmailQueue interface {
	Status() emailqueue.Stats
	Clear() int
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the HTTP endpoints.
type Handler struct {
	accounts  *auth.Accounts
	catalog   *catalog.Service
	orders    *orders.Service
	engine    *recommend.Engine
	queue     EmailQueue
	store     *store.Store
	health    Pinger
	maxUpload int64
	secure    bool
	startTime time.Time
}

// Deps are the collaborators NewRouter wires into handlers.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	JWT      *auth.JWTManager
	Accounts *auth.Accounts
	Catalog  *catalog.Service
	Orders   *orders.Service
	Engine   *recommend.Engine
	Queue    EmailQueue
}

func newHandler(d *Deps) *Handler {
	maxUpload := d.Config.Server.MaxUpload
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &Handler{
		accounts:  d.Accounts,
		catalog:   d.Catalog,
		orders:    d.Orders,
		engine:    d.Engine,
		queue:     d.Queue,
		store:     d.Store,
		health:    d.Store,
		maxUpload: maxUpload,
		secure:    strings.HasPrefix(d.Config.Server.PublicURL, "https://"),
		startTime: time.Now(),
	}
}
