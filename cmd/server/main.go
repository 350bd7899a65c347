// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package main is the entry point for the Weddingbook server.
//
// Weddingbook is the booking backend of a wedding services shop: customers
// browse venues, studios, dishes and decorations, ask for a package that
// fits three budgets, and order through a cart with cash-after-service or
// Stripe checkout. Admins maintain the catalog and watch the email queue.
//
// # Startup
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. Store: embedded BadgerDB, optionally seeded with a demo catalog
//  3. Images: S3 (or any S3-compatible endpoint) when a bucket is set
//  4. Mail: SMTP, SES or log transport behind a circuit breaker, fed by the
//     in-process email queue
//  5. Payments: Stripe checkout when a secret key is set
//  6. Accounts, authorization (Casbin) and the HTTP API (Chi)
//  7. Supervisor tree: store GC, email queue, throttle sweeper, HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
// requests and the email queue stops after the job it is sending.
//
// # Example Usage
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_EMAIL=owner@example.com
//	export MAIL_TRANSPORT=log
//	export SEED_DEMO_DATA=true
//	./weddingbook
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/weddingbook/internal/api"
	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/authz"
	"github.com/tomtom215/weddingbook/internal/catalog"
	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/mail"
	"github.com/tomtom215/weddingbook/internal/orders"
	"github.com/tomtom215/weddingbook/internal/payments"
	"github.com/tomtom215/weddingbook/internal/recommend"
	"github.com/tomtom215/weddingbook/internal/storage"
	"github.com/tomtom215/weddingbook/internal/store"
	"github.com/tomtom215/weddingbook/internal/supervisor"
	"github.com/tomtom215/weddingbook/internal/supervisor/services"
)

const storeGCInterval = 10 * time.Minute

//nolint:gocyclo // sequential wiring of every component
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("in_memory", cfg.Database.InMemory).
		Str("mail_transport", cfg.Mail.Transport).
		Bool("payments", cfg.Payments.Enabled()).
		Msg("Starting Weddingbook")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORE ===

	st, err := store.Open(&cfg.Database, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	images, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize image storage")
	}
	if cfg.Storage.Bucket == "" {
		logging.Warn().Msg("S3_BUCKET not set, image uploads are disabled")
	}

	cat := catalog.NewService(st, images, logger)
	if cfg.Database.SeedDemo {
		if _, err := cat.SeedDemo(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo catalog")
		}
	}

	// === MAIL ===

	transport, err := mail.NewTransport(ctx, &cfg.Mail, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize mail transport")
	}
	queue := emailqueue.New(
		mail.NewDispatcher(transport, cfg.Mail.FromName, logger),
		emailqueue.Config{
			RetryDelay:         cfg.Queue.RetryDelay,
			Pacing:             cfg.Queue.Pacing,
			SendTimeout:        cfg.Queue.SendTimeout,
			DefaultPriority:    cfg.Queue.DefaultPriority,
			DefaultMaxAttempts: cfg.Queue.MaxAttempts,
		},
		logger,
	)
	logging.Info().Str("transport", transport.Name()).Msg("Email queue ready")

	// === PAYMENTS ===

	var processor payments.Processor = payments.Disabled{}
	if cfg.Payments.Enabled() {
		processor = payments.NewStripe(&cfg.Payments)
		logging.Info().Str("currency", cfg.Payments.Currency).Msg("Stripe checkout enabled")
	} else {
		logging.Warn().Msg("STRIPE_SECRET_KEY not set, only cash after service is available")
	}

	// === ACCOUNTS AND API ===

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	accounts := auth.NewAccounts(st, jwtManager, queue, cfg, logger)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	router := api.NewRouter(&api.Deps{
		Config:   cfg,
		Store:    st,
		JWT:      jwtManager,
		Accounts: accounts,
		Catalog:  cat,
		Orders:   orders.NewService(st, cat, processor, queue, logger),
		Engine:   recommend.NewEngine(cat, logger),
		Queue:    queue,
	}, enforcer)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(store.NewGarbageCollector(st, storeGCInterval))
	tree.AddWorkerService(queue)
	tree.AddWorkerService(accounts)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Supervisor.ShutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	stats := queue.Status()
	if stats.Waiting+stats.Retrying > 0 {
		logging.Warn().Int("waiting", stats.Waiting).Int("retrying", stats.Retrying).
			Msg("Unsent emails dropped at shutdown")
	}
	logging.Info().Msg("Application stopped gracefully")
}
