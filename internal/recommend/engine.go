// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package recommend builds "wedding package" recommendations: one venue, one
// studio and a set of dishes chosen under three independent budgets.
//
// Scoring functions in score.go are pure. Allocate combines them over a
// catalog snapshot; Engine adds snapshot loading, logging and metrics.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
)

// CatalogSource supplies a read-only catalog snapshot per request.
// It is implemented by the store package.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*models.Catalog, error)
}

// Engine serves recommendation requests. It is safe for concurrent use.
type Engine struct {
	source CatalogSource
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine over source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(source CatalogSource, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend validates q and allocates a package from a fresh snapshot.
func (e *Engine) Recommend(ctx context.Context, q Query) (*Package, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	cat, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	pkg := Allocate(cat, q)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if pkg.Venue == nil {
		metrics.RecommendEmptyCategories.WithLabelValues("venue").Inc()
	}
	if pkg.Studio == nil {
		metrics.RecommendEmptyCategories.WithLabelValues("studio").Inc()
	}

	e.logger.Debug().
		Float64("venue_budget", q.VenueBudget).
		Float64("studio_budget", q.StudioBudget).
		Float64("food_budget", q.FoodBudget).
		Int("dishes", len(pkg.Dishes)).
		Float64("total_price", pkg.TotalPrice).
		Dur("duration", time.Since(start)).
		Msg("built wedding package")

	return pkg, nil
}
