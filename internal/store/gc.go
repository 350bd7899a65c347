// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// GCRatio is the discard ratio passed to RunValueLogGC.
const GCRatio = 0.5

// GarbageCollector periodically reclaims value log space. It implements
// suture.Service.
type GarbageCollector struct {
	store    *Store
	interval time.Duration
}

// NewGarbageCollector runs GC every interval (default 10 minutes).
func NewGarbageCollector(s *Store, interval time.Duration) *GarbageCollector {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GarbageCollector{store: s, interval: interval}
}

// Serve blocks until ctx is done.
func (g *GarbageCollector) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := g.store.RunGC(); err != nil {
				g.store.logger.Error().Err(err).Msg("value log GC failed")
			}
		}
	}
}

func (g *GarbageCollector) String() string {
	return "store-gc"
}

// RunGC rewrites value log files until there is nothing left to reclaim.
// It is a no-op for in-memory databases.
func (s *Store) RunGC() error {
	if s.db.Opts().InMemory {
		return nil
	}
	start := time.Now()
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
		rewrites++
	}
	s.logger.Debug().Int("rewrites", rewrites).Dur("duration", time.Since(start)).Msg("value log GC finished")
	return nil
}
