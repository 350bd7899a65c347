// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package store is the BadgerDB document store.
//
// Every document is a JSON value under a "<kind>:<id>" key. IDs are UUIDv7,
// so key order within a kind is creation order and prefix scans return
// documents oldest first. Secondary indexes are plain keys whose value is
// the primary ID, written in the same transaction as the document.
//
// Read-modify-write operations run inside one badger transaction and are
// retried on badger.ErrConflict, which gives compare-and-set semantics for
// order finalization.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/models"
)

// maxTxnRetries bounds optimistic retries of a conflicting transaction.
const maxTxnRetries = 10

// Store wraps a badger database. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger

	Venues      *Collection[models.Venue]
	Studios     *Collection[models.Studio]
	Categories  *Collection[models.CuisineCategory]
	Dishes      *Collection[models.Dish]
	Decorations *Collection[models.Decoration]
}

// Open opens (or creates) the database described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrite
	}
	// Badger's own logger is too chatty at INFO.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return newStore(db, logger), nil
}

// OpenInMemory is used by tests and by the in-memory development mode.
func OpenInMemory() (*Store, error) {
	return Open(&config.DatabaseConfig{InMemory: true}, zerolog.Nop())
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newStore(db *badger.DB, logger zerolog.Logger) *Store {
	s := &Store{db: db, logger: logger.With().Str("component", "store").Logger()}
	s.Venues = newCollection(s, "venue", "venue", func(v *models.Venue) string { return v.ID })
	s.Studios = newCollection(s, "studio", "studio", func(v *models.Studio) string { return v.ID })
	s.Categories = newCollection(s, "category", "cuisine category", func(v *models.CuisineCategory) string { return v.ID })
	s.Dishes = newCollection(s, "dish", "dish", func(v *models.Dish) string { return v.ID })
	s.Decorations = newCollection(s, "decoration", "decoration", func(v *models.Decoration) string { return v.ID })
	return s
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// NewID returns a time-ordered document ID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// update runs fn in a read-write transaction, retrying on conflict.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt >= maxTxnRetries {
			return models.NewConflictError("concurrent update, please retry")
		}
		s.logger.Debug().Int("attempt", attempt).Msg("transaction conflict, retrying")
		time.Sleep(time.Duration(attempt) * time.Millisecond)
	}
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// getJSON decodes the value at key into v. It returns badger.ErrKeyNotFound
// unchanged so callers can map it.
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func getString(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// scanJSON decodes every value under prefix, in key order.
func scanJSON[T any](txn *badger.Txn, prefix []byte) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []T
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// scanIndex returns the values of index keys under prefix.
func scanIndex(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		ids = append(ids, string(val))
	}
	return ids, nil
}
