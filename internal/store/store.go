// Package store persists the event collection and the bookmark ids as two
// independent JSON records in a key-value backend.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/seed"
)

// Backend is a minimal key-value store. Get returns ErrNotFound for absent keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options configures a Store.
type Options struct {
	// Seed is returned by LoadEvents when the events record is unusable.
	// Nil uses the built-in sample events.
	Seed   []domain.Event
	Logger *slog.Logger
}

// Store reads and writes the events and bookmarks records.
// It never mutates what it is given and never holds state beyond the backend.
type Store struct {
	backend Backend
	seed    []domain.Event
	logger  *slog.Logger
}

// New creates a Store over backend.
func New(backend Backend, opts Options) *Store {
	if opts.Seed == nil {
		opts.Seed = seed.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		backend: backend,
		seed:    domain.CloneEvents(opts.Seed),
		logger:  opts.Logger,
	}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Seed returns a copy of the fallback event collection.
func (s *Store) Seed() []domain.Event {
	return domain.CloneEvents(s.seed)
}

// LoadEvents returns the persisted events, or the seed collection when the
// record is absent, unreadable or not a JSON array. Elements of the array
// that do not decode as events are skipped; the rest are kept.
func (s *Store) LoadEvents(ctx context.Context) []domain.Event {
	var raw []json.RawMessage
	if err := s.read(ctx, KeyEvents, &raw); err != nil {
		s.logger.Debug("events record unusable, using seed", "error", err, "seed_events", len(s.seed))
		return s.Seed()
	}
	if raw == nil {
		s.logger.Debug("events record is null, using seed")
		return s.Seed()
	}

	events := make([]domain.Event, 0, len(raw))
	for i, elem := range raw {
		var e domain.Event
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			s.logger.Debug("skipping null event", "index", i)
			continue
		}
		if err := json.Unmarshal(elem, &e); err != nil {
			s.logger.Debug("skipping undecodable event", "index", i, "error", err)
			continue
		}
		events = append(events, e)
	}
	return events
}

// SaveEvents writes the events record.
func (s *Store) SaveEvents(ctx context.Context, events []domain.Event) error {
	return s.write(ctx, KeyEvents, domain.CloneEvents(events))
}

// LoadBookmarks returns the persisted bookmark ids, or an empty slice on any failure.
func (s *Store) LoadBookmarks(ctx context.Context) []int64 {
	var ids []int64
	if err := s.read(ctx, KeyBookmarks, &ids); err != nil {
		s.logger.Debug("bookmarks record unusable, starting empty", "error", err)
		return []int64{}
	}
	return domain.CloneIDs(ids)
}

// SaveBookmarks writes the bookmarks record.
func (s *Store) SaveBookmarks(ctx context.Context, ids []int64) error {
	return s.write(ctx, KeyBookmarks, domain.CloneIDs(ids))
}

// Exists reports whether key holds a record.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// read fetches and decodes key. Every failure is reported as ErrStorageRead.
func (s *Store) read(ctx context.Context, key string, dest any) error {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return ErrStorageRead.WithCause(fmt.Errorf("get %s: %w", key, err))
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrStorageRead.WithCause(fmt.Errorf("decode %s: %w", key, err))
	}
	return nil
}

// write encodes and stores value under key. Failures are reported as ErrStorageWrite.
func (s *Store) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrStorageWrite.WithCause(fmt.Errorf("encode %s: %w", key, err))
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.Error("storage write failed", "key", key, "error", err)
		return ErrStorageWrite.WithCause(fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}
