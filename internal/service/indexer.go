package service

import (
	"context"
	"errors"

	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/search"
)

// ErrSearchDisabled is returned by the noop indexer's Search.
var ErrSearchDisabled = errors.New("search index disabled")

// SearchIndexer keeps a full-text index in step with the event collection.
// *search.SearchIndex satisfies it.
type SearchIndexer interface {
	IndexEvent(e domain.Event) error
	DeleteEvent(eventID int64) error
	Rebuild(events []domain.Event) error
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// Emitter publishes change notifications. *sse.Manager satisfies it.
type Emitter interface {
	Emit(event any)
}

// NoopIndexer is used when search is disabled.
type NoopIndexer struct{}

func (NoopIndexer) IndexEvent(domain.Event) error { return nil }
func (NoopIndexer) DeleteEvent(int64) error { return nil }
func (NoopIndexer) Rebuild([]domain.Event) error { return nil }
func (NoopIndexer) Search(context.Context, search.Params) (*search.Result, error) {
	return nil, ErrSearchDisabled
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(any) {}
