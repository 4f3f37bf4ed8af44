// Package service holds the event board's business logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/eventboard/eventboard-server/internal/category"
	"github.com/eventboard/eventboard-server/internal/domain"
	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/filter"
	"github.com/eventboard/eventboard-server/internal/id"
	"github.com/eventboard/eventboard-server/internal/search"
	"github.com/eventboard/eventboard-server/internal/sse"
	"github.com/eventboard/eventboard-server/internal/store"
	"github.com/eventboard/eventboard-server/internal/validation"
)

// User-facing messages.
const (
	MsgNameRequired     = "Please provide a name for the event."
	MsgLocationRequired = "Please provide a location."
	MsgDateRequired     = "Please select a date."
	MsgCategoryRequired = "Please choose or enter a category."
	MsgEventAdded       = "Event added successfully!"
)

// Snapshot is a copy of the collection taken after a read or a mutation.
type Snapshot struct {
	Events    []domain.Event `json:"events"`
	Bookmarks []int64        `json:"bookmarks"`
}

// eventInput is a trimmed NewEvent. Fields are validated in declaration order.
type eventInput struct {
	Name        string `json:"name" validate:"required" msg:"Please provide a name for the event."`
	Location    string `json:"location" validate:"required" msg:"Please provide a location."`
	Date        string `json:"date" validate:"required" msg:"Please select a date."`
	Category    string `json:"category" validate:"required" msg:"Please choose or enter a category."`
	Description string `json:"description"`
}

// EventService owns the in-memory event collection and bookmark set.
// Every mutation is written through to storage.
type EventService struct {
	store      *store.Store
	ids        id.Sequence
	categories *category.Index
	validator  *validation.Validator
	search     SearchIndexer
	emitter    Emitter
	logger     *slog.Logger

	mu        sync.RWMutex
	events    []domain.Event
	bookmarks []int64
}

// NewEventService creates an event service. Nil categories, search and
// emitter fall back to English collation, NoopIndexer and NoopEmitter.
// Call Load before serving requests.
func NewEventService(
	st *store.Store,
	ids id.Sequence,
	categories *category.Index,
	searchIndex SearchIndexer,
	emitter Emitter,
	logger *slog.Logger,
) *EventService {
	if categories == nil {
		categories = category.Default
	}
	if searchIndex == nil {
		searchIndex = NoopIndexer{}
	}
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventService{
		store:      st,
		ids:        ids,
		categories: categories,
		validator:  validation.New(),
		search:     searchIndex,
		emitter:    emitter,
		logger:     logger,
		events:     []domain.Event{},
		bookmarks:  []int64{},
	}
}

// Load fills memory from storage and raises the id floor above every loaded id.
func (s *EventService) Load(ctx context.Context) Snapshot {
	events := s.store.LoadEvents(ctx)
	bookmarks := s.store.LoadBookmarks(ctx)

	s.mu.Lock()
	s.events = events
	s.bookmarks = bookmarks
	s.ids.Observe(domain.MaxID(events))
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("event store loaded",
		"events", len(snap.Events),
		"bookmarks", len(snap.Bookmarks),
	)
	return snap
}

// Reload re-reads both records from storage, rebuilds the search index
// and notifies subscribers.
func (s *EventService) Reload(ctx context.Context) Snapshot {
	snap := s.Load(ctx)

	if err := s.search.Rebuild(snap.Events); err != nil {
		s.logger.Warn("failed to rebuild search index after reload", "error", err)
	}
	s.emitter.Emit(sse.NewStoreReloadedEvent(len(snap.Events), len(snap.Bookmarks)))

	return snap
}

// AddEvent validates input, assigns a fresh id and appends the event.
//
// A validation failure leaves state untouched. A storage failure is
// returned after memory has already changed.
func (s *EventService) AddEvent(ctx context.Context, in domain.NewEvent) (domain.Event, Snapshot, error) {
	// 1. Trim and normalize.
	input := eventInput{
		Name:        clean(in.Name),
		Location:    clean(in.Location),
		Date:        clean(in.Date),
		Category:    clean(in.Category),
		Description: clean(in.Description),
	}

	// 2. Validate, first failure wins.
	if err := s.validator.ValidateFirst(input); err != nil {
		return domain.Event{}, s.Snapshot(), err
	}

	// 3. Assign an id and append.
	s.mu.Lock()
	ev := domain.Event{
		ID:          s.nextIDLocked(),
		Name:        input.Name,
		Category:    input.Category,
		Date:        input.Date,
		Location:    input.Location,
		Description: input.Description,
	}
	s.events = append(s.events, ev)
	events := domain.CloneEvents(s.events)
	snap := s.snapshotLocked()

	// 4. Persist. The lock is held so concurrent writes reach storage in order.
	saveErr := s.store.SaveEvents(ctx, events)
	s.mu.Unlock()

	// 5. Notify and index.
	if err := s.search.IndexEvent(ev); err != nil {
		s.logger.Warn("failed to index event", "event_id", ev.ID, "error", err)
	}
	s.emitter.Emit(sse.NewEventCreatedEvent(ev))

	if saveErr != nil {
		s.logger.Error("failed to persist new event", "event_id", ev.ID, "error", saveErr)
		return ev, snap, domainerrors.Storage(saveErr, "save events")
	}

	s.logger.Info("event added", "event_id", ev.ID, "name", ev.Name, "category", ev.Category)
	return ev, snap, nil
}

// DeleteEvent removes the event and its bookmark. Deleting an unknown id
// is a no-op, but both records are still written.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int64) (Snapshot, error) {
	s.mu.Lock()
	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e domain.Event) bool { return e.ID == eventID })
	existed := len(s.events) != before
	s.bookmarks = slices.DeleteFunc(s.bookmarks, func(b int64) bool { return b == eventID })
	snap := s.snapshotLocked()

	saveErr := errors.Join(
		s.store.SaveEvents(ctx, snap.Events),
		s.store.SaveBookmarks(ctx, snap.Bookmarks),
	)
	s.mu.Unlock()

	if existed {
		if err := s.search.DeleteEvent(eventID); err != nil {
			s.logger.Warn("failed to remove event from search index", "event_id", eventID, "error", err)
		}
		s.emitter.Emit(sse.NewEventDeletedEvent(eventID))
		s.logger.Info("event deleted", "event_id", eventID)
	}

	if saveErr != nil {
		s.logger.Error("failed to persist delete", "event_id", eventID, "error", saveErr)
		return snap, domainerrors.Storage(saveErr, "save after delete")
	}
	return snap, nil
}

// ToggleBookmark adds eventID to the bookmarks if absent and removes it
// otherwise. The id is not checked against the events.
func (s *EventService) ToggleBookmark(ctx context.Context, eventID int64) (bool, Snapshot, error) {
	s.mu.Lock()
	bookmarked := !slices.Contains(s.bookmarks, eventID)
	if bookmarked {
		s.bookmarks = append(s.bookmarks, eventID)
	} else {
		s.bookmarks = slices.DeleteFunc(s.bookmarks, func(b int64) bool { return b == eventID })
	}
	snap := s.snapshotLocked()
	saveErr := s.store.SaveBookmarks(ctx, snap.Bookmarks)
	s.mu.Unlock()

	s.emitter.Emit(sse.NewBookmarkToggledEvent(eventID, bookmarked))

	if saveErr != nil {
		s.logger.Error("failed to persist bookmarks", "event_id", eventID, "error", saveErr)
		return bookmarked, snap, domainerrors.Storage(saveErr, "save bookmarks")
	}

	s.logger.Debug("bookmark toggled", "event_id", eventID, "bookmarked", bookmarked)
	return bookmarked, snap, nil
}

// RemoveBookmark drops eventID from the bookmarks if present.
func (s *EventService) RemoveBookmark(ctx context.Context, eventID int64) (Snapshot, error) {
	s.mu.Lock()
	before := len(s.bookmarks)
	s.bookmarks = slices.DeleteFunc(s.bookmarks, func(b int64) bool { return b == eventID })
	removed := len(s.bookmarks) != before
	snap := s.snapshotLocked()
	saveErr := s.store.SaveBookmarks(ctx, snap.Bookmarks)
	s.mu.Unlock()

	if removed {
		s.emitter.Emit(sse.NewBookmarkToggledEvent(eventID, false))
	}

	if saveErr != nil {
		s.logger.Error("failed to persist bookmarks", "event_id", eventID, "error", saveErr)
		return snap, domainerrors.Storage(saveErr, "save bookmarks")
	}
	return snap, nil
}

// Snapshot returns a copy of the current collection.
func (s *EventService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Events returns a copy of the events in insertion order.
func (s *EventService) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneEvents(s.events)
}

// Bookmarks returns a copy of the bookmarked ids in insertion order.
func (s *EventService) Bookmarks() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneIDs(s.bookmarks)
}

// Event looks up a single event.
func (s *EventService) Event(eventID int64) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.events, func(e domain.Event) bool { return e.ID == eventID })
	if i < 0 {
		return domain.Event{}, false
	}
	return s.events[i], true
}

// IsBookmarked reports whether eventID is in the bookmark set.
func (s *EventService) IsBookmarked(eventID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.bookmarks, eventID)
}

// BookmarkedEvents resolves the bookmarks to events in bookmark order.
// Ids without a matching event are skipped.
func (s *EventService) BookmarkedEvents() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := domain.IndexByID(s.events)
	out := make([]domain.Event, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		if e, ok := byID[b]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct, collated categories of the current events.
func (s *EventService) Categories() []string {
	return s.categories.Unique(s.Events())
}

// Filter returns the events matching c in insertion order.
func (s *EventService) Filter(c filter.Criteria) []domain.Event {
	return filter.Apply(s.Events(), c)
}

// Search runs a full-text query and resolves hits to events in rank order.
// When search is disabled it falls back to the keyword filter.
func (s *EventService) Search(ctx context.Context, params search.Params) ([]domain.Event, error) {
	res, err := s.search.Search(ctx, params)
	if errors.Is(err, ErrSearchDisabled) {
		matches := s.Filter(filter.Criteria{Keyword: params.Query, Category: params.Category})
		if params.Limit > 0 && len(matches) > params.Limit {
			matches = matches[:params.Limit]
		}
		return matches, nil
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search events")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := domain.IndexByID(s.events)
	out := make([]domain.Event, 0, len(res.Hits))
	for _, h := range res.Hits {
		if e, ok := byID[h.EventID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// nextIDLocked returns an id not used by any current event.
func (s *EventService) nextIDLocked() int64 {
	for {
		candidate := s.ids.Next()
		if !slices.ContainsFunc(s.events, func(e domain.Event) bool { return e.ID == candidate }) {
			return candidate
		}
	}
}

func (s *EventService) snapshotLocked() Snapshot {
	return Snapshot{
		Events:    domain.CloneEvents(s.events),
		Bookmarks: domain.CloneIDs(s.bookmarks),
	}
}

func clean(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
