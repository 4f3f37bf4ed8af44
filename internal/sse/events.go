// Package sse streams event board changes to browsers and API clients as Server-Sent Events.
package sse

import (
	"time"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCreated is sent after an event is added.
	EventCreated EventType = "event.created"
	// EventDeleted is sent after an existing event is removed.
	EventDeleted EventType = "event.deleted"
	// EventBookmarkToggled is sent after a bookmark is added or removed.
	EventBookmarkToggled EventType = "bookmark.toggled"
	// EventStoreReloaded is sent after both collections are re-read from storage.
	EventStoreReloaded EventType = "store.reloaded"
	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// EventCreatedData is the payload of event.created.
type EventCreatedData struct {
	Event domain.Event `json:"event"`
}

// EventDeletedData is the payload of event.deleted.
type EventDeletedData struct {
	EventID int64 `json:"event_id"`
}

// BookmarkToggledData is the payload of bookmark.toggled.
type BookmarkToggledData struct {
	EventID    int64 `json:"event_id"`
	Bookmarked bool  `json:"bookmarked"`
}

// StoreReloadedData is the payload of store.reloaded.
type StoreReloadedData struct {
	Events    int `json:"events"`
	Bookmarks int `json:"bookmarks"`
}

// HeartbeatEventData is the payload of heartbeat.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewEventCreatedEvent builds an event.created event.
func NewEventCreatedEvent(e domain.Event) Event {
	return Event{Type: EventCreated, Timestamp: time.Now(), Data: EventCreatedData{Event: e}}
}

// NewEventDeletedEvent builds an event.deleted event.
func NewEventDeletedEvent(eventID int64) Event {
	return Event{Type: EventDeleted, Timestamp: time.Now(), Data: EventDeletedData{EventID: eventID}}
}

// NewBookmarkToggledEvent builds a bookmark.toggled event.
func NewBookmarkToggledEvent(eventID int64, bookmarked bool) Event {
	return Event{
		Type:      EventBookmarkToggled,
		Timestamp: time.Now(),
		Data:      BookmarkToggledData{EventID: eventID, Bookmarked: bookmarked},
	}
}

// NewStoreReloadedEvent builds a store.reloaded event.
func NewStoreReloadedEvent(events, bookmarks int) Event {
	return Event{
		Type:      EventStoreReloaded,
		Timestamp: time.Now(),
		Data:      StoreReloadedData{Events: events, Bookmarks: bookmarks},
	}
}

// NewHeartbeatEvent builds a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{Type: EventHeartbeat, Timestamp: now, Data: HeartbeatEventData{ServerTime: now}}
}
