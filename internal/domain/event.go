package domain

import "slices"

// DateLayout is the calendar format of Event.Date.
// Only presence is checked when an event is created; the layout is used by exporters.
const DateLayout = "2006-01-02"

// Event is a single happening on the board.
// Events are created and deleted but never edited.
type Event struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Date        string `json:"date" yaml:"date"`
	Location    string `json:"location" yaml:"location"`
	Description string `json:"description" yaml:"description"`
}

// HasDescription reports whether the event carries a non-empty description.
func (e Event) HasDescription() bool {
	return e.Description != ""
}

// NewEvent is the raw, untrimmed input for creating an event.
// Field order matches the order fields are validated in.
type NewEvent struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CloneEvents returns a non-nil copy of events.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return []Event{}
	}
	return slices.Clone(events)
}

// CloneIDs returns a non-nil copy of ids.
func CloneIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return slices.Clone(ids)
}

// IndexByID maps event ids to events. Later duplicates win.
func IndexByID(events []Event) map[int64]Event {
	byID := make(map[int64]Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	return byID
}

// MaxID returns the largest id in events, or 0 when empty.
func MaxID(events []Event) int64 {
	var highest int64
	for _, e := range events {
		highest = max(highest, e.ID)
	}
	return highest
}
