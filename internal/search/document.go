// Package search provides full-text search over events using Bleve.
package search

import (
	"strconv"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// Indexed field names.
const (
	FieldName        = "name"
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldDate        = "date"
)

// EventDocument is the shape of an event inside the index.
type EventDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// NewEventDocument converts a domain event into its index document.
func NewEventDocument(e domain.Event) *EventDocument {
	return &EventDocument{
		ID:          DocID(e.ID),
		Name:        e.Name,
		Location:    e.Location,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
	}
}

// ToMap converts the document to a map keyed by mapped field names.
func (d *EventDocument) ToMap() map[string]any {
	m := map[string]any{
		FieldName:     d.Name,
		FieldLocation: d.Location,
		FieldCategory: d.Category,
		FieldDate:     d.Date,
	}
	if d.Description != "" {
		m[FieldDescription] = d.Description
	}
	return m
}

// DocID is the index document id of an event.
func DocID(eventID int64) string {
	return strconv.FormatInt(eventID, 10)
}

// ParseDocID reverses DocID.
func ParseDocID(docID string) (int64, error) {
	return strconv.ParseInt(docID, 10, 64)
}
