// Package filter selects the events matching a keyword, category and date.
package filter

import (
	"strings"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// Criteria restricts the visible events. Empty fields match everything.
type Criteria struct {
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`
}

// IsZero reports whether no restriction is active.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Keyword) == "" && c.Category == "" && c.Date == ""
}

// Apply returns the events matching every criterion, in their original order.
// The result is a new slice and never nil.
func Apply(events []domain.Event, c Criteria) []domain.Event {
	keyword := strings.ToLower(strings.TrimSpace(c.Keyword))

	matched := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if matchesKeyword(e, keyword) && matchesExact(e.Category, c.Category) && matchesExact(e.Date, c.Date) {
			matched = append(matched, e)
		}
	}
	return matched
}

// matchesKeyword expects keyword already trimmed and lowercased.
func matchesKeyword(e domain.Event, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), keyword) ||
		strings.Contains(strings.ToLower(e.Location), keyword)
}

func matchesExact(value, want string) bool {
	return want == "" || value == want
}
