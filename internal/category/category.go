// Package category derives the category vocabulary from the event collection.
package category

import (
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// Other is the add-form sentinel meaning "create a new category inline".
const Other = "__other__"

// Option labels.
const (
	OtherLabel = "Other (create new)"
	AllLabel   = "All Categories"
)

// Option is one entry of a category selector.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Index sorts categories with a locale's collation rules.
// The zero value is not usable; call NewIndex.
type Index struct {
	tag language.Tag
}

// NewIndex creates an index for a BCP 47 locale such as "en" or "de-CH".
func NewIndex(locale string) (*Index, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse category locale %q: %w", locale, err)
	}
	return &Index{tag: tag}, nil
}

// Default is the English index used when no locale is configured.
var Default = &Index{tag: language.English}

// Unique returns the distinct non-empty categories of events, collated.
func (x *Index) Unique(events []domain.Event) []string {
	seen := make(map[string]struct{}, len(events))
	categories := make([]string, 0, len(events))
	for _, e := range events {
		if e.Category == "" {
			continue
		}
		if _, dup := seen[e.Category]; dup {
			continue
		}
		seen[e.Category] = struct{}{}
		categories = append(categories, e.Category)
	}

	// Collators are not safe for concurrent use; build one per call.
	collate.New(x.tag).SortStrings(categories)
	return categories
}

// Unique uses the default English index.
func Unique(events []domain.Event) []string {
	return Default.Unique(events)
}

// FormOptions lists categories for the add-event form, followed by the Other sentinel.
func FormOptions(categories []string) []Option {
	opts := make([]Option, 0, len(categories)+1)
	for _, c := range categories {
		opts = append(opts, Option{Value: c, Label: c})
	}
	return append(opts, Option{Value: Other, Label: OtherLabel})
}

// FilterOptions lists categories for the filter control, led by the match-all entry.
func FilterOptions(categories []string) []Option {
	opts := make([]Option, 0, len(categories)+1)
	opts = append(opts, Option{Value: "", Label: AllLabel})
	for _, c := range categories {
		opts = append(opts, Option{Value: c, Label: c})
	}
	return opts
}

// ResolveChoice picks the category an add-event submission means.
func ResolveChoice(selected, newCategory string) string {
	if selected == Other {
		return newCategory
	}
	return selected
}
