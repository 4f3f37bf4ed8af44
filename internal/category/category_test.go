package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard-server/internal/domain"
)

func eventsWithCategories(categories ...string) []domain.Event {
	events := make([]domain.Event, len(categories))
	for i, c := range categories {
		events[i] = domain.Event{ID: int64(i + 1), Category: c}
	}
	return events
}

func TestUnique_DedupesDropsEmptyAndSorts(t *testing.T) {
	got := Unique(eventsWithCategories("Tech", "Music", "Tech", ""))
	assert.Equal(t, []string{"Music", "Tech"}, got)
}

func TestUnique_Empty(t *testing.T) {
	got := Unique(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUnique_IsCaseSensitiveForDedupe(t *testing.T) {
	got := Unique(eventsWithCategories("tech", "Tech"))
	assert.Len(t, got, 2)
}

func TestUnique_LocaleAwareOrder(t *testing.T) {
	// Byte order would put every uppercase letter before "art" and "Écoles" last.
	got := Unique(eventsWithCategories("Zoo", "art", "Écoles", "Music", "eat"))
	assert.Equal(t, []string{"art", "eat", "Écoles", "Music", "Zoo"}, got)
}

func TestNewIndex(t *testing.T) {
	idx, err := NewIndex("sv")
	require.NoError(t, err)

	// Swedish sorts "ö" after "z".
	got := idx.Unique(eventsWithCategories("Öl", "Zumba", "Dans"))
	assert.Equal(t, []string{"Dans", "Zumba", "Öl"}, got)

	_, err = NewIndex("!!")
	assert.Error(t, err)
}

func TestFormOptions(t *testing.T) {
	opts := FormOptions([]string{"Food", "Music"})
	assert.Equal(t, []Option{
		{Value: "Food", Label: "Food"},
		{Value: "Music", Label: "Music"},
		{Value: Other, Label: "Other (create new)"},
	}, opts)
}

func TestFilterOptions(t *testing.T) {
	opts := FilterOptions([]string{"Tech"})
	assert.Equal(t, []Option{
		{Value: "", Label: "All Categories"},
		{Value: "Tech", Label: "Tech"},
	}, opts)
}

func TestResolveChoice(t *testing.T) {
	assert.Equal(t, "Music", ResolveChoice("Music", "ignored"))
	assert.Equal(t, "Pottery", ResolveChoice(Other, "Pottery"))
	assert.Equal(t, "", ResolveChoice(Other, ""))
	assert.Equal(t, "", ResolveChoice("", "Pottery"))
}
