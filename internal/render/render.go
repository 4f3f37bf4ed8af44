// Package render draws the event board as HTML.
//
// Every renderer is a function of its arguments. html/template escapes
// each field for the context it lands in.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/eventboard/eventboard-server/internal/category"
	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/filter"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formOptions":   category.FormOptions,
	"filterOptions": category.FilterOptions,
}).ParseFS(templateFS, "templates/*.html"))

// Labels and prompts.
const (
	BookmarkLabel   = "⭐ Bookmark"
	UnbookmarkLabel = "Remove Bookmark"
	DeletePrompt    = "Delete this event? This cannot be undone."
	EmptyEvents     = "No events found."
	EmptyBookmarks  = "No bookmarks yet."
)

// StatusClearAfterMs is how long a status message stays on screen.
const StatusClearAfterMs = 3500

// Status kinds.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Card is one event as drawn in the grid.
type Card struct {
	domain.Event
	Bookmarked bool
}

// BookmarkLabel is the toggle's current label.
func (c Card) BookmarkLabel() string {
	if c.Bookmarked {
		return UnbookmarkLabel
	}
	return BookmarkLabel
}

// GridData feeds the event-grid template.
type GridData struct {
	Cards        []Card
	ReturnQuery  string
	DeletePrompt string
	Empty        string
}

// BookmarkRow is one resolved bookmark.
type BookmarkRow struct {
	ID       int64
	Name     string
	Date     string
	Location string
}

// BookmarkData feeds the bookmark-list template.
type BookmarkData struct {
	Rows        []BookmarkRow
	ReturnQuery string
	Empty       string
}

// PageData is everything the full page needs.
type PageData struct {
	Title      string
	Events     []domain.Event // events shown in the grid, already filtered
	AllEvents  []domain.Event // every event, used to resolve bookmarks
	Bookmarks  []int64
	Categories []string
	Criteria   filter.Criteria

	// Form holds the previous input after a rejected submission.
	Form        domain.NewEvent
	NewCategory string

	Status     string
	StatusKind string

	// ReturnQuery is the encoded filter query that POST forms send back
	// so the redirect keeps the current filter.
	ReturnQuery string
}

// Grid builds the grid view of the page.
func (p PageData) Grid() GridData {
	return newGridData(p.Events, p.Bookmarks, p.ReturnQuery)
}

// BookmarkPanel builds the bookmark panel of the page.
func (p PageData) BookmarkPanel() BookmarkData {
	return newBookmarkData(p.Bookmarks, p.AllEvents, p.ReturnQuery)
}

// OtherValue is the sentinel category value of the add form.
func (PageData) OtherValue() string { return category.Other }

// StatusClearMs is exposed for the inline auto-clear script.
func (PageData) StatusClearMs() int { return StatusClearAfterMs }

// EventGrid writes one card per event, or the empty-state message.
func EventGrid(w io.Writer, events []domain.Event, bookmarks []int64) error {
	return execute(w, "event-grid", newGridData(events, bookmarks, ""))
}

// BookmarkList writes one row per bookmark that resolves to an event.
func BookmarkList(w io.Writer, bookmarks []int64, events []domain.Event) error {
	return execute(w, "bookmark-list", newBookmarkData(bookmarks, events, ""))
}

// Page writes the full document.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Eventboard"
	}
	return execute(w, "page", data)
}

func newGridData(events []domain.Event, bookmarks []int64, returnQuery string) GridData {
	cards := make([]Card, len(events))
	for i, e := range events {
		cards[i] = Card{Event: e, Bookmarked: slices.Contains(bookmarks, e.ID)}
	}
	return GridData{
		Cards:        cards,
		ReturnQuery:  returnQuery,
		DeletePrompt: DeletePrompt,
		Empty:        EmptyEvents,
	}
}

func newBookmarkData(bookmarks []int64, events []domain.Event, returnQuery string) BookmarkData {
	byID := domain.IndexByID(events)
	rows := make([]BookmarkRow, 0, len(bookmarks))
	for _, b := range bookmarks {
		e, ok := byID[b]
		if !ok {
			continue
		}
		rows = append(rows, BookmarkRow{ID: e.ID, Name: e.Name, Date: e.Date, Location: e.Location})
	}
	return BookmarkData{Rows: rows, ReturnQuery: returnQuery, Empty: EmptyBookmarks}
}

func execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
