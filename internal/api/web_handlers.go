package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eventboard/eventboard-server/internal/category"
	"github.com/eventboard/eventboard-server/internal/domain"
	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/export"
	"github.com/eventboard/eventboard-server/internal/filter"
	"github.com/eventboard/eventboard-server/internal/render"
	"github.com/eventboard/eventboard-server/internal/service"
	"github.com/eventboard/eventboard-server/internal/util"
)

// Query keys of the page.
const (
	queryKeyword  = "keyword"
	queryCategory = "category"
	queryDate     = "date"
	queryStatus   = "status"
	formReturn    = "return"
)

// Status keys carried in the redirect query. Only these keys are shown, so a
// link cannot put its own text on the page.
const (
	statusAdded      = "added"
	statusSaveFailed = "save_failed"
	statusFailed     = "failed"
)

type statusLine struct {
	text string
	kind string
}

var statusLines = map[string]statusLine{
	statusAdded:      {text: service.MsgEventAdded, kind: render.StatusSuccess},
	statusSaveFailed: {text: msgSaveFailed, kind: render.StatusError},
	statusFailed:     {text: msgFailed, kind: render.StatusError},
}

func (s *Server) registerWebRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/events", s.handleAddEventForm)
	s.router.Post("/events/{id}/delete", s.handleDeleteEventForm)
	s.router.Post("/events/{id}/bookmark", s.handleToggleBookmarkForm)
	s.router.Post("/bookmarks/{id}/remove", s.handleRemoveBookmarkForm)
	s.router.Get("/filter/clear", s.handleClearFilter)
	s.router.Get("/calendar.ics", s.handleCalendar)
}

// criteriaFrom reads the filter fields of a query.
func criteriaFrom(q url.Values) filter.Criteria {
	return filter.Criteria{
		Keyword:  q.Get(queryKeyword),
		Category: q.Get(queryCategory),
		Date:     q.Get(queryDate),
	}
}

// encodeCriteria is the inverse of criteriaFrom. Empty fields are left out.
func encodeCriteria(c filter.Criteria) string {
	q := url.Values{}
	if c.Keyword != "" {
		q.Set(queryKeyword, c.Keyword)
	}
	if c.Category != "" {
		q.Set(queryCategory, c.Category)
	}
	if c.Date != "" {
		q.Set(queryDate, c.Date)
	}
	return q.Encode()
}

// returnCriteria recovers the filter a POST form was submitted from.
// Only the filter keys survive, so the value cannot steer the redirect.
func returnCriteria(r *http.Request) filter.Criteria {
	q, err := url.ParseQuery(r.PostFormValue(formReturn))
	if err != nil {
		return filter.Criteria{}
	}
	return criteriaFrom(q)
}

// redirectHome sends the browser back to the page with the filter kept and
// an optional one-shot status key.
func redirectHome(w http.ResponseWriter, r *http.Request, c filter.Criteria, statusKey string) {
	q, _ := url.ParseQuery(encodeCriteria(c))
	if statusKey != "" {
		q.Set(queryStatus, statusKey)
	}

	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// pageData builds the page for the given filter.
func (s *Server) pageData(c filter.Criteria) render.PageData {
	snap := s.services.Events.Snapshot()
	return render.PageData{
		Title:       s.config.Name,
		Events:      filter.Apply(snap.Events, c),
		AllEvents:   snap.Events,
		Bookmarks:   snap.Bookmarks,
		Categories:  s.services.Events.Categories(),
		Criteria:    c,
		ReturnQuery: encodeCriteria(c),
	}
}

// writePage renders into a buffer first so a template error still yields a clean 500.
func (s *Server) writePage(w http.ResponseWriter, status int, data render.PageData) {
	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		s.logger.Error("Failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleIndex serves the page.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := s.pageData(criteriaFrom(q))

	if line, ok := statusLines[q.Get(queryStatus)]; ok {
		data.Status = line.text
		data.StatusKind = line.kind
	}

	s.writePage(w, http.StatusOK, data)
}

// handleAddEventForm adds an event from the form.
// POST /events
func (s *Server) handleAddEventForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	c := returnCriteria(r)
	form := domain.NewEvent{
		Name:        r.PostFormValue("name"),
		Location:    r.PostFormValue("location"),
		Date:        r.PostFormValue("date"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
	}
	newCategory := r.PostFormValue("new_category")

	in := form
	in.Category = category.ResolveChoice(form.Category, newCategory)

	_, _, err := s.services.Events.AddEvent(r.Context(), in)
	switch {
	case err == nil:
		redirectHome(w, r, c, statusAdded)
	case domainerrors.IsValidation(err):
		data := s.pageData(c)
		data.Form = form
		data.NewCategory = newCategory
		data.Status = userMessage(err)
		data.StatusKind = render.StatusError
		s.writePage(w, http.StatusUnprocessableEntity, data)
	default:
		// The event is in memory even though the write failed.
		redirectHome(w, r, c, statusKeyFor(err))
	}
}

// handleDeleteEventForm deletes an event.
// POST /events/{id}/delete
func (s *Server) handleDeleteEventForm(w http.ResponseWriter, r *http.Request) {
	eventID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.services.Events.DeleteEvent(r.Context(), eventID); err != nil {
		redirectHome(w, r, returnCriteria(r), statusKeyFor(err))
		return
	}
	redirectHome(w, r, returnCriteria(r), "")
}

// handleToggleBookmarkForm toggles a bookmark.
// POST /events/{id}/bookmark
func (s *Server) handleToggleBookmarkForm(w http.ResponseWriter, r *http.Request) {
	eventID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if _, _, err := s.services.Events.ToggleBookmark(r.Context(), eventID); err != nil {
		redirectHome(w, r, returnCriteria(r), statusKeyFor(err))
		return
	}
	redirectHome(w, r, returnCriteria(r), "")
}

// handleRemoveBookmarkForm removes a bookmark from the list.
// POST /bookmarks/{id}/remove
func (s *Server) handleRemoveBookmarkForm(w http.ResponseWriter, r *http.Request) {
	eventID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.services.Events.RemoveBookmark(r.Context(), eventID); err != nil {
		redirectHome(w, r, returnCriteria(r), statusKeyFor(err))
		return
	}
	redirectHome(w, r, returnCriteria(r), "")
}

// handleClearFilter resets every filter control.
// GET /filter/clear
func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleCalendar exports the filtered events as iCalendar.
// GET /calendar.ics
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events := s.services.Events.Filter(criteriaFrom(r.URL.Query()))

	var buf bytes.Buffer
	written, err := export.WriteICS(&buf, events, s.config.Name)
	if err != nil {
		s.logger.Error("Failed to export calendar", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.logger.Debug("calendar exported", "events", written, "skipped", len(events)-written)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+util.SlugOr(s.config.Name, "eventboard")+`.ics"`)
	_, _ = buf.WriteTo(w)
}

// pathID parses the {id} URL parameter, writing 400 if it is not an integer.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid event id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return eventID, true
}

// Status messages for failures that are not validation errors.
const (
	msgSaveFailed = "Changes could not be saved."
	msgFailed     = "Something went wrong. Please try again."
)

// statusKeyFor picks the redirect status key for a failed form action.
func statusKeyFor(err error) string {
	if domainerrors.CodeOf(err) == domainerrors.CodeStorage {
		return statusSaveFailed
	}
	return statusFailed
}

// userMessage returns a status line for err.
func userMessage(err error) string {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		return msgFailed
	}
	if domainErr.Code == domainerrors.CodeStorage {
		return msgSaveFailed
	}
	return domainErr.Message
}
