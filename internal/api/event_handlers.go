package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventboard/eventboard-server/internal/category"
	"github.com/eventboard/eventboard-server/internal/domain"
	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/filter"
	"github.com/eventboard/eventboard-server/internal/service"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List events",
		Description: "Returns the events matching the optional keyword, category and date filters, in insertion order",
		Tags:        []string{"Events"},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createEvent",
		Method:        http.MethodPost,
		Path:          "/api/v1/events",
		Summary:       "Create event",
		Description:   "Validates and adds an event. Missing fields produce a VALIDATION_ERROR",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}",
		Summary:     "Get event",
		Description: "Returns an event by ID",
		Tags:        []string{"Events"},
	}, s.handleGetEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteEvent",
		Method:      http.MethodDelete,
		Path:        "/api/v1/events/{id}",
		Summary:     "Delete event",
		Description: "Removes an event and its bookmark. Deleting an unknown ID succeeds",
		Tags:        []string{"Events"},
	}, s.handleDeleteEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the distinct non-empty categories in collation order",
		Tags:        []string{"Events"},
	}, s.handleListCategories)
}

// === DTOs ===

// EventResponse contains event data in API responses.
type EventResponse struct {
	ID          int64  `json:"id" doc:"Event ID"`
	Name        string `json:"name" doc:"Event name"`
	Category    string `json:"category" doc:"Category"`
	Date        string `json:"date" doc:"Date as YYYY-MM-DD"`
	Location    string `json:"location" doc:"Location"`
	Description string `json:"description" doc:"Description, may be empty"`
}

func toEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
	}
}

func toEventResponses(events []domain.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return resp
}

// ListEventsInput contains filter parameters.
type ListEventsInput struct {
	Keyword  string `query:"keyword" doc:"Case-insensitive substring of name or location"`
	Category string `query:"category" doc:"Exact category, empty for all"`
	Date     string `query:"date" doc:"Exact date, empty for all"`
}

// EventListResponse contains a list of events.
type EventListResponse struct {
	Events []EventResponse `json:"events" doc:"Matching events"`
	Total  int             `json:"total" doc:"Number of matching events"`
}

// EventListOutput wraps the event list for Huma.
type EventListOutput struct {
	Body EventListResponse
}

// CreateEventRequest is the request body for creating an event.
// Fields are optional to huma so that the event store reports the first missing one.
type CreateEventRequest struct {
	Name        string `json:"name,omitempty" doc:"Event name"`
	Location    string `json:"location,omitempty" doc:"Location"`
	Date        string `json:"date,omitempty" doc:"Date as YYYY-MM-DD"`
	Category    string `json:"category,omitempty" doc:"Category, or __other__ together with new_category"`
	NewCategory string `json:"new_category,omitempty" doc:"Category to create when category is __other__"`
	Description string `json:"description,omitempty" doc:"Optional description"`
}

// CreateEventInput wraps the create event request for Huma.
type CreateEventInput struct {
	Body CreateEventRequest
}

// CreateEventResponse contains the new event.
type CreateEventResponse struct {
	Event   EventResponse `json:"event" doc:"The created event"`
	Message string        `json:"message" doc:"Confirmation message"`
}

// CreateEventOutput wraps the create event response for Huma.
type CreateEventOutput struct {
	Body CreateEventResponse
}

// EventIDInput identifies an event by path.
type EventIDInput struct {
	ID int64 `path:"id" doc:"Event ID"`
}

// EventOutput wraps a single event for Huma.
type EventOutput struct {
	Body EventResponse
}

// DeleteEventResponse reports the collection after a delete.
type DeleteEventResponse struct {
	ID        int64   `json:"id" doc:"Requested event ID"`
	Remaining int     `json:"remaining" doc:"Number of events left"`
	Bookmarks []int64 `json:"bookmarks" doc:"Bookmark IDs after the delete"`
}

// DeleteEventOutput wraps the delete response for Huma.
type DeleteEventOutput struct {
	Body DeleteEventResponse
}

// CategoriesResponse lists categories.
type CategoriesResponse struct {
	Categories []string `json:"categories" doc:"Distinct categories in collation order"`
}

// CategoriesOutput wraps the categories response for Huma.
type CategoriesOutput struct {
	Body CategoriesResponse
}

// === Handlers ===

func (s *Server) handleListEvents(_ context.Context, input *ListEventsInput) (*EventListOutput, error) {
	events := s.services.Events.Filter(filter.Criteria{
		Keyword:  input.Keyword,
		Category: input.Category,
		Date:     input.Date,
	})

	return &EventListOutput{
		Body: EventListResponse{Events: toEventResponses(events), Total: len(events)},
	}, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, input *CreateEventInput) (*CreateEventOutput, error) {
	e, _, err := s.services.Events.AddEvent(ctx, domain.NewEvent{
		Name:        input.Body.Name,
		Location:    input.Body.Location,
		Date:        input.Body.Date,
		Category:    category.ResolveChoice(input.Body.Category, input.Body.NewCategory),
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, toAPIError(err)
	}

	return &CreateEventOutput{
		Body: CreateEventResponse{Event: toEventResponse(e), Message: service.MsgEventAdded},
	}, nil
}

func (s *Server) handleGetEvent(_ context.Context, input *EventIDInput) (*EventOutput, error) {
	e, ok := s.services.Events.Event(input.ID)
	if !ok {
		return nil, toAPIError(domainerrors.NotFoundf("event %d not found", input.ID))
	}
	return &EventOutput{Body: toEventResponse(e)}, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, input *EventIDInput) (*DeleteEventOutput, error) {
	snap, err := s.services.Events.DeleteEvent(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &DeleteEventOutput{
		Body: DeleteEventResponse{ID: input.ID, Remaining: len(snap.Events), Bookmarks: snap.Bookmarks},
	}, nil
}

func (s *Server) handleListCategories(_ context.Context, _ *struct{}) (*CategoriesOutput, error) {
	return &CategoriesOutput{
		Body: CategoriesResponse{Categories: s.services.Events.Categories()},
	}, nil
}
