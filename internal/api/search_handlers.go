package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventboard/eventboard-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search events",
		Description: "Full-text search over name, location and description, best match first. Falls back to the keyword filter when search is disabled",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query    string `query:"q" doc:"Search text"`
	Category string `query:"category" doc:"Restrict to one category"`
	Limit    int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
}

// SearchResponse contains ranked events.
type SearchResponse struct {
	Query  string          `json:"query" doc:"The search text"`
	Events []EventResponse `json:"events" doc:"Matching events, best first"`
	Total  int             `json:"total" doc:"Number of events returned"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	events, err := s.services.Events.Search(ctx, search.Params{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, toAPIError(err)
	}

	return &SearchOutput{
		Body: SearchResponse{Query: input.Query, Events: toEventResponses(events), Total: len(events)},
	}, nil
}
