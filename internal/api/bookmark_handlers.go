package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns bookmark IDs in insertion order and the events they resolve to. Dangling IDs are skipped in events",
		Tags:        []string{"Bookmarks"},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{id}/toggle",
		Summary:     "Toggle bookmark",
		Description: "Adds the ID to the bookmarks if absent, otherwise removes it",
		Tags:        []string{"Bookmarks"},
	}, s.handleToggleBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Remove bookmark",
		Description: "Removes the ID from the bookmarks. Removing an absent ID succeeds",
		Tags:        []string{"Bookmarks"},
	}, s.handleRemoveBookmark)
}

// === DTOs ===

// BookmarksResponse contains the bookmark set.
type BookmarksResponse struct {
	IDs    []int64         `json:"ids" doc:"Bookmarked event IDs in insertion order"`
	Events []EventResponse `json:"events" doc:"Bookmarked events that still exist"`
}

// BookmarksOutput wraps the bookmarks response for Huma.
type BookmarksOutput struct {
	Body BookmarksResponse
}

// ToggleBookmarkResponse reports the result of a toggle.
type ToggleBookmarkResponse struct {
	ID         int64   `json:"id" doc:"Event ID"`
	Bookmarked bool    `json:"bookmarked" doc:"Whether the ID is bookmarked after the toggle"`
	IDs        []int64 `json:"ids" doc:"Bookmark IDs after the toggle"`
}

// ToggleBookmarkOutput wraps the toggle response for Huma.
type ToggleBookmarkOutput struct {
	Body ToggleBookmarkResponse
}

// BookmarkIDsResponse lists bookmark IDs.
type BookmarkIDsResponse struct {
	IDs []int64 `json:"ids" doc:"Bookmark IDs"`
}

// BookmarkIDsOutput wraps the bookmark IDs for Huma.
type BookmarkIDsOutput struct {
	Body BookmarkIDsResponse
}

// === Handlers ===

func (s *Server) handleListBookmarks(_ context.Context, _ *struct{}) (*BookmarksOutput, error) {
	return &BookmarksOutput{
		Body: BookmarksResponse{
			IDs:    s.services.Events.Bookmarks(),
			Events: toEventResponses(s.services.Events.BookmarkedEvents()),
		},
	}, nil
}

func (s *Server) handleToggleBookmark(ctx context.Context, input *EventIDInput) (*ToggleBookmarkOutput, error) {
	bookmarked, snap, err := s.services.Events.ToggleBookmark(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &ToggleBookmarkOutput{
		Body: ToggleBookmarkResponse{ID: input.ID, Bookmarked: bookmarked, IDs: snap.Bookmarks},
	}, nil
}

func (s *Server) handleRemoveBookmark(ctx context.Context, input *EventIDInput) (*BookmarkIDsOutput, error) {
	snap, err := s.services.Events.RemoveBookmark(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookmarkIDsOutput{Body: BookmarkIDsResponse{IDs: snap.Bookmarks}}, nil
}
