package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_FullText(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{search: true})

	resp := ts.api.Get("/api/v1/search?q=jazz")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[SearchResponse](t, resp.Body.Bytes())
	assert.Equal(t, "jazz", env.Data.Query)
	require.NotEmpty(t, env.Data.Events)
	assert.Equal(t, "Live Jazz Night", env.Data.Events[0].Name)
}

func TestSearch_CategoryAndLimit(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{search: true})

	resp := ts.api.Get("/api/v1/search?category=Tech&limit=1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[SearchResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Events, 1)
	assert.Equal(t, "Tech", env.Data.Events[0].Category)
}

func TestSearch_DisabledFallsBackToFilter(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=park")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[SearchResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"Farmers Market", "Yoga in the Park"}, eventNames(env.Data.Events))
}

func TestSearch_LimitOutOfRange(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=park&limit=500")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
