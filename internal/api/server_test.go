package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/id"
	"github.com/eventboard/eventboard-server/internal/ratelimit"
	"github.com/eventboard/eventboard-server/internal/search"
	"github.com/eventboard/eventboard-server/internal/seed"
	"github.com/eventboard/eventboard-server/internal/service"
	"github.com/eventboard/eventboard-server/internal/sse"
	"github.com/eventboard/eventboard-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	backend *store.MemoryBackend
	events  *service.EventService
}

// failingBackend accepts reads and rejects writes.
type failingBackend struct {
	*store.MemoryBackend
}

func (failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type testOptions struct {
	search  bool
	limiter *ratelimit.KeyedRateLimiter
	backend store.Backend
}

// setupTestServer creates a server over a seeded memory backend.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, testOptions{})
}

func setupTestServerWith(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem := store.NewMemoryBackend()
	backend := opts.backend
	if backend == nil {
		backend = mem
	}
	st := store.New(backend, store.Options{Seed: seed.Default(), Logger: logger})

	sseManager := sse.NewManager(logger)

	services := &Services{SSE: sseManager}
	var indexer service.SearchIndexer
	if opts.search {
		idx, err := search.NewMemoryIndex(logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = idx.Close() })
		services.Search = idx
		indexer = idx
	}

	events := service.NewEventService(st, id.NewCounterSequence(0), nil, indexer, sseManager, logger)
	snap := events.Load(context.Background())
	if services.Search != nil {
		require.NoError(t, services.Search.Rebuild(snap.Events))
	}
	services.Events = events

	s := NewServer(st, services, opts.limiter, Config{Name: "Test Board", AllowedOrigins: []string{"*"}}, logger)

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.API()),
		backend: mem,
		events:  events,
	}
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Equal(t, 5, env.Data.Events)
	assert.Equal(t, 0, env.Data.Bookmarks)
	assert.Equal(t, "disabled", env.Data.Components["search"].Message)
	assert.Equal(t, statusHealthy, env.Data.Components["storage"].Status)
}

func TestHealthCheck_WithSearch(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{search: true})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "5 documents", env.Data.Components["search"].Message)
}

func TestRateLimit_Returns429(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServerWith(t, testOptions{limiter: limiter})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.4:5123"
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("/api/v1/categories").Code)
	assert.Equal(t, http.StatusOK, get("/api/v1/categories").Code)

	limited := get("/api/v1/categories")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	env := decodeEnvelope[any](t, limited.Body.Bytes())
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Health stays reachable.
	assert.Equal(t, http.StatusOK, get("/health").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, remote: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.10"}, remote: "10.0.0.1:80", want: "203.0.113.10"},
		{name: "remote addr", remote: "192.0.2.1:4567", want: "192.0.2.1"},
		{name: "no port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestEventStream_DeliversCreatedEvent(t *testing.T) {
	ts := setupTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ts.services.SSE.Start(ctx)

	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+streamPath, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(want string) {
		t.Helper()
		for lines.Scan() {
			if lines.Text() == want {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", want, lines.Err())
	}

	waitFor("event: connected")

	_, _, err = ts.events.AddEvent(context.Background(), domain.NewEvent{
		Name: "Book Swap", Location: "Library", Date: "2025-10-05", Category: "Community",
	})
	require.NoError(t, err)

	waitFor("event: " + string(sse.EventCreated))
}
