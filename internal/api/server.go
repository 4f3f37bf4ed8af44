// Package api provides the HTTP server for the event board: server-rendered
// HTML forms at the root and a JSON API under /api/v1.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/eventboard/eventboard-server/internal/ratelimit"
	"github.com/eventboard/eventboard-server/internal/search"
	"github.com/eventboard/eventboard-server/internal/service"
	"github.com/eventboard/eventboard-server/internal/sse"
	"github.com/eventboard/eventboard-server/internal/store"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// streamPath is served by the SSE handler outside huma.
const streamPath = "/api/v1/events/stream"

// Config holds the server settings that affect routing.
type Config struct {
	Name           string
	AllowedOrigins []string
}

// Services groups the components the handlers call.
type Services struct {
	Events *service.EventService
	Search *search.SearchIndex // nil when search is disabled
	SSE    *sse.Manager
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	services   *Services
	sseHandler *sse.Handler
	limiter    *ratelimit.KeyedRateLimiter
	config     Config
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// A nil limiter disables rate limiting.
func NewServer(st *store.Store, services *Services, limiter *ratelimit.KeyedRateLimiter, cfg Config, logger *slog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "Eventboard"
	}

	s := &Server{
		store:    st,
		services: services,
		limiter:  limiter,
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if services.SSE != nil {
		s.sseHandler = sse.NewHandler(services.SSE, logger)
	}

	// Middleware has to be in place before humachi mounts its docs routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Name+" API", APIVersion)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger, "/health", streamPath))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerEventRoutes()
	s.registerBookmarkRoutes()
	s.registerSearchRoutes()

	if s.sseHandler != nil {
		s.router.Get(streamPath, s.sseHandler.ServeHTTP)
	}

	s.registerWebRoutes()
}
