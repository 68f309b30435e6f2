package api

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/mattjoyce/airaware/internal/store"
)

const defaultHeartbeatInterval = 15 * time.Second

// Config holds API server configuration.
type Config struct {
	Listen                  string
	Token                   string
	StreamHeartbeatInterval time.Duration
	// RequestsPerMinute limits POST /v1/chat; zero disables the limit.
	RequestsPerMinute int
	Burst             int
	SystemPrompt      string
	MaxTokens         int
}

// Server represents the HTTP API server.
type Server struct {
	config    Config
	cities    *store.CityStore
	zones     *store.ZoneStore
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a new API server instance.
func New(config Config, cities *store.CityStore, zones *store.ZoneStore, chatModel model.BaseChatModel, logger *slog.Logger) *Server {
	if config.StreamHeartbeatInterval <= 0 {
		config.StreamHeartbeatInterval = defaultHeartbeatInterval
	}
	return &Server{
		config:    config,
		cities:    cities,
		zones:     zones,
		chatModel: chatModel,
		limiter:   newLimiter(config.RequestsPerMinute, config.Burst),
		logger:    logger,
		startedAt: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // chat replies are long-lived streams.
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated
	r.Get("/healthz", s.handleHealthz)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/v1/cities", s.handleListCities)
		r.Route("/v1/cities/{city_id}", func(r chi.Router) {
			r.Get("/", s.handleGetCity)
			r.Get("/zones", s.handleZones)
			r.Get("/zones/latest", s.handleLatestZones)
			r.Get("/alerts", s.handleAlerts)
			r.Get("/trend", s.handleTrend)
			r.Get("/simulate", s.handleSimulate)
		})
		r.Post("/v1/chat", s.handleChat)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// withRand runs fn with the server's generator held.
func (s *Server) withRand(fn func(rng *rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}
