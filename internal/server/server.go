package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/database"
	"github.com/stockpulse/ranker/internal/modules/backtest"
	"github.com/stockpulse/ranker/internal/modules/ranking"
	"github.com/stockpulse/ranker/internal/modules/snapshots"
)

// Config holds server configuration
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger
	DB      *database.DB

	RankingHandlers  *ranking.Handlers
	SnapshotHandlers *snapshots.Handlers
	BacktestHandlers *backtest.Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	system *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		db:     cfg.DB,
		system: NewSystemHandlers(cfg.DB, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Validation runs can take a while; the timeout has to cover a full
	// fetch cycle over top-N tickers
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/ranking", func(r chi.Router) {
			r.Post("/analyze", cfg.RankingHandlers.HandleAnalyze)
			r.Get("/philosophies", cfg.RankingHandlers.HandlePhilosophies)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", cfg.SnapshotHandlers.HandleList)
			r.Get("/eligible", cfg.SnapshotHandlers.HandleEligible)
			r.Get("/{id}", cfg.SnapshotHandlers.HandleGet)
		})

		r.Route("/backtest", func(r chi.Router) {
			r.Post("/validate/{id}", cfg.BacktestHandlers.HandleValidate)
			r.Get("/results", cfg.BacktestHandlers.HandleResults)
			r.Get("/report", cfg.BacktestHandlers.HandleReport)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.system.HandleHealth)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(s.log, w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "stockpulse-ranker",
		"version": "1.0.0",
	})
}
