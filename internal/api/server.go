// Package api assembles the HTTP surface: REST handlers, middleware, and
// the metrics endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/insight/internal/api/handler/api"
	"github.com/newthinker/insight/internal/api/job"
	"github.com/newthinker/insight/internal/api/middleware"
	"github.com/newthinker/insight/internal/api/response"
	"github.com/newthinker/insight/internal/metrics"
	"github.com/newthinker/insight/internal/storage/analysis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
	JobTTL      time.Duration
	MaxJobs     int
}

// Dependencies are the services the handlers need.
type Dependencies struct {
	Pipeline  apihandler.Pipeline
	Store     analysis.Store
	Watchlist apihandler.WatchlistApp
	Metrics   *metrics.Registry
}

// Server is the HTTP server for the research service.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	jobs       *job.Store
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
		jobs:   job.NewStore(cfg.MaxJobs, cfg.JobTTL),
	}

	s.setupRoutes(cfg, deps)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	if logger != nil {
		handler = metrics.LoggingMiddleware(logger)(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	var gauge apihandler.JobsGauge
	if deps.Metrics != nil {
		gauge = deps.Metrics
	}
	analyses := apihandler.NewAnalysesHandler(deps.Pipeline, deps.Store, s.jobs, gauge)
	jobs := apihandler.NewJobsHandler(s.jobs)

	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	s.mux.Handle("POST /api/v1/analyses/{ticker}", protect(analyses.Trigger))
	s.mux.Handle("GET /api/v1/analyses/{ticker}", protect(analyses.Latest))
	s.mux.Handle("GET /api/v1/analyses/{ticker}/history", protect(analyses.History))
	s.mux.Handle("GET /api/v1/analysis/{id}", protect(analyses.GetByID))
	s.mux.Handle("GET /api/v1/jobs/{id}", protect(jobs.Get))
	s.mux.Handle("GET /api/v1/jobs", protect(jobs.List))

	if deps.Watchlist != nil {
		watchlist := apihandler.NewWatchlistHandler(deps.Watchlist)
		s.mux.Handle("GET /api/v1/watchlist", protect(watchlist.List))
	}

	// Health and metrics stay unauthenticated for probes and scrapers.
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("shutting down HTTP server")
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"active_jobs": s.jobs.ActiveCount(),
	})
}
