// Package server exposes the HTTP query surface: stored records, the
// aggregated dashboard, and the authenticated manual refresh trigger.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/wnt/stablewatch/internal/config"
	"github.com/wnt/stablewatch/internal/store"
)

// Runner triggers one refresh run
type Runner interface {
	Run(ctx context.Context, includeSupply bool) error
}

// Server is the HTTP query surface
type Server struct {
	store      *store.Store
	updater    Runner
	cache      *dashboardCache
	secret     string
	production bool
	logger     zerolog.Logger
	router     *mux.Router
}

// New creates the server and its routes
func New(cfg config.Config, st *store.Store, updater Runner, logger zerolog.Logger) *Server {
	s := &Server{
		store:      st,
		updater:    updater,
		cache:      newDashboardCache(cfg.CacheTTL),
		secret:     cfg.UpdateSecret,
		production: cfg.IsProduction(),
		logger:     logger.With().Str("component", "server").Logger(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/stablecoins", s.handleStablecoins).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/update", s.handleUpdate).Methods(http.MethodPost)
	r.HandleFunc("/api/update", s.handleUpdateDev).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// InvalidateCache drops the cached dashboard aggregate. Called after
// out-of-band refreshes (e.g. the scheduler) so reads pick up the new
// data without waiting for the TTL.
func (s *Server) InvalidateCache() {
	s.cache.invalidate()
}
