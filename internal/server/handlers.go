package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wnt/stablewatch/internal/aggregate"
	"github.com/wnt/stablewatch/internal/metrics"
	"github.com/wnt/stablewatch/internal/models"
)

type stablecoinsResponse struct {
	Data       []models.StablecoinRecord `json:"data"`
	LastUpdate *string                   `json:"lastUpdate"`
	Count      int                       `json:"count"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// handleStablecoins returns every stored record plus the last
// ingestion timestamp.
func (s *Server) handleStablecoins(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ReadAll(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read stablecoin data")
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch stablecoin data"})
		return
	}

	lastUpdate, err := s.store.LastUpdateTime(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read last update time")
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch stablecoin data"})
		return
	}

	resp := stablecoinsResponse{
		Data:  records,
		Count: len(records),
	}
	if lastUpdate != nil {
		ts := lastUpdate.UTC().Format(time.RFC3339)
		resp.LastUpdate = &ts
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

// handleDashboard returns the aggregated dashboard model, recomputing
// it from the store when the cached copy has gone stale.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if dash, ok := s.cache.get(); ok {
		metrics.DashboardCacheHits.WithLabelValues("hit").Inc()
		s.writeJSON(w, r, http.StatusOK, dash)
		return
	}
	metrics.DashboardCacheHits.WithLabelValues("miss").Inc()

	records, err := s.store.ReadAll(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read records for dashboard")
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to build dashboard"})
		return
	}

	dash := aggregate.Build(records)
	s.cache.set(dash)
	s.writeJSON(w, r, http.StatusOK, dash)
}

// handleUpdate runs a full refresh. It is gated by a shared secret in
// the Authorization header; a mismatch performs no side effects.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	expected := "Bearer " + s.secret
	if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
		s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	s.runUpdate(w, r, "Data updated successfully")
}

// handleUpdateDev is the unauthenticated GET variant of the refresh
// trigger, for manual testing. Disabled in production.
func (s *Server) handleUpdateDev(w http.ResponseWriter, r *http.Request) {
	if s.production {
		s.writeJSON(w, r, http.StatusForbidden, errorResponse{Error: "Not allowed"})
		return
	}

	s.runUpdate(w, r, "Data updated successfully (dev mode)")
}

func (s *Server) runUpdate(w http.ResponseWriter, r *http.Request, message string) {
	if err := s.updater.Run(r.Context(), true); err != nil {
		s.logger.Error().Err(err).Msg("Manual update failed")
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to update data",
			Details: err.Error(),
		})
		return
	}

	s.cache.invalidate()
	s.writeJSON(w, r, http.StatusOK, updateResponse{Success: true, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
	metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(status))
}
