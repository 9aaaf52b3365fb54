// Package ops serves a read-only HTTP API for operational tooling:
// job records, recent job events, and the diagnostics report. It
// binds to localhost on the appliance and never mutates state.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"certificate-terminal/internal/domain"
	"certificate-terminal/internal/jobs"
	"certificate-terminal/internal/jobstore"
)

// Server exposes the terminal's internals for debugging and manual
// retry tooling.
type Server struct {
	store       *jobstore.Store
	events      *jobs.EventBus
	diagnostics func() domain.DiagnosticReport

	httpServer *http.Server
}

// NewServer builds the ops API around the given stores.
func NewServer(store *jobstore.Store, events *jobs.EventBus, diagnostics func() domain.DiagnosticReport) *Server {
	return &Server{
		store:       store,
		events:      events,
		diagnostics: diagnostics,
	}
}

// Router builds the read-only route set.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", s.handleGetJob).Methods(http.MethodGet)
	router.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	router.HandleFunc("/diagnostics", s.handleDiagnostics).Methods(http.MethodGet)
	return router
}

// Start serves the API on addr until Shutdown.
func (s *Server) Start(addr string) {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server failed", "addr", addr, "error", err)
		}
	}()
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": ids})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := s.store.ReadSnapshot(jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := int64(0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be an integer"})
			return
		}
		since = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": s.events.Since(since)})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.diagnostics())
}

// writeJSON renders one response body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode ops response", "error", err)
	}
}
