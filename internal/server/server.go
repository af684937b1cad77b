// Package server exposes the curve-fitting service over HTTP: observation
// upload, attempt CRUD, improve runs with live progress over SSE, and
// sampled curve retrieval.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brcurves/svenfit/internal/attempt"
	"github.com/brcurves/svenfit/internal/storage"
)

// Server represents the HTTP server.
type Server struct {
	manager      *attempt.Manager
	observations storage.ObservationStore
	broadcaster  *EventBroadcaster
	addr         string
	server       *http.Server
}

// NewServer creates a new HTTP server over the attempt manager and the
// observation store.
func NewServer(addr string, manager *attempt.Manager, observations storage.ObservationStore) *Server {
	return &Server{
		manager:      manager,
		observations: observations,
		broadcaster:  NewEventBroadcaster(),
		addr:         addr,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Handler builds the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/dates", s.handleDates)
	mux.HandleFunc("/api/v1/observations", s.handleObservations)
	mux.HandleFunc("/api/v1/strategies", s.handleStrategies)
	mux.HandleFunc("/api/v1/attempts", s.handleAttempts)
	mux.HandleFunc("/api/v1/attempts/", s.handleAttemptsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleAttempts handles /api/v1/attempts
func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateAttempt(w, r)
	case http.MethodGet:
		s.handleListAttempts(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAttemptsWithID handles /api/v1/attempts/:id/*
func (s *Server) handleAttemptsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/attempts/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Attempt ID required", http.StatusBadRequest)
		return
	}

	attemptID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetAttempt(w, r, attemptID)
		case http.MethodPut:
			s.handleUpdateAttempt(w, r, attemptID)
		case http.MethodDelete:
			s.handleDeleteAttempt(w, r, attemptID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "improve":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleImprove(w, r, attemptID)
	case "curve":
		s.handleGetCurve(w, r, attemptID)
	case "stream":
		s.handleAttemptStream(w, r, attemptID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
