package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/opt"
)

// handleDates handles GET /api/v1/dates
func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dates, err := s.observations.ListDates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// handleObservations handles /api/v1/observations?date=YYYY-MM-DD
func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, fmt.Sprintf("invalid date %q", date), http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		obs, err := s.observations.Observations(r.Context(), date)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "observations": obs})

	case http.MethodPut, http.MethodPost:
		var obs curve.ObservationSet
		if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
			http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
			return
		}
		if err := obs.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.observations.SaveObservations(r.Context(), date, obs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "count": len(obs)})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStrategies handles GET /api/v1/strategies
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"strategies": opt.Strategies()})
}

type createAttemptRequest struct {
	Date    string                `json:"date"`
	Initial curve.ParameterVector `json:"initial"`
	Note    string                `json:"note"`
}

// handleCreateAttempt handles POST /api/v1/attempts
func (s *Server) handleCreateAttempt(w http.ResponseWriter, r *http.Request) {
	var req createAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	if !req.Initial.Valid() {
		http.Error(w, "lambda1 and lambda2 must be positive", http.StatusBadRequest)
		return
	}

	record, err := s.manager.Create(r.Context(), req.Date, req.Initial, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// handleListAttempts handles GET /api/v1/attempts?date=YYYY-MM-DD
func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return
	}

	records, err := s.manager.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "attempts": records})
}

// handleGetAttempt handles GET /api/v1/attempts/:id
func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.manager.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type updateAttemptRequest struct {
	Initial curve.ParameterVector `json:"initial"`
	Note    string                `json:"note"`
}

// handleUpdateAttempt handles PUT /api/v1/attempts/:id
func (s *Server) handleUpdateAttempt(w http.ResponseWriter, r *http.Request, id string) {
	var req updateAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if !req.Initial.Valid() {
		http.Error(w, "lambda1 and lambda2 must be positive", http.StatusBadRequest)
		return
	}

	record, err := s.manager.UpdateInitial(r.Context(), id, req.Initial, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleDeleteAttempt handles DELETE /api/v1/attempts/:id
func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.manager.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type improveRequest struct {
	Strategy string `json:"strategy"`
}

// handleImprove handles POST /api/v1/attempts/:id/improve. The run is
// synchronous; progress is mirrored to any SSE subscribers on the attempt's
// stream. A run that finds nothing better returns 200 with improved=false.
func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request, id string) {
	var req improveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	strategy, err := opt.ParseStrategy(req.Strategy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	progress := func(iterations int, bestObjective float64) {
		s.broadcaster.Broadcast(ProgressEvent{
			AttemptID:     id,
			Phase:         "running",
			Iterations:    iterations,
			BestObjective: bestObjective,
			Timestamp:     time.Now(),
		})
	}

	outcome, err := s.manager.Improve(r.Context(), id, strategy, progress)
	if err != nil {
		writeError(w, err)
		return
	}

	s.broadcaster.Broadcast(ProgressEvent{
		AttemptID:     id,
		Phase:         "done",
		Iterations:    outcome.Iterations,
		BestObjective: outcome.NewObjective,
		Improved:      outcome.Improved,
		Timestamp:     time.Now(),
	})

	writeJSON(w, http.StatusOK, outcome)
}

// handleGetCurve handles GET /api/v1/attempts/:id/curve
func (s *Server) handleGetCurve(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, err := s.manager.Curve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
