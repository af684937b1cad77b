package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brcurves/svenfit/internal/attempt"
	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/opt"
	"github.com/brcurves/svenfit/internal/storage"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Anything unmapped is
// a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, attempt.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, opt.ErrUnknownStrategy):
		status = http.StatusBadRequest
	case errors.Is(err, curve.ErrInvalidParameter),
		errors.Is(err, curve.ErrInvalidObservationSet):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}
