package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, record.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, record.ErrSkipIndexing), errors.Is(err, record.ErrMissingModel):
		return http.StatusConflict
	case errors.Is(err, record.ErrUnknownAction),
		errors.Is(err, record.ErrUnknownVerb),
		errors.Is(err, record.ErrInvalidField),
		errors.Is(err, actions.ErrInvalidArgument),
		errors.Is(err, search.ErrTooManyResults),
		errors.Is(err, search.ErrUnknownDataType),
		errors.Is(err, holdingpen.ErrNoDataTypes):
		return http.StatusBadRequest
	case errors.Is(err, ratelimit.ErrBudgetExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with the status statusFor picks. Server errors are
// logged; their message is still returned.
func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
