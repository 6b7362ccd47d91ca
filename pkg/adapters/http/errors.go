package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/runner"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Allowed []string `json:"allowed,omitempty"`
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var paramErr *InvalidParamFormatError
	switch {
	case errors.Is(err, errBadRequest),
		errors.As(err, &paramErr),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8),
		errors.Is(err, domain.ErrInvalidSpecialization):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChoice):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the reply body for err, listing the allowed
// choices when err is an *domain.InvalidChoiceError.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var choiceErr *domain.InvalidChoiceError
	if errors.As(err, &choiceErr) {
		resp.Allowed = choiceErr.Allowed
	}
	return resp
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	resp := NewErrorResponse(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
