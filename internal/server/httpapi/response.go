package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
	"github.com/dmitrijs2005/securepass/internal/server/validation"
)

// errorResponse is the JSON error envelope. Details carries per-field
// validation messages.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// messageResponse acknowledges a write, optionally with a payload.
type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

var (
	errInternal = errorResponse{Error: "Internal server error", Message: "An unexpected error occurred"}
	errBadLogin = errorResponse{Error: "Unauthorized", Message: "Invalid username or password"}
	errNoAuth   = errorResponse{Error: "Unauthorized", Message: "Authentication required"}
	errNotFound = errorResponse{Error: "Not Found", Message: "Credential not found or unauthorized"}
	errTaken    = errorResponse{Error: "Conflict", Message: "Username already exists"}
	errBadJSON  = errorResponse{Error: "Invalid argument", Message: "Request body is not valid JSON"}
	errDisabled = errorResponse{Error: "Service Unavailable", Message: "Backups are not configured"}
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", guard.ResponseContentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error","message":"An unexpected error occurred"}`))
		return
	}

	w.Header().Set("Content-Type", guard.ResponseContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}

// writeRejection copies a guard rejection onto the response.
func writeRejection(w http.ResponseWriter, rej *guard.Rejection) {
	for k, vs := range rej.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	writeJSON(w, rej.Status, rej.Body)
}

// statusFor maps a service error onto a status and body. Unknown errors
// become a generic 500 so internals never leak.
func statusFor(err error) (int, errorResponse) {
	var fields validation.Errors
	switch {
	case errors.As(err, &fields):
		return http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Message: "Invalid input data",
			Details: fields,
		}
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, errTaken
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errNoAuth
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errNotFound
	case errors.Is(err, common.ErrFeatureDisabled):
		return http.StatusServiceUnavailable, errDisabled
	}
	return http.StatusInternalServerError, errInternal
}
