package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/modelexplorer/internal/apperr"
)

// retryAfter is the delay suggested while the render environment is loading.
const retryAfter = 1

// writeJSON encodes v before touching w, so an encoding failure still
// produces a clean 500.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// ErrorResponse is the body of a failed JSON request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Kind classifies the failure: malformed, not_found, unavailable or internal.
	Kind string `json:"kind"`
	// RetryAfter is set, in seconds, when the request may succeed later.
	RetryAfter int `json:"retry_after,omitempty"`
}

// writeJSONError answers with the status and body matching err.
func (h *Handler) writeJSONError(w http.ResponseWriter, err error) {
	var (
		bad *apperr.MalformedNavigationError
		env *apperr.EnvironmentUnavailableError
	)
	resp := ErrorResponse{Error: err.Error(), Kind: "internal"}
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &bad):
		status, resp.Kind = http.StatusBadRequest, "malformed"
	case errors.As(err, &env):
		status, resp.Kind, resp.RetryAfter = http.StatusServiceUnavailable, "unavailable", retryAfter
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	case errors.Is(err, apperr.ErrNotFound):
		status, resp.Kind = http.StatusNotFound, "not_found"
	}
	h.writeJSON(w, status, resp)
}
