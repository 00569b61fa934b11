package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"shiftguard/internal/compliance"
	"shiftguard/pkg/platform/sentinel"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation so every handler returns
// the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, sentinel.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, sentinel.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, compliance.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	}
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": err.Error(),
	})
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "malformed_request",
			"error_description": err.Error(),
		})
		return req, false
	}
	return req, true
}
