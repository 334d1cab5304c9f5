package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the JSON error envelope of the API. Clients show Message and
// branch on Code.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes sent alongside 4xx responses.
const (
	codeInvalidInput       = "invalid_input"
	codeInvalidCredentials = "invalid_credentials"
	codeDuplicateEmail     = "duplicate_email"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeRateLimited        = "rate_limited"
	codeInternal           = "internal"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Message: message, Code: code})
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
