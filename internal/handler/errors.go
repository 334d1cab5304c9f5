package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/taskboard/internal/domain"
)

// statusClientClosedRequest is recorded when the client disconnects before the
// backend answers. The response itself is never read.
const statusClientClosedRequest = 499

// writeBackendError maps a backend error onto the API's status codes.
func writeBackendError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, codeDuplicateEmail, "User already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "Task not found")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "Too many attempts. Please wait and try again.")
	case errors.Is(err, context.Canceled):
		slog.InfoContext(r.Context(), op+" cancelled by client", "request_id", RequestIDFromContext(r.Context()))
		w.WriteHeader(statusClientClosedRequest)
	default:
		slog.ErrorContext(r.Context(), op, "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again.")
	}
}
