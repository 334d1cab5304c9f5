package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/msomdec/taskboard/internal/domain"
)

// UserMessage converts an error from a container operation into text that can
// be shown to the user as-is.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "An account with that email already exists."
	case errors.Is(err, domain.ErrNotFound):
		return "Task not found."
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many attempts. Please wait and try again."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case IsTransportError(err):
		return "Could not reach the server. Please try again."
	default:
		slog.Error("unexpected operation error", "error", err)
		return "An unexpected error occurred. Please try again."
	}
}

// IsTransportError reports whether err came from the storage or network layer
// rather than from a decision of the backend.
func IsTransportError(err error) bool {
	return errors.Is(err, domain.ErrTransport) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
