package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/service"
)

// RegisterRoutes sets up the mock API routes on the given mux. A nil limiter
// disables rate limiting of the auth routes.
func RegisterRoutes(mux *http.ServeMux, backend domain.Backend, limiter *service.TokenBucket) {
	auth := NewAuthHandler(backend)
	tasks := NewTaskHandler(backend)

	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return h
		}
		return RateLimit(limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /auth/login", limit(auth.HandleLogin))
	mux.HandleFunc("POST /auth/register", limit(auth.HandleRegister))

	mux.HandleFunc("GET /tasks", tasks.HandleList)
	mux.HandleFunc("POST /tasks", tasks.HandleCreate)
	mux.HandleFunc("PATCH /tasks/{id}", tasks.HandleUpdate)
	mux.HandleFunc("DELETE /tasks/{id}", tasks.HandleDelete)
}

// Wrap applies the standard middleware chain to the API handler.
func Wrap(h http.Handler, logger *slog.Logger) http.Handler {
	return SecurityHeaders(RequestID(AccessLog(logger, h)))
}
