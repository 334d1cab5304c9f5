package handler

import (
	"net/http"

	"github.com/msomdec/taskboard/internal/domain"
)

// AuthHandler serves the /auth routes of the mock API.
type AuthHandler struct {
	backend domain.Backend
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(backend domain.Backend) *AuthHandler {
	return &AuthHandler{backend: backend}
}

// HandleLogin processes a JSON login request.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"token":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "Invalid request body.")
		return
	}

	result, err := h.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeBackendError(w, r, "login user", err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(result))
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"email":"...","password":"..."}
// Response: 201 {"token":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "Invalid request body.")
		return
	}

	result, err := h.backend.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeBackendError(w, r, "register user", err)
		return
	}
	writeJSON(w, http.StatusCreated, newAuthResponse(result))
}
