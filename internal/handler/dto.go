package handler

import "github.com/msomdec/taskboard/internal/domain"

// credentialsRequest is the body of POST /auth/login and POST /auth/register.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by a successful login or registration.
type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func newAuthResponse(result *domain.AuthResult) authResponse {
	return authResponse{Token: result.Token, User: result.User.Public()}
}

// createTaskRequest is the body of POST /tasks. Any userId sent by the client
// is ignored; the owner comes from the bearer token.
type createTaskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
}

func (r createTaskRequest) toInput() domain.TaskInput {
	return domain.TaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}
