package domain

import "context"

// Backend is the remote API the state containers talk to. It is implemented by
// the in-process mock backend and by the HTTP client, so callers never know
// which one they hold.
type Backend interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	ListTasks(ctx context.Context, token string) ([]Task, error)
	CreateTask(ctx context.Context, token string, input TaskInput) (*Task, error)
	UpdateTask(ctx context.Context, token, id string, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, token, id string) error
}
