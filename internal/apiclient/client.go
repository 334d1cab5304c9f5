// Package apiclient implements domain.Backend over HTTP against the task API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// Client provides typed access to the task API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:3000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API. It unwraps to the
// domain error matching its status and code, so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	// Path is the request path, used to tell a failed login from an expired token.
	Path string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_credentials":
		return domain.ErrInvalidCredentials
	case "duplicate_email":
		return domain.ErrDuplicateEmail
	case "invalid_input":
		return domain.ErrInvalidInput
	case "unauthorized":
		return domain.ErrUnauthorized
	case "not_found":
		return domain.ErrNotFound
	case "rate_limited":
		return domain.ErrRateLimited
	}

	// Servers that send only a message.
	switch {
	case e.Status == http.StatusUnauthorized && e.Path == "/auth/login":
		return domain.ErrInvalidCredentials
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case e.Status == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.Status == http.StatusBadRequest && e.Path == "/auth/register":
		return domain.ErrDuplicateEmail
	case e.Status == http.StatusBadRequest:
		return domain.ErrInvalidInput
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return domain.ErrTransport
	}
	return nil
}

// Login implements domain.Backend.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var result domain.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register implements domain.Backend.
func (c *Client) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var result domain.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks implements domain.Backend.
func (c *Client) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, token, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask implements domain.Backend.
func (c *Client) CreateTask(ctx context.Context, token string, input domain.TaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, token, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask implements domain.Backend.
func (c *Client) UpdateTask(ctx context.Context, token, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch, token, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask implements domain.Backend.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, token, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := extractError(resp.Body)
		apiErr.Status = resp.StatusCode
		apiErr.Path = path
		return apiErr
	}

	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrTransport, err)
	}
	return nil
}

// transportError tags a failed round trip with domain.ErrTransport, keeping a
// context error visible to errors.Is.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %w: %w", domain.ErrTransport, ctxErr, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

func extractError(body io.Reader) *APIError {
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Error   string `json:"error"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return &APIError{}
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return &APIError{Message: strings.TrimSpace(string(data))}
	}
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	return &APIError{Message: strings.TrimSpace(msg), Code: payload.Code}
}
