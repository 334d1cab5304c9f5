package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// DefaultMockLatency is the simulated round-trip time of every mock API call.
const DefaultMockLatency = 500 * time.Millisecond

// MockBackendConfig tunes a MockBackend.
type MockBackendConfig struct {
	BcryptCost int
	// Latency is applied before every operation. Zero disables it.
	Latency time.Duration
	Logger  *slog.Logger
}

// MockBackend emulates the REST API on top of a Record Store. Users live under
// the "users" key and each user's tasks under "tasks_<userId>".
type MockBackend struct {
	store      domain.RecordStore
	tokens     TokenIssuer
	bcryptCost int
	latency    time.Duration
	logger     *slog.Logger

	hashPassword func(password []byte, cost int) ([]byte, error)

	// mu serialises read-modify-write cycles on the store.
	mu sync.Mutex
}

// NewMockBackend creates a MockBackend.
func NewMockBackend(store domain.RecordStore, tokens TokenIssuer, cfg MockBackendConfig) *MockBackend {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MockBackend{
		store:      store,
		tokens:     tokens,
		bcryptCost: cfg.BcryptCost,
		latency:    cfg.Latency,
		logger:     cfg.Logger,

		hashPassword: bcrypt.GenerateFromPassword,
	}
}

// Login returns a token for the user whose email and password match.
func (b *MockBackend) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	users, err := b.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(users, func(u domain.User) bool { return u.Email == email })
	if idx < 0 {
		return nil, domain.ErrInvalidCredentials
	}
	user := users[idx]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return b.authResult(user)
}

// Register creates a user with the next sequential ID and returns a token for it.
func (b *MockBackend) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, MaxPasswordBytes)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	users, err := b.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(users, func(u domain.User) bool { return u.Email == email }) {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := b.hashPassword([]byte(password), b.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           nextID(users, func(u domain.User) string { return u.ID }),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := b.save(ctx, domain.KeyUsers, append(users, user)); err != nil {
		return nil, err
	}

	b.logger.Info("user registered", "user_id", user.ID)
	return b.authResult(user)
}

// ListTasks returns the tasks of the token's user. Unusable tokens see an empty list.
func (b *MockBackend) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	tasks, err := b.loadTasks(ctx, b.tokens.Subject(token))
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask stores a new task for the token's user with the next sequential ID.
// The owner is always taken from the token, never from the input.
func (b *MockBackend) CreateTask(ctx context.Context, token string, input domain.TaskInput) (*domain.Task, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	userID := b.tokens.Subject(token)
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Status == "" {
		input.Status = domain.StatusTodo
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, err := b.loadTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	task := domain.Task{
		ID:          nextID(tasks, func(t domain.Task) string { return t.ID }),
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		UserID:      userID,
	}
	if err := b.save(ctx, domain.TasksKey(userID), append(tasks, task)); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask merges patch into the task with id and returns the stored result.
func (b *MockBackend) UpdateTask(ctx context.Context, token, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	userID := b.tokens.Subject(token)

	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, err := b.loadTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	tasks[idx] = patch.Apply(tasks[idx])
	if err := b.save(ctx, domain.TasksKey(userID), tasks); err != nil {
		return nil, err
	}
	task := tasks[idx]
	return &task, nil
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (b *MockBackend) DeleteTask(ctx context.Context, token, id string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	userID := b.tokens.Subject(token)

	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, err := b.loadTasks(ctx, userID)
	if err != nil {
		return err
	}
	before := len(tasks)
	remaining := slices.DeleteFunc(tasks, func(t domain.Task) bool { return t.ID == id })
	if len(remaining) == before {
		return nil
	}
	return b.save(ctx, domain.TasksKey(userID), remaining)
}

// Seed writes the demo account and its sample task when no users exist yet.
func (b *MockBackend) Seed(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, err := b.loadUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := b.hashPassword([]byte(demoPassword), b.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	demo := domain.User{ID: "1", Email: demoEmail, PasswordHash: string(hash)}
	if err := b.save(ctx, domain.KeyUsers, []domain.User{demo}); err != nil {
		return err
	}
	sample := []domain.Task{{
		ID:          "1",
		Title:       "Sample task",
		Description: "This is a sample task",
		Status:      domain.StatusTodo,
		UserID:      demo.ID,
	}}
	if err := b.save(ctx, domain.TasksKey(demo.ID), sample); err != nil {
		return err
	}

	b.logger.Info("demo data seeded", "email", demoEmail)
	return nil
}

const (
	demoEmail    = "usuario@teste.com"
	demoPassword = "senha123"
)

func (b *MockBackend) authResult(user domain.User) (*domain.AuthResult, error) {
	token, err := b.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.AuthResult{Token: token, User: user.Public()}, nil
}

func (b *MockBackend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MockBackend) loadUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if _, err := repository.GetJSON(ctx, b.store, domain.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("load users: %w: %w", domain.ErrTransport, err)
	}
	return users, nil
}

func (b *MockBackend) loadTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if _, err := repository.GetJSON(ctx, b.store, domain.TasksKey(userID), &tasks); err != nil {
		return nil, fmt.Errorf("load tasks: %w: %w", domain.ErrTransport, err)
	}
	return tasks, nil
}

func (b *MockBackend) save(ctx context.Context, key string, v any) error {
	if err := repository.SetJSON(ctx, b.store, key, v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return nil
}

// nextID returns one more than the largest numeric ID in items, so IDs stay
// unique after deletions.
func nextID[T any](items []T, id func(T) string) string {
	maxID := 0
	for _, item := range items {
		n, err := strconv.Atoi(strings.TrimSpace(id(item)))
		if err != nil {
			continue
		}
		maxID = max(maxID, n)
	}
	return strconv.Itoa(maxID + 1)
}

