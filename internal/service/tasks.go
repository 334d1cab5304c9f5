package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/state"
)

// SessionReader exposes the signed-in user to the task container.
type SessionReader interface {
	Current() (domain.User, string, bool)
}

// Tasks is the container for the signed-in user's task list.
//
// Every request records the generation it started in. Reset bumps the
// generation, so responses to requests issued before a logout are dropped
// instead of leaking into the next session.
type Tasks struct {
	backend domain.Backend
	session SessionReader
	logger  *slog.Logger

	mu         sync.Mutex
	state      state.TaskState
	generation uint64
	inflight   int
}

// NewTasks creates an empty Tasks container.
func NewTasks(backend domain.Backend, session SessionReader, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tasks{backend: backend, session: session, logger: logger}
}

// State returns a snapshot of the task state.
func (t *Tasks) State() state.TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := t.state
	snapshot.Tasks = slices.Clone(t.state.Tasks)
	return snapshot
}

// Reset empties the list and invalidates requests still in flight.
func (t *Tasks) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.inflight = 0
	t.state = state.ReduceTasks(t.state, state.TasksCleared{})
	t.state = state.ReduceTasks(t.state, state.TasksLoading{Loading: false})
}

// LoadTasks replaces the list with the backend's copy. It does nothing when no
// user is signed in. On failure the previous list is kept.
func (t *Tasks) LoadTasks(ctx context.Context) error {
	user, token, ok := t.session.Current()
	if !ok {
		return nil
	}

	gen := t.begin()
	defer t.end(gen)

	tasks, err := t.backend.ListTasks(ctx, token)
	if err != nil {
		t.logger.Error("load tasks", "user_id", user.ID, "error", err)
		t.apply(gen, state.TaskFailed{Message: UserMessage(err)})
		return err
	}
	if !t.apply(gen, state.TasksLoaded{Tasks: tasks}) {
		t.logger.Debug("discarding stale task list", "user_id", user.ID)
	}
	return nil
}

// AddTask creates a todo task for the signed-in user. It is added to the list
// only after the backend has stored it.
func (t *Tasks) AddTask(ctx context.Context, title, description string) (*domain.Task, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if title == "" {
		return nil, t.reject(fmt.Errorf("%w: title is required", domain.ErrInvalidInput))
	}
	if description == "" {
		return nil, t.reject(fmt.Errorf("%w: description is required", domain.ErrInvalidInput))
	}
	_, token, ok := t.session.Current()
	if !ok {
		return nil, t.reject(domain.ErrUnauthorized)
	}

	gen := t.begin()
	defer t.end(gen)

	task, err := t.backend.CreateTask(ctx, token, domain.TaskInput{
		Title:       title,
		Description: description,
		Status:      domain.StatusTodo,
	})
	if err != nil {
		return nil, t.failed(gen, "add task", err)
	}
	t.apply(gen, state.TaskAdded{Task: *task})
	return task, nil
}

// UpdateTask applies patch through the backend and stores the task it returns.
func (t *Tasks) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, t.reject(err)
	}
	_, token, ok := t.session.Current()
	if !ok {
		return nil, t.reject(domain.ErrUnauthorized)
	}

	gen := t.begin()
	defer t.end(gen)

	task, err := t.backend.UpdateTask(ctx, token, id, patch)
	if err != nil {
		return nil, t.failed(gen, "update task", err)
	}
	t.apply(gen, state.TaskUpdated{Task: *task})
	return task, nil
}

// DeleteTask removes the task. Deleting an unknown id succeeds.
func (t *Tasks) DeleteTask(ctx context.Context, id string) error {
	_, token, ok := t.session.Current()
	if !ok {
		return t.reject(domain.ErrUnauthorized)
	}

	gen := t.begin()
	defer t.end(gen)

	if err := t.backend.DeleteTask(ctx, token, id); err != nil {
		return t.failed(gen, "delete task", err)
	}
	t.apply(gen, state.TaskDeleted{ID: id})
	return nil
}

// MoveTask changes the status of a task. Moving a task to the status it
// already has is a no-op and returns the current task.
func (t *Tasks) MoveTask(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	if current, ok := t.State().Find(id); ok && current.Status == status {
		return &current, nil
	}
	return t.UpdateTask(ctx, id, domain.StatusPatch(status))
}

// DropTask handles a task dropped at (x, y) on board. It returns nil without
// error when the point is outside every column or inside the task's own column.
func (t *Tasks) DropTask(ctx context.Context, id string, board Board, x, y float64) (*domain.Task, error) {
	target, ok := board.ColumnAt(x, y)
	if !ok {
		return nil, nil
	}
	current, ok := t.State().Find(id)
	if !ok {
		return nil, t.reject(fmt.Errorf("task %s: %w", id, domain.ErrNotFound))
	}
	if current.Status == target {
		return nil, nil
	}
	return t.UpdateTask(ctx, id, domain.StatusPatch(target))
}

func (t *Tasks) begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight++
	t.state = state.ReduceTasks(t.state, state.TasksLoading{Loading: true})
	return t.generation
}

func (t *Tasks) end(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return
	}
	t.inflight--
	if t.inflight <= 0 {
		t.inflight = 0
		t.state = state.ReduceTasks(t.state, state.TasksLoading{Loading: false})
	}
}

// apply reduces action into the state unless the generation has moved on.
func (t *Tasks) apply(gen uint64, action state.TaskAction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return false
	}
	t.state = state.ReduceTasks(t.state, action)
	return true
}

func (t *Tasks) reject(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state.ReduceTasks(t.state, state.TaskFailed{Message: UserMessage(err)})
	return err
}

func (t *Tasks) failed(gen uint64, op string, err error) error {
	if IsTransportError(err) {
		t.logger.Error(op, "error", err)
	}
	t.apply(gen, state.TaskFailed{Message: UserMessage(err)})
	return err
}
