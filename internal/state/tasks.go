package state

import (
	"slices"

	"github.com/msomdec/taskboard/internal/domain"
)

// TaskState is the in-memory task list of the signed-in user.
type TaskState struct {
	Tasks   []domain.Task
	Loading bool
	Error   string
}

// TaskAction is implemented only by the action types in this package.
type TaskAction interface {
	taskAction()
}

// TasksLoaded replaces the whole list.
type TasksLoaded struct {
	Tasks []domain.Task
}

// TaskAdded appends a task confirmed by the backend.
type TaskAdded struct {
	Task domain.Task
}

// TaskUpdated replaces the task with the same ID by the backend's copy.
type TaskUpdated struct {
	Task domain.Task
}

// TaskDeleted removes the task with ID.
type TaskDeleted struct {
	ID string
}

// TasksCleared empties the list, e.g. on logout.
type TasksCleared struct{}

// TasksLoading toggles the loading flag.
type TasksLoading struct {
	Loading bool
}

// TaskFailed records a user-visible error. An empty message clears it.
type TaskFailed struct {
	Message string
}

func (TasksLoaded) taskAction()  {}
func (TaskAdded) taskAction()    {}
func (TaskUpdated) taskAction()  {}
func (TaskDeleted) taskAction()  {}
func (TasksCleared) taskAction() {}
func (TasksLoading) taskAction() {}
func (TaskFailed) taskAction()   {}

// ReduceTasks returns the state that results from applying action to s.
// The returned Tasks slice never aliases the previous one.
func ReduceTasks(s TaskState, action TaskAction) TaskState {
	switch a := action.(type) {
	case TasksLoaded:
		s.Tasks = slices.Clone(a.Tasks)
		s.Error = ""
	case TaskAdded:
		s.Tasks = append(slices.Clone(s.Tasks), a.Task)
		s.Error = ""
	case TaskUpdated:
		tasks := slices.Clone(s.Tasks)
		for i := range tasks {
			if tasks[i].ID == a.Task.ID {
				tasks[i] = a.Task
			}
		}
		s.Tasks = tasks
		s.Error = ""
	case TaskDeleted:
		s.Tasks = slices.DeleteFunc(slices.Clone(s.Tasks), func(t domain.Task) bool {
			return t.ID == a.ID
		})
		s.Error = ""
	case TasksCleared:
		s.Tasks = nil
		s.Error = ""
	case TasksLoading:
		s.Loading = a.Loading
	case TaskFailed:
		s.Error = a.Message
	}
	return s
}

// ByStatus returns the tasks with the given status, in list order.
func (s TaskState) ByStatus(status domain.TaskStatus) []domain.Task {
	var out []domain.Task
	for _, t := range s.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with ID.
func (s TaskState) Find(id string) (domain.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
