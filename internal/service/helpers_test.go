package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository/sqlite"
	"github.com/msomdec/taskboard/internal/service"
)

func newTestStore(t *testing.T) *sqlite.RecordStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Records()
}

func newTestBackend(t *testing.T) (*service.MockBackend, domain.RecordStore) {
	t.Helper()
	store := newTestStore(t)
	// Use cost 4 for fast tests.
	backend := service.NewMockBackend(store, service.MockTokens{}, service.MockBackendConfig{BcryptCost: 4})
	return backend, store
}

// newTestContainers wires a session and task container the way the app does,
// sharing one store between the backend and the persisted session.
func newTestContainers(t *testing.T) (*service.Session, *service.Tasks, *service.MockBackend) {
	t.Helper()
	backend, store := newTestBackend(t)
	session := service.NewSession(backend, store, nil)
	tasks := service.NewTasks(backend, session, nil)
	session.OnSignIn(tasks.Reset)
	session.OnSignOut(tasks.Reset)
	return session, tasks, backend
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Remove(context.Context, string) error        { return f.err }
