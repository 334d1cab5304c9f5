package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/taskboard/internal/apiclient"
	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/handler"
	"github.com/msomdec/taskboard/internal/repository/sqlite"
	"github.com/msomdec/taskboard/internal/service"
	"github.com/msomdec/taskboard/internal/state"
)

var _ domain.Backend = (*apiclient.Client)(nil)

func newTestAPI(t *testing.T) *apiclient.Client {
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

	backend := service.NewMockBackend(db.Records(), service.MockTokens{}, service.MockBackendConfig{BcryptCost: 4})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, backend, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return client
}

func TestClient_AuthErrors(t *testing.T) {
	client := newTestAPI(t)
	ctx := context.Background()

	if _, err := client.Register(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := client.Register(ctx, "a@x.com", "secret1"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := client.Login(ctx, "a@x.com", "bad"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	var apiErr *apiclient.APIError
	_, err := client.Login(ctx, "a@x.com", "bad")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
}

func TestClient_TaskRoundTrip(t *testing.T) {
	client := newTestAPI(t)
	ctx := context.Background()

	res, err := client.Login(ctx, "nobody@x.com", "secret1")
	if err == nil {
		t.Fatalf("expected login failure, got %+v", res)
	}
	res, err = client.Register(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	empty, err := client.ListTasks(ctx, res.Token)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %#v, %v", empty, err)
	}

	task, err := client.CreateTask(ctx, res.Token, domain.TaskInput{Title: "Buy milk", Description: "2% fat"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	updated, err := client.UpdateTask(ctx, res.Token, task.ID, domain.StatusPatch(domain.StatusDone))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != domain.StatusDone || updated.Title != "Buy milk" {
		t.Fatalf("unexpected task %+v", updated)
	}
	if _, err := client.UpdateTask(ctx, res.Token, "404", domain.StatusPatch(domain.StatusDone)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := client.DeleteTask(ctx, res.Token, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := client.CreateTask(ctx, "", domain.TaskInput{Title: "x"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_DrivesContainers(t *testing.T) {
	client := newTestAPI(t)
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "local.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	session := service.NewSession(client, db.Records(), nil)
	tasks := service.NewTasks(client, session, nil)
	session.Bootstrap(ctx)

	if _, err := session.Register(ctx, "c@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.State().Status != state.Authenticated {
		t.Fatal("expected authenticated")
	}
	if _, err := tasks.AddTask(ctx, "remote", "over http"); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := tasks.LoadTasks(ctx); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if got := len(tasks.State().Tasks); got != 1 {
		t.Fatalf("expected 1 task, got %d", got)
	}
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.ListTasks(context.Background(), "mock-token-1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClient_MessageOnlyErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/register":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"User already exists"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
		}
	}))
	defer srv.Close()

	client, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := client.Register(ctx, "a@x.com", "secret1"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := client.Login(ctx, "a@x.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := client.ListTasks(ctx, "t"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client, err := apiclient.New(srv.URL, apiclient.WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.ListTasks(context.Background(), "mock-token-1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"message":"Too many attempts.","code":"rate_limited"}`))
		}
	}))
	defer srv.Close()

	client, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	_, err = client.Login(ctx, "a@x.com", "secret1")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from code, got %v", err)
	}
	if got := service.UserMessage(err); got != "Too many attempts. Please wait and try again." {
		t.Fatalf("unexpected message %q", got)
	}

	if _, err := client.ListTasks(ctx, "t"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from status, got %v", err)
	}
}
