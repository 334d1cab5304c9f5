package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository"
	"github.com/msomdec/taskboard/internal/repository/memory"
	"github.com/msomdec/taskboard/internal/service"
	"github.com/msomdec/taskboard/internal/state"
)

func TestSession_BootstrapWithoutPersistedData(t *testing.T) {
	session, _, _ := newTestContainers(t)

	if got := session.State().Status; got != state.Bootstrapping {
		t.Fatalf("expected bootstrapping before Bootstrap, got %v", got)
	}
	if got := session.Bootstrap(context.Background()); got != state.Anonymous {
		t.Fatalf("expected anonymous, got %v", got)
	}
	if session.State().Loading {
		t.Fatal("loading should be reset after bootstrap")
	}
}

func TestSession_BootstrapRestoresPersistedUser(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	if err := repository.SetJSON(ctx, store, domain.KeyAuthToken, "mock-token-7"); err != nil {
		t.Fatal(err)
	}
	if err := repository.SetJSON(ctx, store, domain.KeyCurrentUser, domain.User{ID: "7", Email: "p@x.com"}); err != nil {
		t.Fatal(err)
	}

	session := service.NewSession(nil, store, nil)
	if got := session.Bootstrap(ctx); got != state.Authenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
	user, token, ok := session.Current()
	if !ok || user.ID != "7" || token != "mock-token-7" {
		t.Fatalf("unexpected current session: %+v %q %v", user, token, ok)
	}
}

func TestSession_BootstrapTokenWithoutUser(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	if err := repository.SetJSON(ctx, store, domain.KeyAuthToken, "mock-token-7"); err != nil {
		t.Fatal(err)
	}

	session := service.NewSession(nil, store, nil)
	if got := session.Bootstrap(ctx); got != state.Anonymous {
		t.Fatalf("expected anonymous, got %v", got)
	}
}

func TestSession_BootstrapReadFailure(t *testing.T) {
	session := service.NewSession(nil, failingStore{err: errors.New("unreadable")}, nil)
	if got := session.Bootstrap(context.Background()); got != state.Anonymous {
		t.Fatalf("expected anonymous on read failure, got %v", got)
	}
}

func TestSession_RegisterPersistsAndSignsIn(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)

	user, err := session.Register(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	st := session.State()
	if st.Status != state.Authenticated || st.User.ID != user.ID {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Success == "" || st.Error != "" || st.Loading {
		t.Fatalf("expected success message only, got %+v", st)
	}
}

func TestSession_SurvivesRestart(t *testing.T) {
	backend, store := newTestBackend(t)
	ctx := context.Background()

	first := service.NewSession(backend, store, nil)
	first.Bootstrap(ctx)
	registered, err := first.Register(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	second := service.NewSession(backend, store, nil)
	if got := second.Bootstrap(ctx); got != state.Authenticated {
		t.Fatalf("expected restored session, got %v", got)
	}
	user, _, _ := second.Current()
	if user.ID != registered.ID || user.PasswordHash != "" {
		t.Fatalf("unexpected restored user %+v", user)
	}
}

func TestSession_LoginWrongPassword(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)
	if _, err := session.Register(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session.Logout(ctx)

	_, err := session.Login(ctx, "a@x.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	st := session.State()
	if st.Status != state.Anonymous {
		t.Fatalf("expected anonymous, got %v", st.Status)
	}
	if st.Error != "Invalid email or password." || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSession_RegisterDuplicate(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)
	if _, err := session.Register(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session.Logout(ctx)

	if _, err := session.Register(ctx, "a@x.com", "secret2"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if session.State().Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestSession_LogoutClearsPersistedSession(t *testing.T) {
	backend, store := newTestBackend(t)
	ctx := context.Background()
	session := service.NewSession(backend, store, nil)
	session.Bootstrap(ctx)
	if _, err := session.Register(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var hooked bool
	session.OnSignOut(func() { hooked = true })
	session.Logout(ctx)

	if !hooked {
		t.Fatal("sign-out hook did not run")
	}
	if _, _, ok := session.Current(); ok {
		t.Fatal("expected no current user after logout")
	}
	for _, key := range []string{domain.KeyAuthToken, domain.KeyCurrentUser} {
		if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("key %q still persisted: %v", key, err)
		}
	}
}

func TestSession_LogoutIgnoresStorageErrors(t *testing.T) {
	session := service.NewSession(nil, failingStore{err: errors.New("read-only")}, nil)
	session.Logout(context.Background())

	st := session.State()
	if st.Status != state.Anonymous || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSession_RegisterValidation(t *testing.T) {
	backend, store := newTestBackend(t)
	session := service.NewSession(backend, store, nil)

	if _, err := session.Register(context.Background(), "a@x.com", "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.Get(context.Background(), domain.KeyUsers); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("validation failure reached storage: %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name            string
		email, password string
		confirm         string
		wantErr         bool
	}{
		{name: "valid", email: "a@x.com", password: "secret1", confirm: "secret1"},
		{name: "empty email", email: " ", password: "secret1", confirm: "secret1", wantErr: true},
		{name: "empty password", email: "a@x.com", password: "", confirm: "", wantErr: true},
		{name: "too short", email: "a@x.com", password: "abc", confirm: "abc", wantErr: true},
		{name: "mismatch", email: "a@x.com", password: "secret1", confirm: "secret2", wantErr: true},
		{name: "too long", email: "a@x.com", password: strings.Repeat("x", 73), confirm: strings.Repeat("x", 73), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateSignup(tt.email, tt.password, tt.confirm)
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSession_ClearMessages(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)
	_, _ = session.Login(ctx, "nobody@x.com", "secret1")

	session.ClearMessages()
	if st := session.State(); st.Error != "" || st.Success != "" {
		t.Fatalf("expected messages cleared, got %+v", st)
	}
}

func TestSession_RegisterRejectsOverlongPassword(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)

	_, err := session.Register(ctx, "long@x.com", strings.Repeat("p", service.MaxPasswordBytes+1))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := session.State().Error; !strings.Contains(got, "at most 72 bytes") {
		t.Fatalf("unexpected error message %q", got)
	}

	if _, err := session.Register(ctx, "max@x.com", strings.Repeat("p", service.MaxPasswordBytes)); err != nil {
		t.Fatalf("Register with %d-byte password: %v", service.MaxPasswordBytes, err)
	}
}

func TestSession_SignInHooks(t *testing.T) {
	session, _, _ := newTestContainers(t)
	ctx := context.Background()
	session.Bootstrap(ctx)

	calls := 0
	session.OnSignIn(func() { calls++ })
	if _, err := session.Register(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := session.Login(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := session.Login(ctx, "a@x.com", "wrong-password"); err == nil {
		t.Fatal("expected login failure")
	}
	if calls != 2 {
		t.Fatalf("expected 2 sign-in hook calls, got %d", calls)
	}
}
