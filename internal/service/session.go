package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/repository"
	"github.com/msomdec/taskboard/internal/state"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Session is the container for the signed-in user. It talks to the backend for
// credentials and keeps the token and user in the local Record Store so the
// session survives restarts.
type Session struct {
	backend domain.Backend
	store   domain.RecordStore
	logger  *slog.Logger

	mu        sync.RWMutex
	state     state.SessionState
	onSignIn  []func()
	onSignOut []func()
}

// NewSession creates a Session in the Bootstrapping state. Call Bootstrap to
// restore a persisted session.
func NewSession(backend domain.Backend, store domain.RecordStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		backend: backend,
		store:   store,
		logger:  logger,
		state:   state.InitialSession(),
	}
}

// State returns a snapshot of the session state.
func (s *Session) State() state.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state
	if snapshot.User != nil {
		u := *snapshot.User
		snapshot.User = &u
	}
	return snapshot
}

// Current returns the signed-in user and token.
func (s *Session) Current() (domain.User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Status != state.Authenticated || s.state.User == nil {
		return domain.User{}, "", false
	}
	return *s.state.User, s.state.Token, true
}

// OnSignIn registers fn to run after every successful login or registration,
// including one that replaces another signed-in user.
func (s *Session) OnSignIn(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignIn = append(s.onSignIn, fn)
}

// OnSignOut registers fn to run after every logout.
func (s *Session) OnSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignOut = append(s.onSignOut, fn)
}

// Bootstrap restores the persisted token and user. Anything missing or
// unreadable leaves the session Anonymous.
func (s *Session) Bootstrap(ctx context.Context) state.SessionStatus {
	s.dispatch(state.SessionLoading{Loading: true})
	defer s.dispatch(state.SessionLoading{Loading: false})

	user, token, err := s.readPersisted(ctx)
	if err != nil {
		s.logger.Error("restore session", "error", err)
		s.dispatch(state.Restored{})
		return state.Anonymous
	}
	s.dispatch(state.Restored{User: user, Token: token})
	return s.State().Status
}

// Login signs in with email and password. Wrong credentials yield
// domain.ErrInvalidCredentials and leave the session unchanged.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	s.dispatch(state.SessionLoading{Loading: true})
	defer s.dispatch(state.SessionLoading{Loading: false})

	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, s.fail("login", err)
	}
	if err := s.persist(ctx, result); err != nil {
		return nil, s.fail("login", err)
	}

	s.dispatch(state.SignedIn{User: result.User, Token: result.Token, Message: "Signed in successfully."})
	s.runHooks(func() []func() { return s.onSignIn })
	s.logger.Info("signed in", "user_id", result.User.ID)
	user := result.User
	return &user, nil
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := validateCredentials(email, password); err != nil {
		s.dispatch(state.SessionFailed{Message: UserMessage(err)})
		return nil, err
	}

	s.dispatch(state.SessionLoading{Loading: true})
	defer s.dispatch(state.SessionLoading{Loading: false})

	result, err := s.backend.Register(ctx, email, password)
	if err != nil {
		return nil, s.fail("register", err)
	}
	if err := s.persist(ctx, result); err != nil {
		return nil, s.fail("register", err)
	}

	s.dispatch(state.SignedIn{User: result.User, Token: result.Token, Message: "Account created successfully."})
	s.runHooks(func() []func() { return s.onSignIn })
	s.logger.Info("registered", "user_id", result.User.ID)
	user := result.User
	return &user, nil
}

// Logout forgets the persisted session. Storage errors are logged, never returned.
func (s *Session) Logout(ctx context.Context) {
	s.dispatch(state.SessionLoading{Loading: true})
	defer s.dispatch(state.SessionLoading{Loading: false})

	for _, key := range []string{domain.KeyAuthToken, domain.KeyCurrentUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("remove persisted session", "key", key, "error", err)
		}
	}
	s.dispatch(state.SignedOut{Message: "Signed out."})
	s.runHooks(func() []func() { return s.onSignOut })
}

// ClearMessages drops the current error and success messages.
func (s *Session) ClearMessages() {
	s.dispatch(state.MessagesCleared{})
}

// ValidateSignup checks a signup form before anything is sent to the backend.
func ValidateSignup(email, password, confirmPassword string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, MaxPasswordBytes)
	}
	return nil
}

// runHooks calls the hooks returned by list outside the lock.
func (s *Session) runHooks(list func() []func()) {
	s.mu.RLock()
	hooks := slices.Clone(list())
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *Session) dispatch(action state.SessionAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.ReduceSession(s.state, action)
}

func (s *Session) fail(op string, err error) error {
	if IsTransportError(err) {
		s.logger.Error(op+" failed", "error", err)
	}
	s.dispatch(state.SessionFailed{Message: UserMessage(err)})
	return err
}

func (s *Session) persist(ctx context.Context, result *domain.AuthResult) error {
	if err := repository.SetJSON(ctx, s.store, domain.KeyAuthToken, result.Token); err != nil {
		return fmt.Errorf("persist session: %w: %w", domain.ErrTransport, err)
	}
	if err := repository.SetJSON(ctx, s.store, domain.KeyCurrentUser, result.User.Public()); err != nil {
		return fmt.Errorf("persist session: %w: %w", domain.ErrTransport, err)
	}
	return nil
}

func (s *Session) readPersisted(ctx context.Context) (*domain.User, string, error) {
	var token string
	found, err := repository.GetJSON(ctx, s.store, domain.KeyAuthToken, &token)
	if err != nil || !found {
		return nil, "", err
	}
	var user domain.User
	found, err = repository.GetJSON(ctx, s.store, domain.KeyCurrentUser, &user)
	if err != nil || !found {
		return nil, "", err
	}
	return &user, token, nil
}
