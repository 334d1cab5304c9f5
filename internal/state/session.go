// Package state holds the reducers behind the session and task containers.
// Each container state changes only through its Reduce function, driven by a
// closed set of action types.
package state

import "github.com/msomdec/taskboard/internal/domain"

// SessionStatus is the lifecycle stage of the session.
type SessionStatus int

const (
	Bootstrapping SessionStatus = iota
	Anonymous
	Authenticated
)

func (s SessionStatus) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// SessionState is the single source of truth for who is signed in.
type SessionState struct {
	Status  SessionStatus
	User    *domain.User
	Token   string
	Loading bool
	Error   string
	Success string
}

// InitialSession is the state before the persisted session has been read.
func InitialSession() SessionState {
	return SessionState{Status: Bootstrapping, Loading: true}
}

// SessionAction is implemented only by the action types in this package.
type SessionAction interface {
	sessionAction()
}

// Restored ends bootstrapping. A nil User means nothing usable was persisted.
type Restored struct {
	User  *domain.User
	Token string
}

// SignedIn records a successful login or registration.
type SignedIn struct {
	User    domain.User
	Token   string
	Message string
}

// SignedOut clears the current user.
type SignedOut struct {
	Message string
}

// SessionLoading toggles the loading flag.
type SessionLoading struct {
	Loading bool
}

// SessionFailed records a user-visible error without changing status.
type SessionFailed struct {
	Message string
}

// MessagesCleared drops both feedback messages.
type MessagesCleared struct{}

func (Restored) sessionAction()        {}
func (SignedIn) sessionAction()        {}
func (SignedOut) sessionAction()       {}
func (SessionLoading) sessionAction()  {}
func (SessionFailed) sessionAction()   {}
func (MessagesCleared) sessionAction() {}

// ReduceSession returns the state that results from applying action to s.
func ReduceSession(s SessionState, action SessionAction) SessionState {
	switch a := action.(type) {
	case Restored:
		if a.User == nil || a.Token == "" {
			s.Status, s.User, s.Token = Anonymous, nil, ""
			return s
		}
		u := *a.User
		s.Status, s.User, s.Token = Authenticated, &u, a.Token
	case SignedIn:
		u := a.User
		s.Status, s.User, s.Token = Authenticated, &u, a.Token
		s.Error, s.Success = "", a.Message
	case SignedOut:
		s.Status, s.User, s.Token = Anonymous, nil, ""
		s.Error, s.Success = "", a.Message
	case SessionLoading:
		s.Loading = a.Loading
	case SessionFailed:
		s.Error, s.Success = a.Message, ""
	case MessagesCleared:
		s.Error, s.Success = "", ""
	}
	return s
}
