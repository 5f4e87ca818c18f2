package services

import (
	"sync"
	"sync/atomic"
)

// State is the phase of the authentication attempt owned by a Session.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateAuthenticating
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateValidating:
		return "Validating"
	case StateAuthenticating:
		return "Authenticating"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Session is the authentication context of one device: the state of the
// attempt in flight and the identity it last authenticated. It is owned by
// the AuthService; callers only read it.
type Session struct {
	state    atomic.Int32
	observer func(from, to State)

	mu          sync.RWMutex
	identity    string
	accessToken string
}

func newSession(observer func(from, to State)) *Session {
	return &Session{observer: observer}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Identity is the authenticated identity, or "" when logged out.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// AccessToken is the gateway token of the last remote login, if any.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) set(identity, accessToken string) {
	s.mu.Lock()
	s.identity, s.accessToken = identity, accessToken
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.set("", "")
}

// transition moves from -> to atomically and reports whether it happened.
func (s *Session) transition(from, to State) bool {
	if !s.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	if s.observer != nil {
		s.observer(from, to)
	}
	return true
}

// begin claims the session for a new attempt. It fails if one is in flight.
func (s *Session) begin() bool {
	return s.transition(StateIdle, StateValidating)
}

// authenticate marks the end of input validation.
func (s *Session) authenticate() {
	s.transition(StateValidating, StateAuthenticating)
}

// finish records the outcome and returns the session to Idle, whatever
// phase the attempt stopped in.
func (s *Session) finish(ok bool) {
	outcome := StateFailed
	if ok {
		outcome = StateSucceeded
	}
	cur := s.State()
	if cur == StateIdle {
		return
	}
	s.transition(cur, outcome)
	s.transition(outcome, StateIdle)
}
