package credential

import (
	"context"
	"errors"
	"sync"
)

// Reconciler is the slice of the engine the session drives: guest-data
// migration on login and state clearing on logout.
type Reconciler interface {
	Migrate(ctx context.Context)
	Clear(ctx context.Context)
}

// TokenStore abstracts credential persistence so tests can swap the system
// keyring for an in-memory map.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Session tracks the current bearer credential and drives the engine's
// authentication transitions. It implements remote.TokenSource, so the
// engine's "is a credential present" probe and the HTTP client's auth
// header both read from here.
type Session struct {
	mu       sync.Mutex
	token    string
	ownerTag string

	store      TokenStore
	reconciler Reconciler
}

// NewSession creates a Session backed by the system keyring.
func NewSession() *Session {
	return &Session{store: systemKeyring{}}
}

// NewSessionWith creates a Session over a custom token store.
func NewSessionWith(store TokenStore) *Session {
	return &Session{store: store}
}

// Bind attaches the engine after construction; the engine needs the session
// as its token source first, so the two are wired in stages.
func (s *Session) Bind(r Reconciler) {
	s.mu.Lock()
	s.reconciler = r
	s.mu.Unlock()
}

// Token returns the current bearer credential. The second return is false
// for guest sessions.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// OwnerTag returns the identity associated with the credential, if any.
func (s *Session) OwnerTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerTag
}

// Resume loads a previously stored credential, if present. Missing
// credentials are not an error; the session simply stays guest.
func (s *Session) Resume() {
	token, err := s.store.Get(tokenKey)
	if err != nil || token == "" {
		return
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Login stores the credential and runs the post-login sequence: migrate
// every guest-created task, then pull the canonical remote state (Migrate
// triggers the pull itself).
func (s *Session) Login(ctx context.Context, token, ownerTag string) error {
	if token == "" {
		return errors.New("empty credential")
	}
	if err := s.store.Set(tokenKey, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.ownerTag = ownerTag
	r := s.reconciler
	s.mu.Unlock()

	if r != nil {
		r.Migrate(ctx)
	}
	return nil
}

// Logout drops the credential and clears local task state outright: the
// engine is not a durable offline store for authenticated sessions.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Delete(tokenKey)

	s.mu.Lock()
	s.token = ""
	s.ownerTag = ""
	r := s.reconciler
	s.mu.Unlock()

	if r != nil {
		r.Clear(ctx)
	}
	return err
}
