// Package session holds the mock login state and the guard that protects
// commands which create data.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/unievents/uni/internal/core"
)

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// MockToken is issued by every Login; there is no real identity provider.
const MockToken = "mock-token"

// User is the signed-in user.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultUser is used when Login is called without a user.
var DefaultUser = User{Name: "Student User", Email: "student@unievents.com"}

// Store is the auth state, written through to storage.
type Store struct {
	storage core.Storage

	mu    sync.RWMutex
	token string
	user  *User
}

// New loads any persisted token and user. Unreadable values are ignored.
func New(ctx context.Context, storage core.Storage) *Store {
	s := &Store{storage: storage}

	if tok, err := storage.Get(ctx, TokenKey); err == nil {
		s.token = string(tok)
	}
	if data, err := storage.Get(ctx, UserKey); err == nil {
		var u User
		if json.Unmarshal(data, &u) == nil {
			s.user = &u
		}
	}
	return s
}

// Login signs in as u, or DefaultUser when u is nil.
func (s *Store) Login(ctx context.Context, u *User) error {
	if u == nil {
		def := DefaultUser
		u = &def
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = MockToken
	s.user = u

	if err := s.storage.Set(ctx, TokenKey, []byte(s.token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, data); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Logout clears the token and user.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil

	return errors.Join(
		s.storage.Delete(ctx, TokenKey),
		s.storage.Delete(ctx, UserKey),
	)
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// AccessToken returns the held token, or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Guard decides whether a protected action may proceed.
//
// With Enforce unset every request is allowed whether or not a token is
// held. That is the shipped behaviour: auth enforcement is disabled
// until auth.enforce is turned on.
type Guard struct {
	Enforce bool
	Session *Store
}

// ErrUnauthenticated is returned by Check when enforcement is on and no
// token is held.
var ErrUnauthenticated = errors.New("not logged in (run 'uni login')")

// Allow reports whether the action may proceed.
func (g Guard) Allow() bool {
	if !g.Enforce {
		return true
	}
	return g.Session != nil && g.Session.IsAuthenticated()
}

// Check is Allow as an error.
func (g Guard) Check() error {
	if g.Allow() {
		return nil
	}
	return ErrUnauthenticated
}
