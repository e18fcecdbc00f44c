// Package theme persists the dark/light display preference.
package theme

import (
	"context"
	"sync"

	"github.com/unievents/uni/internal/core"
)

// StorageKey holds "dark" or "light".
const StorageKey = "theme"

const (
	Dark  = "dark"
	Light = "light"
)

// Store holds the current theme.
type Store struct {
	storage core.Storage

	mu   sync.RWMutex
	dark bool
}

// New reads the stored theme (light unless "dark") and writes it back so
// the stored value is always normalized.
func New(ctx context.Context, storage core.Storage) (*Store, error) {
	s := &Store{storage: storage}
	if v, err := storage.Get(ctx, StorageKey); err == nil {
		s.dark = string(v) == Dark
	}
	return s, s.apply(ctx)
}

// IsDark reports whether dark mode is on.
func (s *Store) IsDark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// Name is "dark" or "light".
func (s *Store) Name() string {
	if s.IsDark() {
		return Dark
	}
	return Light
}

// Toggle flips the theme and persists it.
func (s *Store) Toggle(ctx context.Context) error {
	s.mu.Lock()
	s.dark = !s.dark
	s.mu.Unlock()
	return s.apply(ctx)
}

func (s *Store) apply(ctx context.Context) error {
	return s.storage.Set(ctx, StorageKey, []byte(s.Name()))
}
