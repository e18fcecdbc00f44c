// Package rsvp records which users have said they will attend an event.
// Each event's RSVPs live under their own storage key.
package rsvp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/metrics"
)

// KeyPrefix is prepended to the event id to form the storage key.
const KeyPrefix = "rsvps_"

var (
	ErrEmailRequired = errors.New("email is required")
	ErrAlreadyRSVPed = errors.New("already RSVPed to this event")
	ErrNotFound      = errors.New("RSVP not found")
)

// RSVP is one user's reservation for one event.
type RSVP struct {
	ID        int64        `json:"id"`
	EventID   core.EventID `json:"event_id"`
	UserEmail string       `json:"user_email"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store reads and writes RSVPs through storage. Updates for one process
// are serialized; there is no cross-process locking.
type Store struct {
	storage core.Storage
	logger  *log.Logger
	now     func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(storage core.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  log.New(io.Discard),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key for an event's RSVPs. Ids that compare equal
// as numbers ("42", "42.0") share one key.
func Key(id core.EventID) string {
	raw := strings.TrimSpace(id.String())
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return KeyPrefix + strconv.FormatInt(int64(f), 10)
	}
	return KeyPrefix + raw
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) load(ctx context.Context, id core.EventID) ([]RSVP, error) {
	data, err := s.storage.Get(ctx, Key(id))
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rsvps for %s: %w", id, err)
	}
	var list []RSVP
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("discarding unreadable rsvps", "event", id, "err", err)
		return nil, nil
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, id core.EventID, list []RSVP) error {
	key := Key(id)
	if len(list) == 0 {
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear rsvps for %s: %w", id, err)
		}
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode rsvps: %w", err)
	}
	if err := s.storage.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save rsvps for %s: %w", id, err)
	}
	return nil
}

// Create records an RSVP for email. A second RSVP by the same email
// (compared case-insensitively) fails with ErrAlreadyRSVPed.
func (s *Store) Create(ctx context.Context, id core.EventID, email string) (RSVP, error) {
	email = normalizeEmail(email)
	if email == "" {
		return RSVP{}, ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx, id)
	if err != nil {
		return RSVP{}, err
	}
	var next int64 = 1
	for _, r := range list {
		if r.UserEmail == email {
			metrics.RSVPs.WithLabelValues("create", "conflict").Inc()
			return RSVP{}, ErrAlreadyRSVPed
		}
		if r.ID >= next {
			next = r.ID + 1
		}
	}

	r := RSVP{ID: next, EventID: id, UserEmail: email, CreatedAt: s.now().UTC()}
	if err := s.save(ctx, id, append(list, r)); err != nil {
		return RSVP{}, err
	}
	s.logger.Debug("rsvp created", "event", id, "email", email)
	metrics.RSVPs.WithLabelValues("create", "ok").Inc()
	return r, nil
}

// Cancel removes email's RSVP, or returns ErrNotFound.
func (s *Store) Cancel(ctx context.Context, id core.EventID, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	for i, r := range list {
		if r.UserEmail == email {
			list = append(list[:i], list[i+1:]...)
			if err := s.save(ctx, id, list); err != nil {
				return err
			}
			metrics.RSVPs.WithLabelValues("cancel", "ok").Inc()
			return nil
		}
	}
	metrics.RSVPs.WithLabelValues("cancel", "missing").Inc()
	return ErrNotFound
}

// Count returns the number of RSVPs for an event.
func (s *Store) Count(ctx context.Context, id core.EventID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx, id)
	return len(list), err
}

// Has reports whether email has RSVPed to the event.
func (s *Store) Has(ctx context.Context, id core.EventID, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	for _, r := range list {
		if r.UserEmail == email {
			return true, nil
		}
	}
	return false, nil
}
