// Package events owns the local event collection: it reconciles API
// results with locally created events, falls back to built-in data when
// the API is unreachable and writes every change through to storage.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/metrics"
)

// StorageKey is where the collection is persisted.
const StorageKey = "local_events"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Store is the event collection plus its loading and error state.
// It is safe for concurrent use.
type Store struct {
	gateway core.Gateway
	storage core.Storage
	logger  *log.Logger
	now     func() time.Time

	mu       sync.Mutex
	events   []core.Event
	inflight int
	err      string
	// gen is bumped by every FetchEvents; a response whose generation is
	// older than gen is discarded.
	gen    uint64
	lastID int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a Store and hydrates it from storage. A missing or
// unreadable collection starts the store empty.
func New(ctx context.Context, gw core.Gateway, storage core.Storage, opts ...Option) *Store {
	s := &Store{
		gateway: gw,
		storage: storage,
		logger:  log.New(io.Discard),
		now:     time.Now,
		events:  []core.Event{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("could not read stored events", "err", err)
		}
		return
	}

	var stored []core.Event
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("stored events are corrupt, starting empty", "err", err)
		return
	}
	if stored != nil {
		s.events = stored
	}
	for _, e := range s.events {
		if n, err := strconv.ParseInt(e.ID.String(), 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	metrics.CollectionSize.Set(float64(len(s.events)))
}

// Reset empties the collection, clears the error and removes the
// persisted copy.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = []core.Event{}
	s.err = ""
	s.gen++
	metrics.CollectionSize.Set(0)
	return s.storage.Delete(ctx, StorageKey)
}

// Events returns a copy of the collection.
func (s *Store) Events() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Event(nil), s.events...)
}

// Count is the number of events held.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Featured returns the first three events.
func (s *Store) Featured() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(3, len(s.events))
	return append([]core.Event(nil), s.events[:n]...)
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the message recorded by the last failed operation, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Lookup finds a held event by loosely compared id.
func (s *Store) Lookup(id core.EventID) (core.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(id)
}

func (s *Store) lookupLocked(id core.EventID) (core.Event, bool) {
	for _, e := range s.events {
		if e.ID.Equal(id) {
			return e, true
		}
	}
	return core.Event{}, false
}

// startLoading marks a fetch in flight and clears the error. When list is
// true it also starts a new fetch generation and returns it.
func (s *Store) startLoading(list bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.err = ""
	if list {
		s.gen++
	}
	return s.gen
}

func (s *Store) stopLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

// FetchEvents refreshes the collection from the API. On failure it keeps
// whatever is held, or installs the fallback set if nothing is. It never
// returns an error; see Err.
func (s *Store) FetchEvents(ctx context.Context) {
	gen := s.startLoading(true)
	defer s.stopLoading()

	raw, err := s.fetchList(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("discarding stale events response", "generation", gen, "latest", s.gen)
		metrics.Fetches.WithLabelValues("list", metrics.OutcomeStale).Inc()
		return
	}

	if err != nil {
		s.logger.Warn("api fetch failed, using fallback data", "err", err)
		s.err = err.Error()
		metrics.Fetches.WithLabelValues("list", metrics.OutcomeFallback).Inc()
		// Held data always wins over the fallback set. The fallback is
		// not persisted.
		if len(s.events) == 0 {
			s.events = fallbackEvents()
			metrics.CollectionSize.Set(float64(len(s.events)))
		}
		return
	}

	s.events = reconcile(s.events, raw)
	metrics.Fetches.WithLabelValues("list", metrics.OutcomeSuccess).Inc()
	metrics.CollectionSize.Set(float64(len(s.events)))
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Warn("could not persist events", "err", err)
		s.err = err.Error()
	}
}

// fetchList calls the gateway, turning a panic into an error so the
// loading flag is always released.
func (s *Store) fetchList(ctx context.Context) (events []core.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return s.gateway.ListEvents(ctx)
}

func (s *Store) fetchOne(ctx context.Context, id core.EventID) (event core.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return s.gateway.GetEvent(ctx, id)
}

// FetchEventByID always resolves to an event: the API's copy with a
// detail image, else the held copy, else a mock placeholder. It does not
// change the collection.
func (s *Store) FetchEventByID(ctx context.Context, id core.EventID) core.Event {
	s.startLoading(false)
	defer s.stopLoading()

	event, err := s.fetchOne(ctx, id)
	if err == nil {
		event.Image = DetailImage(event.Title)
		metrics.Fetches.WithLabelValues("get", metrics.OutcomeSuccess).Inc()
		return event
	}

	s.logger.Warn("api fetch for details failed, using fallback", "id", id, "err", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err.Error()

	if held, ok := s.lookupLocked(id); ok {
		metrics.Fetches.WithLabelValues("get", metrics.OutcomeCached).Inc()
		return held
	}
	metrics.Fetches.WithLabelValues("get", metrics.OutcomeFallback).Inc()
	return mockDetail(id, s.now())
}

// AddEvent creates a local event from d and puts it first in the
// collection. It reports false, recording the reason in Err, when the
// event cannot be built or stored.
func (s *Store) AddEvent(ctx context.Context, d core.Draft) bool {
	_, ok := s.CreateEvent(ctx, d)
	return ok
}

// CreateEvent is AddEvent that also returns the event it created. The
// event is the one built under the lock, so concurrent adds or refreshes
// cannot swap it for another.
func (s *Store) CreateEvent(ctx context.Context, d core.Draft) (core.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.buildLocked(d)
	if err != nil {
		s.err = err.Error()
		metrics.EventsAdded.WithLabelValues("failed").Inc()
		return core.Event{}, false
	}

	s.events = append([]core.Event{event}, s.events...)
	metrics.CollectionSize.Set(float64(len(s.events)))

	if err := s.persistLocked(ctx); err != nil {
		s.logger.Warn("could not persist events", "err", err)
		s.err = err.Error()
		metrics.EventsAdded.WithLabelValues("failed").Inc()
		return event, false
	}

	s.logger.Debug("event added", "id", event.ID, "title", event.Title)
	metrics.EventsAdded.WithLabelValues("ok").Inc()
	return event, true
}

func (s *Store) buildLocked(d core.Draft) (core.Event, error) {
	date, err := ParseDate(d.Date)
	if err != nil {
		return core.Event{}, err
	}

	var extra map[string]json.RawMessage
	for k, v := range d.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return core.Event{}, fmt.Errorf("encode %s: %w", k, err)
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage, len(d.Extra))
		}
		extra[k] = raw
	}

	return core.Event{
		ID:          s.nextIDLocked(),
		Title:       d.Title,
		Description: d.Description,
		Date:        date.UTC().Format(isoMillis),
		Location:    d.Location,
		Category:    d.Category,
		Image:       AccentImage(d.Title),
		Extra:       extra,
	}, nil
}

// nextIDLocked derives an id from the clock in milliseconds, bumped past
// the last one handed out so two adds in the same millisecond differ.
func (s *Store) nextIDLocked() core.EventID {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return core.NumericID(id)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("store events: %w", err)
	}
	return nil
}

// dateLayouts are tried in order. Layouts without a zone are read in
// local time, except a bare date which is midnight UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate normalizes user-entered dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("invalid date: empty")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}
