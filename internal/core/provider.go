package core

import (
	"context"
	"time"
)

// Gateway is the remote event API.
type Gateway interface {
	// ListEvents returns the full remote collection in source order.
	ListEvents(ctx context.Context) ([]Event, error)
	// GetEvent returns a single event by identifier.
	GetEvent(ctx context.Context, id EventID) (Event, error)
}

// ImportOptions configures which calendar entries a Source returns.
type ImportOptions struct {
	Start time.Time
	End   time.Time

	// Filter by calendar ID. Empty means all calendars.
	CalendarIDs []string
}

// DefaultImportOptions covers the next days days starting at now.
func DefaultImportOptions(now time.Time, days int) ImportOptions {
	if days <= 0 {
		days = 7
	}
	return ImportOptions{
		Start: now,
		End:   now.Add(time.Duration(days) * 24 * time.Hour),
	}
}

// Source is an external calendar (Google, Outlook) that events can be
// imported from.
type Source interface {
	// ID returns the unique identifier from the config (e.g. "google")
	ID() string
	// Name returns a human-readable label (e.g. "Google Calendar")
	Name() string
	Login(ctx context.Context) error
	// Calendars returns available calendars (ID -> Name).
	Calendars() map[string]string
	// Drafts converts upcoming entries into event drafts.
	// This should block until done or context is cancelled.
	Drafts(ctx context.Context, opts ImportOptions) ([]Draft, error)
}
