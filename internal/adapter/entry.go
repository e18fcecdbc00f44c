// Package adapter holds what the calendar import sources share: the
// intermediate entry type, conversion to drafts, and token files.
package adapter

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/oauth2"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/util"
)

// UntitledEvent replaces an empty calendar subject.
const UntitledEvent = "(untitled)"

// Entry is one calendar item as read from a provider.
type Entry struct {
	// UID is the iCalendar UID, shared by copies of one meeting across calendars.
	UID          string
	CalendarName string
	Title        string
	// Description may be HTML.
	Description string
	Location    string
	MeetingLink string
	WebLink     string
	Start       time.Time
	AllDay      bool
}

// Draft converts e into an event draft. The calendar name becomes the
// category and links are kept as extra fields.
func (e Entry) Draft() core.Draft {
	d := core.Draft{
		Title:       e.Title,
		Description: util.StripHTML(e.Description),
		Location:    e.Location,
		Category:    e.CalendarName,
	}
	if d.Title == "" {
		d.Title = UntitledEvent
	}
	if e.AllDay {
		d.Date = e.Start.Format(time.DateOnly)
	} else {
		d.Date = e.Start.UTC().Format(time.RFC3339)
	}

	for k, v := range map[string]string{"meetingLink": e.MeetingLink, "sourceUrl": e.WebLink} {
		if v == "" {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]string, 2)
		}
		d.Extra[k] = v
	}
	return d
}

// Drafts drops repeated UIDs (first copy wins), orders by start time
// and converts.
func Drafts(entries []Entry) []core.Draft {
	seen := make(map[string]bool, len(entries))
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.UID != "" {
			if seen[e.UID] {
				continue
			}
			seen[e.UID] = true
		}
		kept = append(kept, e)
	}

	slices.SortStableFunc(kept, func(a, b Entry) int {
		return a.Start.Compare(b.Start)
	})

	drafts := make([]core.Draft, len(kept))
	for i, e := range kept {
		drafts[i] = e.Draft()
	}
	return drafts
}

// SelectCalendars returns the requested calendar IDs that exist, or every
// known calendar ordered by name when none are requested.
func SelectCalendars(requested []string, known map[string]string) []string {
	if len(requested) > 0 {
		var ids []string
		for _, id := range requested {
			if _, ok := known[id]; ok {
				ids = append(ids, id)
			}
		}
		return ids
	}

	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(known[a], known[b]), cmp.Compare(a, b))
	})
	return ids
}

// TokenFromFile reads an OAuth token saved by SaveToken.
func TokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return tok, nil
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
