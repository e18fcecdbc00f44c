// Package google imports upcoming Google Calendar entries as event drafts.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/unievents/uni/internal/adapter"
	"github.com/unievents/uni/internal/core"
)

// Source reads the calendars of one Google account.
type Source struct {
	id        string
	name      string
	credsFile string
	tokenFile string
	logger    *log.Logger

	service   *calendar.Service
	calendars map[string]string
}

// New returns a Source. Call Login before Drafts.
func New(id, name, credsFile, tokenFile string, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Source{
		id:        id,
		name:      name,
		credsFile: credsFile,
		tokenFile: tokenFile,
		logger:    logger,
		calendars: make(map[string]string),
	}
}

func (g *Source) ID() string   { return g.id }
func (g *Source) Name() string { return g.name }

// OAuthConfig parses the client credentials file for the read-only
// calendar scope.
func OAuthConfig(credsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return config, nil
}

// Login loads credentials and the saved token ('uni connect' writes it),
// then lists the account's calendars.
func (g *Source) Login(ctx context.Context) error {
	config, err := OAuthConfig(g.credsFile)
	if err != nil {
		return err
	}
	tok, err := adapter.TokenFromFile(g.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'uni connect' first): %w", err)
	}
	return g.useClient(ctx, config.Client(ctx, tok))
}

// useClient builds the calendar service over client and loads the
// calendar list.
func (g *Source) useClient(ctx context.Context, client *http.Client, opts ...option.ClientOption) error {
	svc, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}
	g.service = svc

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load calendar list: %w", err)
	}
	for _, cal := range list.Items {
		g.calendars[cal.Id] = cal.Summary
	}
	return nil
}

// Calendars returns ID -> name for every calendar the account can see.
func (g *Source) Calendars() map[string]string {
	return g.calendars
}

// Drafts reads entries in the window from the selected calendars.
// A calendar that fails is logged and skipped.
func (g *Source) Drafts(ctx context.Context, opts core.ImportOptions) ([]core.Draft, error) {
	if g.service == nil {
		return nil, fmt.Errorf("%s: not logged in", g.id)
	}

	var entries []adapter.Entry
	for _, calID := range adapter.SelectCalendars(opts.CalendarIDs, g.calendars) {
		got, err := g.entries(ctx, calID, opts)
		if err != nil {
			g.logger.Warn("skipping calendar", "calendar", g.calendars[calID], "err", err)
			continue
		}
		entries = append(entries, got...)
	}
	return adapter.Drafts(entries), nil
}

func (g *Source) entries(ctx context.Context, calendarID string, opts core.ImportOptions) ([]adapter.Entry, error) {
	calendarName := g.calendars[calendarID]
	var results []adapter.Entry

	err := g.service.Events.List(calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(opts.Start.Format(time.RFC3339)).
		TimeMax(opts.End.Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if item.Status == "cancelled" || declined(item) {
					continue
				}
				results = append(results, toEntry(item, calendarName))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", calendarID, err)
	}
	return results, nil
}

func toEntry(item *calendar.Event, calendarName string) adapter.Entry {
	e := adapter.Entry{
		UID:          item.ICalUID,
		CalendarName: calendarName,
		Title:        item.Summary,
		Description:  item.Description,
		Location:     item.Location,
		MeetingLink:  meetingLink(item),
		WebLink:      item.HtmlLink,
	}
	if item.Start != nil {
		if item.Start.DateTime != "" {
			e.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		} else {
			e.Start, _ = time.Parse(time.DateOnly, item.Start.Date)
			e.AllDay = true
		}
	}
	return e
}

// declined reports whether the account owner declined the invitation.
func declined(item *calendar.Event) bool {
	for _, a := range item.Attendees {
		if a.Self {
			return a.ResponseStatus == "declined"
		}
	}
	return false
}

func meetingLink(item *calendar.Event) string {
	if item.ConferenceData != nil {
		for _, entry := range item.ConferenceData.EntryPoints {
			if entry.EntryPointType == "video" {
				return entry.Uri
			}
		}
	}
	return item.HangoutLink
}
