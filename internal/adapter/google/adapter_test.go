package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/unievents/uni/internal/core"
)

func TestToEntry(t *testing.T) {
	item := &calendar.Event{
		ICalUID:     "uid-1",
		Summary:     "Guest Lecture",
		Description: "<b>Room</b> 2",
		Start:       &calendar.EventDateTime{DateTime: "2025-03-01T10:00:00+01:00"},
		ConferenceData: &calendar.ConferenceData{EntryPoints: []*calendar.EntryPoint{
			{EntryPointType: "phone", Uri: "tel:1"},
			{EntryPointType: "video", Uri: "https://meet.google.com/x"},
		}},
	}

	e := toEntry(item, "Lectures")
	assert.Equal(t, "uid-1", e.UID)
	assert.Equal(t, "Lectures", e.CalendarName)
	assert.Equal(t, "https://meet.google.com/x", e.MeetingLink)
	assert.True(t, e.Start.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.False(t, e.AllDay)

	allDay := toEntry(&calendar.Event{Start: &calendar.EventDateTime{Date: "2025-03-02"}, HangoutLink: "https://h"}, "")
	assert.True(t, allDay.AllDay)
	assert.Equal(t, "https://h", allDay.MeetingLink)
}

func TestDeclined(t *testing.T) {
	assert.True(t, declined(&calendar.Event{Attendees: []*calendar.EventAttendee{
		{Email: "other@x", ResponseStatus: "declined"},
		{Self: true, ResponseStatus: "declined"},
	}}))
	assert.False(t, declined(&calendar.Event{Attendees: []*calendar.EventAttendee{
		{Email: "other@x", ResponseStatus: "declined"},
	}}))
}

func TestDrafts_AgainstFakeAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
			_ = json.NewEncoder(w).Encode(calendar.CalendarList{Items: []*calendar.CalendarListEntry{
				{Id: "primary", Summary: "Campus"},
			}})
		case strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
			_ = json.NewEncoder(w).Encode(calendar.Events{Items: []*calendar.Event{
				{ICalUID: "a", Summary: "Hackathon", Start: &calendar.EventDateTime{Date: "2025-04-10"}},
				{ICalUID: "b", Summary: "Gone", Status: "cancelled", Start: &calendar.EventDateTime{Date: "2025-04-11"}},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := New("google", "Google Calendar", "", "", nil)
	require.NoError(t, g.useClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/")))
	assert.Equal(t, map[string]string{"primary": "Campus"}, g.Calendars())

	drafts, err := g.Drafts(context.Background(), core.DefaultImportOptions(time.Now(), 7))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Hackathon", drafts[0].Title)
	assert.Equal(t, "2025-04-10", drafts[0].Date)
	assert.Equal(t, "Campus", drafts[0].Category)
}

func TestDrafts_RequiresLogin(t *testing.T) {
	_, err := New("google", "Google", "", "", nil).Drafts(context.Background(), core.ImportOptions{})
	assert.Error(t, err)
}
