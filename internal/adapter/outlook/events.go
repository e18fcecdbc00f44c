package outlook

import (
	"context"
	"fmt"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"

	"github.com/unievents/uni/internal/adapter"
	"github.com/unievents/uni/internal/core"
)

var selectFields = []string{
	"id", "iCalUId", "subject", "body", "start", "location",
	"isAllDay", "responseStatus", "onlineMeeting", "webLink", "isCancelled",
}

func (o *Source) entries(ctx context.Context, calendarID string, opts core.ImportOptions) ([]adapter.Entry, error) {
	startStr := opts.Start.UTC().Format(time.RFC3339)
	endStr := opts.End.UTC().Format(time.RFC3339)
	top := int32(100)

	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)

	config := &users.ItemCalendarsItemCalendarViewRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemCalendarsItemCalendarViewRequestBuilderGetQueryParameters{
			StartDateTime: &startStr,
			EndDateTime:   &endStr,
			Select:        selectFields,
			Orderby:       []string{"start/dateTime"},
			Top:           &top,
		},
		Headers: headers,
	}
	result, err := o.client.Me().Calendars().ByCalendarId(calendarID).CalendarView().Get(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar view: %w", err)
	}

	pages, err := msgraphcore.NewPageIterator[models.Eventable](
		result,
		o.client.GetAdapter(),
		models.CreateEventCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}

	calendarName := o.calendars[calendarID]
	var results []adapter.Entry
	err = pages.Iterate(ctx, func(item models.Eventable) bool {
		if !skip(item) {
			results = append(results, toEntry(item, calendarName))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return results, nil
}

// skip drops cancelled entries and ones the owner declined.
func skip(item models.Eventable) bool {
	if derefBool(item.GetIsCancelled()) {
		return true
	}
	if rs := item.GetResponseStatus(); rs != nil {
		if resp := rs.GetResponse(); resp != nil && *resp == models.DECLINED_RESPONSETYPE {
			return true
		}
	}
	return false
}

func toEntry(item models.Eventable, calendarName string) adapter.Entry {
	e := adapter.Entry{
		UID:          derefStr(item.GetICalUId()),
		CalendarName: calendarName,
		Title:        derefStr(item.GetSubject()),
		WebLink:      derefStr(item.GetWebLink()),
		Start:        parseDateTime(item.GetStart()),
		AllDay:       derefBool(item.GetIsAllDay()),
	}
	if body := item.GetBody(); body != nil {
		e.Description = derefStr(body.GetContent())
	}
	if loc := item.GetLocation(); loc != nil {
		e.Location = derefStr(loc.GetDisplayName())
	}
	if om := item.GetOnlineMeeting(); om != nil {
		e.MeetingLink = derefStr(om.GetJoinUrl())
	}
	return e
}

// parseDateTime reads a Graph date-time. Values are UTC because every
// request sends Prefer: outlook.timezone="UTC".
func parseDateTime(dt models.DateTimeTimeZoneable) time.Time {
	if dt == nil || dt.GetDateTime() == nil {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, *dt.GetDateTime()); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
