package outlook

import (
	"context"
	"testing"
	"time"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unievents/uni/internal/adapter"
	"github.com/unievents/uni/internal/core"
)

func ptr[T any](v T) *T { return &v }

func graphEvent() models.Eventable {
	ev := models.NewEvent()
	ev.SetICalUId(ptr("uid-9"))
	ev.SetSubject(ptr("Career Fair"))
	ev.SetWebLink(ptr("https://outlook.office.com/x"))

	start := models.NewDateTimeTimeZone()
	start.SetDateTime(ptr("2025-04-20T13:30:00.0000000"))
	start.SetTimeZone(ptr("UTC"))
	ev.SetStart(start)

	body := models.NewItemBody()
	body.SetContent(ptr("<div>Hall <i>B</i></div>"))
	ev.SetBody(body)

	loc := models.NewLocation()
	loc.SetDisplayName(ptr("Main Hall"))
	ev.SetLocation(loc)

	om := models.NewOnlineMeetingInfo()
	om.SetJoinUrl(ptr("https://teams.example/join"))
	ev.SetOnlineMeeting(om)
	return ev
}

func TestToEntry(t *testing.T) {
	e := toEntry(graphEvent(), "Careers")

	assert.Equal(t, "uid-9", e.UID)
	assert.Equal(t, "Career Fair", e.Title)
	assert.Equal(t, "Main Hall", e.Location)
	assert.Equal(t, "https://teams.example/join", e.MeetingLink)
	assert.True(t, e.Start.Equal(time.Date(2025, 4, 20, 13, 30, 0, 0, time.UTC)))

	d := adapter.Drafts([]adapter.Entry{e})[0]
	assert.Equal(t, "Hall B", d.Description)
	assert.Equal(t, "Careers", d.Category)
	assert.Equal(t, "https://outlook.office.com/x", d.Extra["sourceUrl"])
}

func TestSkip(t *testing.T) {
	ev := graphEvent()
	assert.False(t, skip(ev))

	rs := models.NewResponseStatus()
	declined := models.DECLINED_RESPONSETYPE
	rs.SetResponse(&declined)
	ev.SetResponseStatus(rs)
	assert.True(t, skip(ev))

	cancelled := graphEvent()
	cancelled.SetIsCancelled(ptr(true))
	assert.True(t, skip(cancelled))
}

func TestParseDateTime(t *testing.T) {
	assert.True(t, parseDateTime(nil).IsZero())

	dt := models.NewDateTimeTimeZone()
	dt.SetDateTime(ptr("2025-01-02T03:04:05"))
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), parseDateTime(dt))

	dt.SetDateTime(ptr("garbage"))
	assert.True(t, parseDateTime(dt).IsZero())
}

func TestNew_DefaultsAndLoginErrors(t *testing.T) {
	o := New("outlook", "Outlook", "client", "", t.TempDir()+"/missing.json", nil)
	assert.Equal(t, "common", o.tenantID)
	assert.Equal(t, RedirectURL, o.OAuthConfig().RedirectURL)
	assert.Error(t, o.Login(context.Background()))

	_, err := o.Drafts(context.Background(), core.ImportOptions{})
	require.Error(t, err)
}
