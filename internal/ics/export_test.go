package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unievents/uni/internal/core"
)

func TestWrite_RoundTrip(t *testing.T) {
	list := []core.Event{
		{ID: "1", Title: "Tech Conference 2025", Description: "Talks", Date: "2025-03-15T10:00:00.000Z", Location: "Hall A", Category: "Technology"},
		{ID: "2", Title: "Open Day", Date: "2025-04-10"},
		{ID: "3", Title: "Someday", Date: "soon"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, list, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR"))

	cal, err := ical.ParseCalendar(&buf)
	require.NoError(t, err)
	evs := cal.Events()
	require.Len(t, evs, 3)

	assert.Equal(t, "1@unievents", evs[0].Id())
	assert.Equal(t, "Tech Conference 2025", evs[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Hall A", evs[0].GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "Technology", evs[0].GetProperty(ical.ComponentPropertyCategories).Value)
	start, err := evs[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "20250410", evs[1].GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Nil(t, evs[2].GetProperty(ical.ComponentPropertyDtStart))
}
