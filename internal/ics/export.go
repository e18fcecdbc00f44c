// Package ics writes the event collection as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/events"
)

// ProductID identifies the exporter in PRODID.
const ProductID = "-//unievents//uni//EN"

// UIDDomain is appended to event ids to form iCalendar UIDs.
const UIDDomain = "unievents"

// Calendar builds a VCALENDAR with one VEVENT per event. Events whose date
// cannot be parsed are exported without DTSTART.
func Calendar(list []core.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetName("UniEvents")

	for _, e := range list {
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", e.ID, UIDDomain))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Category != "" {
			ve.AddProperty(ical.ComponentPropertyCategories, e.Category)
		}
		if e.Image != "" {
			ve.AddProperty(ical.ComponentPropertyAttach, e.Image)
		}

		start, err := events.ParseDate(e.Date)
		if err != nil {
			continue
		}
		if isDateOnly(e.Date) {
			ve.SetAllDayStartAt(start)
		} else {
			ve.SetStartAt(start.UTC())
		}
	}
	return cal
}

// Write serializes the collection to w.
func Write(w io.Writer, list []core.Event, stamp time.Time) error {
	if _, err := io.WriteString(w, Calendar(list, stamp).Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}
