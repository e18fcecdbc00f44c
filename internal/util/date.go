package util

import (
	"strings"
	"time"
)

// DisplayLayout is the long human form used in listings and details.
const DisplayLayout = "Monday, January 2, 2006 at 03:04 PM"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDate renders an event date in the local zone. Empty input gives
// ""; input that is not a recognizable date is returned unchanged.
func FormatDate(s string) string {
	return FormatDateIn(s, time.Local)
}

// FormatDateIn is FormatDate for an explicit zone.
func FormatDateIn(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format(DisplayLayout)
		}
	}
	return s
}

// ShortDate is "Jan 2, 2006" in the local zone, or s itself if unparseable.
func ShortDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Local().Format("Jan 2, 2006")
		}
	}
	return s
}
