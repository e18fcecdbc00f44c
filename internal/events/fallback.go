package events

import (
	"time"

	"github.com/unievents/uni/internal/core"
)

// fallbackEvents is shown when the API is unreachable and nothing is
// stored locally.
func fallbackEvents() []core.Event {
	events := []core.Event{
		{ID: "1", Title: "Annual Tech Symposium", Description: "Join us for a day of innovation and networking.", Date: "2025-10-15", Location: "Main Hall", Category: "Academic"},
		{ID: "2", Title: "Campus Music Fest", Description: "Live performances from local student bands.", Date: "2025-11-20", Location: "Student Union", Category: "Social"},
		{ID: "3", Title: "Graduate Career Fair", Description: "Meet with top recruiters from industry leaders.", Date: "2025-09-30", Location: "Gymnasium", Category: "Career"},
		{ID: "4", Title: "Chess Championship", Description: "Test your strategy in our annual tournament.", Date: "2025-10-05", Location: "Library", Category: "Social"},
		{ID: "5", Title: "Outdoor Movie Night", Description: "Watch the latest blockbusters under the stars.", Date: "2025-08-22", Location: "Central Park", Category: "Social"},
	}
	for i := range events {
		events[i].Image = CardImage(events[i].Title, i)
	}
	return events
}

// mockDetail stands in for an event that is neither reachable remotely
// nor held locally.
func mockDetail(id core.EventID, now time.Time) core.Event {
	return core.Event{
		ID:          id,
		Title:       "Event Details (Mock)",
		Description: "This is a mock description because the live backend is unreachable. All features like RSVP and location info are still visible here!",
		Date:        now.UTC().Format(isoMillis),
		Location:    "Grand Campus Arena",
		Image:       MockDetailImage(id),
	}
}
