// Package metrics holds the prometheus collectors exported by uni serve.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
	OutcomeStale    = "stale"
)

var (
	// Fetches counts remote fetches by operation ("list", "get") and outcome.
	Fetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uni_fetches_total",
			Help: "Remote event fetches by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// EventsAdded counts local creations by result.
	EventsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uni_events_added_total",
			Help: "Locally created events",
		},
		[]string{"status"},
	)

	// CollectionSize is the current length of the local collection.
	CollectionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uni_collection_size",
			Help: "Number of events in the local collection",
		},
	)

	// RSVPs counts RSVP changes by action ("create", "cancel") and outcome.
	RSVPs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uni_rsvps_total",
			Help: "RSVP changes by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// HTTPRequests counts API requests served by uni serve.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uni_http_requests_total",
			Help: "API requests served",
		},
		[]string{"route", "code"},
	)
)
