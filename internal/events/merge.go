package events

import "github.com/unievents/uni/internal/core"

// MaxEvents caps the merged collection.
const MaxEvents = 12

// dedupeByTitle keeps one event per title. The value of the last
// occurrence wins but it takes the position of the first, the way an
// insertion-ordered map behaves when a key is overwritten.
func dedupeByTitle(raw []core.Event) []core.Event {
	index := make(map[string]int, len(raw))
	out := make([]core.Event, 0, len(raw))
	for _, e := range raw {
		if i, ok := index[e.Title]; ok {
			out[i] = e
			continue
		}
		index[e.Title] = len(out)
		out = append(out, e)
	}
	return out
}

// annotate assigns each event its palette image by position.
func annotate(events []core.Event) []core.Event {
	out := make([]core.Event, len(events))
	for i, e := range events {
		e.Image = CardImage(e.Title, i)
		out[i] = e
	}
	return out
}

// reconcile turns a raw API result into the new collection: dedupe,
// cap, annotate, then keep local events whose titles the API did not
// return in front of the remote ones.
func reconcile(local, raw []core.Event) []core.Event {
	remote := dedupeByTitle(raw)
	if len(remote) > MaxEvents {
		remote = remote[:MaxEvents]
	}
	remote = annotate(remote)

	titles := make(map[string]bool, len(remote))
	for _, e := range remote {
		titles[e.Title] = true
	}

	merged := make([]core.Event, 0, len(local)+len(remote))
	for _, e := range local {
		if !titles[e.Title] {
			merged = append(merged, e)
		}
	}
	merged = append(merged, remote...)

	if len(merged) > MaxEvents {
		merged = merged[:MaxEvents]
	}
	return merged
}
