package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EventID is an opaque identifier that may arrive from the API as a JSON
// number or a JSON string. Comparison is by value, so 42 and "42" are equal.
type EventID string

// NumericID builds an EventID from an integer.
func NumericID(n int64) EventID {
	return EventID(strconv.FormatInt(n, 10))
}

// String returns the raw identifier text.
func (id EventID) String() string { return string(id) }

// IsZero reports whether no identifier was set.
func (id EventID) IsZero() bool { return id == "" }

// Equal compares two identifiers after coercion. Identical text is
// always equal. Otherwise the comparison is numeric only when one side is
// a canonical integer (the form a JSON number decodes to); two non-numeric
// strings compare as strings, so "NaN" matches only itself.
func (id EventID) Equal(other EventID) bool {
	a := strings.TrimSpace(string(id))
	b := strings.TrimSpace(string(other))
	if a == b {
		return true
	}
	if !id.isNumeric() && !other.isNumeric() {
		return false
	}
	if fa, err := strconv.ParseFloat(a, 64); err == nil {
		if fb, err := strconv.ParseFloat(b, 64); err == nil {
			return fa == fb
		}
	}
	return a == b
}

func (id EventID) isNumeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON encodes integer identifiers as JSON numbers so that records
// written by us look like the ones the API sends.
func (id EventID) MarshalJSON() ([]byte, error) {
	if id.isNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *EventID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EventID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = EventID(n.String())
	return nil
}

// Event is a campus event as held in the local collection.
//
// Date is kept as the text the source supplied ("2025-10-15" from the API,
// an RFC 3339 timestamp for locally created events). Image is derived and
// never taken from user input.
type Event struct {
	ID          EventID
	Title       string
	Description string
	Date        string
	Location    string
	Category    string
	Image       string
	IsFull      bool

	// Extra holds fields the API sent that we do not model, so they
	// survive a round trip through storage.
	Extra map[string]json.RawMessage
}

// Draft is the caller-supplied input for a locally created event.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category,omitempty"`
	// Additional caller fields (organizer email and the like).
	Extra map[string]string `json:"-"`
}

var knownFields = map[string]bool{
	"id": true, "title": true, "description": true, "date": true,
	"location": true, "category": true, "image": true, "isFull": true,
}

type wireEvent struct {
	ID          EventID `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
	Location    string  `json:"location,omitempty"`
	Category    string  `json:"category,omitempty"`
	Image       string  `json:"image,omitempty"`
	IsFull      bool    `json:"isFull,omitempty"`
}

// MarshalJSON writes the modelled fields followed by any passthrough fields.
func (e Event) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(wireEvent{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Category:    e.Category,
		Image:       e.Image,
		IsFull:      e.IsFull,
	})
	if err != nil || len(e.Extra) == 0 {
		return base, err
	}

	extra := make(map[string]json.RawMessage, len(e.Extra))
	for k, v := range e.Extra {
		if !knownFields[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return base, nil
	}
	tail, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}

	// Splice {"a":1} and {"b":2} into {"a":1,"b":2}.
	out := make([]byte, 0, len(base)+len(tail))
	out = append(out, base[:len(base)-1]...)
	out = append(out, ',')
	out = append(out, tail[1:]...)
	return out, nil
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
// A non-string date (the API may send a timestamp object) is kept verbatim.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event{}
	for k, v := range raw {
		var err error
		switch k {
		case "id":
			err = json.Unmarshal(v, &e.ID)
		case "title":
			e.Title = looseString(v)
		case "description":
			e.Description = looseString(v)
		case "date":
			e.Date = looseString(v)
		case "location":
			e.Location = looseString(v)
		case "category":
			e.Category = looseString(v)
		case "image":
			e.Image = looseString(v)
		case "isFull":
			var b bool
			if json.Unmarshal(v, &b) == nil {
				e.IsFull = b
			}
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]json.RawMessage)
			}
			e.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// looseString returns the string value of v, or its raw JSON text when v
// is not a string. null becomes "".
func looseString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
