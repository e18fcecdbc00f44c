package events

import (
	"fmt"
	"strings"

	"github.com/unievents/uni/internal/core"
)

const placeholderHost = "https://placehold.co"

// Palette is a background/text color pair for a placeholder image.
type Palette struct {
	Background string
	Text       string
}

// Palettes cycle over the collection by position.
var Palettes = []Palette{
	{Background: "eef2ff", Text: "1e3a8a"}, // blue
	{Background: "f5f3ff", Text: "5b21b6"}, // purple
	{Background: "ecfdf5", Text: "065f46"}, // green
	{Background: "fff7ed", Text: "9a3412"}, // orange
	{Background: "fdf2f8", Text: "9d174d"}, // pink
	{Background: "f8fafc", Text: "334155"}, // slate
}

// Accent is the single indigo palette used for local and detail images.
var Accent = Palette{Background: "4f46e5", Text: "ffffff"}

// CardImage is the 600x400 image for the event at position index.
func CardImage(title string, index int) string {
	return placeholder(600, 400, Palettes[index%len(Palettes)], EncodeURIComponent(title))
}

// AccentImage is the 600x400 indigo image given to locally created events.
func AccentImage(title string) string {
	return placeholder(600, 400, Accent, EncodeURIComponent(title))
}

// DetailImage is the 1200x600 image for a single-event view.
func DetailImage(title string) string {
	return placeholder(1200, 600, Accent, EncodeURIComponent(title))
}

// MockDetailImage is the detail image for an event we could not find.
// The id is embedded as-is.
func MockDetailImage(id core.EventID) string {
	return placeholder(1200, 600, Accent, "Mock+Event+"+id.String())
}

func placeholder(w, h int, p Palette, text string) string {
	return fmt.Sprintf("%s/%dx%d/%s/%s?text=%s", placeholderHost, w, h, p.Background, p.Text, text)
}

// EncodeURIComponent percent-encodes every byte outside
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), matching what browsers produce for
// query components. Spaces become %20, not +.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
