package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := map[string]string{
		"Annual Tech Symposium": "Annual%20Tech%20Symposium",
		"Q&A: What's next?":     "Q%26A%3A%20What's%20next%3F",
		"a+b=c/d":               "a%2Bb%3Dc%2Fd",
		"(50% off)!":            "(50%25%20off)!",
		"Café":                  "Caf%C3%A9",
		"-_.!~*'()":             "-_.!~*'()",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, EncodeURIComponent(in), "input %q", in)
	}
}

func TestCardImage_CyclesPalette(t *testing.T) {
	assert.Equal(t,
		"https://placehold.co/600x400/eef2ff/1e3a8a?text=Chess%20Night",
		CardImage("Chess Night", 0))
	assert.Equal(t,
		"https://placehold.co/600x400/f8fafc/334155?text=X",
		CardImage("X", 5))
	assert.Equal(t, CardImage("X", 1), CardImage("X", 7))
}

func TestDetailAndAccentImages(t *testing.T) {
	assert.Equal(t,
		"https://placehold.co/1200x600/4f46e5/ffffff?text=Career%20Fair",
		DetailImage("Career Fair"))
	assert.Equal(t,
		"https://placehold.co/600x400/4f46e5/ffffff?text=Career%20Fair",
		AccentImage("Career Fair"))
	assert.Equal(t,
		"https://placehold.co/1200x600/4f46e5/ffffff?text=Mock+Event+42",
		MockDetailImage("42"))
}
