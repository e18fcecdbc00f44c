package util

import (
	"net/url"

	"github.com/charmbracelet/x/ansi"
)

// MakeHyperlink wraps displayText in an OSC 8 hyperlink to target.
func MakeHyperlink(target, displayText string) string {
	return ansi.SetHyperlink(target) + displayText + ansi.ResetHyperlink()
}

// TruncateText cuts s to maxLen cells, ending with "…" when cut.
// maxLen <= 0 leaves s alone.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	return ansi.Truncate(s, maxLen, "…")
}

// unwrapRedirect extracts the target from Google redirect wrappers such
// as https://www.google.com/url?q=REAL_URL&...
func unwrapRedirect(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Host == "www.google.com" && u.Path == "/url" {
		if q := u.Query().Get("q"); q != "" {
			return q
		}
	}
	return rawURL
}
