package util

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	anchorRe      = regexp.MustCompile(`(?i)<a\s[^>]*href\s*=\s*["']([^"']*)["'][^>]*>`)
	anchorCloseRe = regexp.MustCompile(`(?i)</a\s*>`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	spacesRe      = regexp.MustCompile(`[^\S\n]+`)
	brRe          = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	blockCloseRe  = regexp.MustCompile(`(?i)</(?:p|div|h[1-6]|blockquote|pre|table|tr)\s*>`)
	blockOpenRe   = regexp.MustCompile(`(?i)<(?:p|div|h[1-6]|blockquote|pre|table|tr)(?:\s[^>]*)?\s*>`)
	liOpenRe      = regexp.MustCompile(`(?i)<li(?:\s[^>]*)?\s*>`)
	liCloseRe     = regexp.MustCompile(`(?i)</li\s*>`)
	listWrapRe    = regexp.MustCompile(`(?i)</?(?:ul|ol)(?:\s[^>]*)?\s*>`)
)

// linkFunc renders one anchor given its target and visible text.
type linkFunc func(href, text string) string

// StripHTML turns an HTML calendar description into plain text suitable
// for storing in an event. Links keep their target in parentheses.
func StripHTML(s string) string {
	return htmlToText(s, func(href, text string) string {
		if text == "" || text == href {
			return href
		}
		return text + " (" + href + ")"
	})
}

// HTMLToTerminal is StripHTML for display: links become OSC 8
// hyperlinks with their text truncated to width. width <= 0 disables
// truncation.
func HTMLToTerminal(s string, width int) string {
	return htmlToText(s, func(href, text string) string {
		if text == "" {
			text = href
		}
		return MakeHyperlink(href, TruncateText(text, width))
	})
}

func htmlToText(s string, link linkFunc) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = brRe.ReplaceAllString(s, "\n")
	s = blockCloseRe.ReplaceAllString(s, "\n\n")
	s = blockOpenRe.ReplaceAllString(s, "\n")

	s = listWrapRe.ReplaceAllString(s, "")
	s = liOpenRe.ReplaceAllString(s, "\n  • ")
	s = liCloseRe.ReplaceAllString(s, "")

	s = replaceAnchors(s, link)
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spacesRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(trimmed, "• "); ok {
			lines[i] = "  • " + item
		} else {
			lines[i] = trimmed
		}
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

func replaceAnchors(s string, link linkFunc) string {
	for {
		loc := anchorRe.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}

		href := unwrapRedirect(s[loc[2]:loc[3]])
		rest := s[loc[1]:]

		end := anchorCloseRe.FindStringIndex(rest)
		if end == nil {
			// Unclosed anchor: drop the opening tag.
			s = s[:loc[0]] + rest
			continue
		}

		text := strings.TrimSpace(tagRe.ReplaceAllString(rest[:end[0]], ""))
		s = s[:loc[0]] + link(href, text) + rest[end[1]:]
	}
}
