package cmd

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/util"
)

var titleCase = cases.Title(language.English)

// printEventLine prints the one-line list form of an event.
func printEventLine(w io.Writer, e core.Event) {
	full := ""
	if e.IsFull {
		full = "  [FULL]"
	}
	category := ""
	if e.Category != "" {
		category = "  · " + titleCase.String(e.Category)
	}
	fmt.Fprintf(w, "  %-6s %-13s %s%s%s\n", e.ID, util.ShortDate(e.Date), e.Title, category, full)
}

// printEventDetails prints every field of an event.
func printEventDetails(w io.Writer, e core.Event) {
	fmt.Fprintf(w, "%s\n", e.Title)
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "🆔 ID:          %s\n", e.ID)
	fmt.Fprintf(w, "📅 When:        %s\n", util.FormatDate(e.Date))
	if e.Location != "" {
		fmt.Fprintf(w, "📍 Where:       %s\n", e.Location)
	}
	if e.Category != "" {
		fmt.Fprintf(w, "🏷️  Category:    %s\n", titleCase.String(e.Category))
	}
	if e.IsFull {
		fmt.Fprintln(w, "🚫 This event is full")
	}
	if e.Image != "" {
		fmt.Fprintf(w, "🖼  Image:       %s\n", util.MakeHyperlink(e.Image, e.Image))
	}
	if e.Description != "" {
		fmt.Fprintln(w, "📝 About:")
		for _, line := range wrapText(util.HTMLToTerminal(e.Description, 60), 60) {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}
}

// wrapText wraps text to the given width
func wrapText(s string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				lines = append(lines, line)
				line = word
			} else {
				line += " " + word
			}
		}
		lines = append(lines, line)
	}
	return lines
}
