package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unievents/uni/internal/events"
)

// Styles is the full style set for one theme.
type Styles struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Error   lipgloss.Color
	Fg      lipgloss.Color

	App         lipgloss.Style
	Header      lipgloss.Style
	ListPanel   lipgloss.Style
	DetailPanel lipgloss.Style

	SelectedItem lipgloss.Style
	NormalItem   lipgloss.Style
	Date         lipgloss.Style

	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Link  lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	Status lipgloss.Style
	Err    lipgloss.Style
	Full   lipgloss.Style
}

// NewStyles builds the dark or light style set.
func NewStyles(dark bool) Styles {
	s := Styles{
		Primary: lipgloss.Color("#4F46E5"),
		Muted:   lipgloss.Color("#6B7280"),
		Accent:  lipgloss.Color("#D97706"),
		Error:   lipgloss.Color("#DC2626"),
		Fg:      lipgloss.Color("#111827"),
	}
	if dark {
		s.Primary = lipgloss.Color("#818CF8")
		s.Muted = lipgloss.Color("#9CA3AF")
		s.Accent = lipgloss.Color("#F59E0B")
		s.Error = lipgloss.Color("#F87171")
		s.Fg = lipgloss.Color("#F9FAFB")
	}

	s.App = lipgloss.NewStyle().Padding(1, 2)
	s.Header = lipgloss.NewStyle().Bold(true).Foreground(s.Primary)
	s.ListPanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(s.Muted).Padding(0, 1)
	s.DetailPanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(s.Primary).Padding(1, 2)

	s.SelectedItem = lipgloss.NewStyle().Background(s.Primary).Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Padding(0, 1)
	s.NormalItem = lipgloss.NewStyle().Foreground(s.Fg).Padding(0, 1)
	s.Date = lipgloss.NewStyle().Foreground(s.Muted).Width(13)

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(s.Primary).MarginBottom(1)
	s.Label = lipgloss.NewStyle().Foreground(s.Accent).Bold(true).Width(14)
	s.Value = lipgloss.NewStyle().Foreground(s.Fg)
	s.Link = lipgloss.NewStyle().Foreground(s.Primary).Underline(true)

	s.Help = lipgloss.NewStyle().Foreground(s.Muted).MarginTop(1)
	s.HelpKey = lipgloss.NewStyle().Foreground(s.Primary).Bold(true)

	s.Status = lipgloss.NewStyle().Foreground(s.Muted).Italic(true)
	s.Err = lipgloss.NewStyle().Foreground(s.Error)
	s.Full = lipgloss.NewStyle().Foreground(s.Error).Bold(true)
	return s
}

// CategoryBadge colors a category with the palette of the event's position,
// the same pairing its card image uses.
func CategoryBadge(category string, index int) string {
	p := events.Palettes[index%len(events.Palettes)]
	return lipgloss.NewStyle().
		Background(lipgloss.Color("#" + p.Background)).
		Foreground(lipgloss.Color("#" + p.Text)).
		Padding(0, 1).
		Render(category)
}
