// Package tui is the interactive dashboard: the event list, a detail
// panel, a create form and the theme toggle.
package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/events"
	"github.com/unievents/uni/internal/session"
	"github.com/unievents/uni/internal/theme"
	"github.com/unievents/uni/internal/util"
)

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Details    key.Binding
	Open       key.Binding
	Refresh    key.Binding
	New        key.Binding
	Theme      key.Binding
	Tab        key.Binding
	Quit       key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	ScrollUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "scroll down")),
	Details:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open image")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new event")),
	Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Tab:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// PanelFocus selects the visible panel in compact mode.
type PanelFocus int

const (
	FocusList PanelFocus = iota
	FocusDetail
)

type mode int

const (
	modeBrowse mode = iota
	modeCreate
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx   context.Context
	store *events.Store
	theme *theme.Store
	guard session.Guard

	styles Styles
	keys   KeyMap
	caser  cases.Caser

	events      []core.Event
	selectedIdx int
	detail      *core.Event
	status      string

	mode mode
	form createForm

	width, height int
	listWidth     int
	detailWidth   int
	contentHeight int
	listView      viewport.Model
	detailView    viewport.Model
	viewportReady bool
	compactMode   bool
	focusedPanel  PanelFocus
}

// NewModel returns a dashboard over store. The first frame shows what the
// store already holds; Init starts a fetch.
func NewModel(ctx context.Context, store *events.Store, th *theme.Store, guard session.Guard) Model {
	return Model{
		ctx:    ctx,
		store:  store,
		theme:  th,
		guard:  guard,
		styles: NewStyles(th.IsDark()),
		keys:   DefaultKeyMap,
		caser:  cases.Title(language.English),
		events: store.Events(),
	}
}

type fetchedMsg struct{}

type detailMsg struct{ event core.Event }

type addedMsg struct {
	ok  bool
	err string
}

type themeMsg struct{ err error }

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		m.store.FetchEvents(m.ctx)
		return fetchedMsg{}
	}
}

func (m Model) fetchDetail(id core.EventID) tea.Cmd {
	return func() tea.Msg {
		return detailMsg{event: m.store.FetchEventByID(m.ctx, id)}
	}
}

func (m Model) add(d core.Draft) tea.Cmd {
	return func() tea.Msg {
		ok := m.store.AddEvent(m.ctx, d)
		return addedMsg{ok: ok, err: m.store.Err()}
	}
}

func (m Model) toggleTheme() tea.Cmd {
	return func() tea.Msg {
		return themeMsg{err: m.theme.Toggle(m.ctx)}
	}
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) calculateLayout() {
	height := max(m.height, 10)
	m.contentHeight = max(height-6, 5)

	m.compactMode = m.width < 70
	if m.compactMode {
		m.listWidth = max(m.width-4, 20)
		m.detailWidth = m.listWidth
		return
	}

	switch {
	case m.width < 100:
		m.listWidth = m.width * 45 / 100
	case m.width < 140:
		m.listWidth = m.width * 40 / 100
	default:
		m.listWidth = min(m.width*35/100, 60)
	}
	m.listWidth = max(m.listWidth, 32)
	m.detailWidth = max(m.width-m.listWidth-5, 35)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.calculateLayout()

		listW, listH := max(m.listWidth-4, 10), max(m.contentHeight-4, 1)
		detailW, detailH := max(m.detailWidth-6, 10), max(m.contentHeight-4, 1)
		if !m.viewportReady {
			m.listView = viewport.New(listW, listH)
			m.detailView = viewport.New(detailW, detailH)
			m.viewportReady = true
		} else {
			m.listView.Width, m.listView.Height = listW, listH
			m.detailView.Width, m.detailView.Height = detailW, detailH
		}
		m.refreshContent()
		return m, nil

	case fetchedMsg:
		m.events = m.store.Events()
		m.status = m.store.Err()
		m.selectedIdx = min(m.selectedIdx, max(len(m.events)-1, 0))
		m.detail = nil
		m.refreshContent()
		return m, nil

	case detailMsg:
		e := msg.event
		m.detail = &e
		m.focusedPanel = FocusDetail
		m.refreshContent()
		m.detailView.GotoTop()
		return m, nil

	case addedMsg:
		if !msg.ok {
			m.form.err = fmt.Errorf("could not create event: %s", msg.err)
			return m, nil
		}
		m.mode = modeBrowse
		m.events = m.store.Events()
		m.selectedIdx = 0
		m.detail = nil
		m.status = "Event created"
		m.refreshContent()
		return m, nil

	case themeMsg:
		m.styles = NewStyles(m.theme.IsDark())
		if msg.err != nil {
			m.status = "theme not saved: " + msg.err.Error()
		} else {
			m.status = m.theme.Name() + " theme"
		}
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeCreate {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	submit, cmd := m.form.update(msg)
	if !submit {
		return m, cmd
	}
	d := m.form.draft()
	if err := ValidateDraft(d); err != nil {
		m.form.err = err
		return m, nil
	}
	m.form.err = nil
	return m, m.add(d)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.detail = nil
			m.refreshContent()
			m.scrollListToSelection()
		}

	case key.Matches(msg, m.keys.Down):
		if m.selectedIdx < len(m.events)-1 {
			m.selectedIdx++
			m.detail = nil
			m.refreshContent()
			m.scrollListToSelection()
		}

	case key.Matches(msg, m.keys.ScrollUp):
		m.detailView.ViewUp()

	case key.Matches(msg, m.keys.ScrollDown):
		m.detailView.ViewDown()

	case key.Matches(msg, m.keys.Details):
		if e, ok := m.selected(); ok {
			return m, m.fetchDetail(e.ID)
		}

	case key.Matches(msg, m.keys.Open):
		img := ""
		if e, ok := m.selected(); ok {
			img = e.Image
		}
		if m.detail != nil && m.detail.Image != "" {
			img = m.detail.Image
		}
		if img != "" {
			return m, openURL(img)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.status = "Loading events..."
		return m, m.fetch()

	case key.Matches(msg, m.keys.New):
		if err := m.guard.Check(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.mode = modeCreate
		m.form = newCreateForm()
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleTheme()

	case key.Matches(msg, m.keys.Tab):
		if m.focusedPanel == FocusList {
			m.focusedPanel = FocusDetail
		} else {
			m.focusedPanel = FocusList
		}
	}
	return m, nil
}

func (m Model) selected() (core.Event, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.events) {
		return core.Event{}, false
	}
	return m.events[m.selectedIdx], true
}

func (m *Model) refreshContent() {
	if !m.viewportReady {
		return
	}
	m.updateListContent()
	m.updateDetailContent()
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.mode == modeCreate:
		content = m.form.view(m.styles, m.width-6)
	case m.compactMode && m.focusedPanel == FocusDetail:
		content = m.renderDetailPanel()
	case m.compactMode:
		content = m.renderListPanel()
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderListPanel(), " ", m.renderDetailPanel())
	}

	return m.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderHelp()),
	)
}

func (m Model) renderHeader() string {
	st := m.styles
	title := st.Header.Render("🎓 UniEvents")
	right := []string{st.Status.Render(fmt.Sprintf("%d events", len(m.events)))}
	if m.store.Loading() {
		right = append(right, st.Status.Render("loading…"))
	}
	if m.status != "" {
		right = append(right, st.Status.Render(m.status))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(right, "  •  "))
}

func (m *Model) updateListContent() {
	st := m.styles
	if len(m.events) == 0 {
		m.listView.SetContent(st.Status.Render("No events found"))
		return
	}

	items := make([]string, 0, len(m.events))
	for i, e := range m.events {
		date := st.Date.Render(util.ShortDate(e.Date))
		title := util.TruncateText(e.Title, max(m.listView.Width-18, 8))
		line := date + " " + title
		if e.IsFull {
			line += " " + st.Full.Render("FULL")
		}
		if i == m.selectedIdx {
			items = append(items, st.SelectedItem.Render(ansi.Strip(line)))
		} else {
			items = append(items, st.NormalItem.Render(line))
		}
	}
	m.listView.SetContent(strings.Join(items, "\n"))
}

func (m *Model) scrollListToSelection() {
	if m.selectedIdx < m.listView.YOffset {
		m.listView.SetYOffset(m.selectedIdx)
	}
	if bottom := m.selectedIdx + 1; bottom > m.listView.YOffset+m.listView.Height {
		m.listView.SetYOffset(bottom - m.listView.Height)
	}
}

func (m *Model) updateDetailContent() {
	e, ok := m.selected()
	if !ok {
		m.detailView.SetContent("")
		return
	}
	if m.detail != nil {
		e = *m.detail
	}

	st := m.styles
	width := m.detailView.Width
	lines := []string{st.Title.Render(ansi.Wordwrap(e.Title, width, ""))}

	if e.Category != "" {
		lines = append(lines, CategoryBadge(m.caser.String(e.Category), m.selectedIdx), "")
	}
	lines = append(lines, renderWrappedField(st, "📅 When", util.FormatDate(e.Date), width))
	if e.Location != "" {
		lines = append(lines, renderWrappedField(st, "📍 Where", e.Location, width))
	}
	if e.IsFull {
		lines = append(lines, st.Full.Render("This event is full"))
	}
	if e.Image != "" {
		link := util.MakeHyperlink(e.Image, st.Link.Render("open image"))
		lines = append(lines, st.Label.Render("🖼  Image")+" "+link)
	}

	if e.Description != "" {
		lines = append(lines, "", st.Label.Render("📝 About"))
		lines = append(lines, st.Value.Render(ansi.Wordwrap(util.HTMLToTerminal(e.Description, width), width, "")))
	}

	if m.detail == nil {
		lines = append(lines, "", st.Status.Render("press enter for full details"))
	}
	m.detailView.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderListPanel() string {
	st := m.styles
	header := lipgloss.NewStyle().Foreground(st.Primary).Bold(true).Render("Events")
	if m.viewportReady && m.listView.TotalLineCount() > m.listView.Height {
		header += st.Status.Render(fmt.Sprintf(" (%d/%d)", m.selectedIdx+1, len(m.events)))
	}
	return st.ListPanel.Width(m.listWidth).Height(m.contentHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, m.listView.View()),
	)
}

func (m Model) renderDetailPanel() string {
	st := m.styles
	if len(m.events) == 0 {
		return st.DetailPanel.Width(m.detailWidth).Height(m.contentHeight).Render(
			st.Status.Render("No event selected"),
		)
	}

	header := lipgloss.NewStyle().Foreground(st.Primary).Bold(true).Render("Event Details")
	if m.viewportReady && m.detailView.TotalLineCount() > m.detailView.Height {
		header += st.Status.Render(fmt.Sprintf(" (%d%%)", int(m.detailView.ScrollPercent()*100)))
	}
	return st.DetailPanel.Width(m.detailWidth).Height(m.contentHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", m.detailView.View()),
	)
}

func (m Model) renderHelp() string {
	if m.mode == modeCreate {
		return ""
	}
	st := m.styles
	keys := []string{
		st.HelpKey.Render("↑/↓") + " nav",
		st.HelpKey.Render("enter") + " details",
		st.HelpKey.Render("n") + " new",
		st.HelpKey.Render("r") + " refresh",
		st.HelpKey.Render("t") + " theme",
		st.HelpKey.Render("o") + " image",
		st.HelpKey.Render("q") + " quit",
	}
	line := strings.Join(keys, "  •  ")
	if lipgloss.Width(line) > m.width-4 {
		line = strings.Join(keys[:4], "  ")
	}
	return st.Help.Render(line)
}

// renderWrappedField renders a label and a value wrapped to maxWidth, with
// continuation lines aligned under the value.
func renderWrappedField(st Styles, label, value string, maxWidth int) string {
	labelRendered := st.Label.Render(label)
	labelWidth := lipgloss.Width(labelRendered) + 1
	wrapped := ansi.Wordwrap(value, max(maxWidth-labelWidth, 10), "")
	lines := strings.Split(wrapped, "\n")
	indent := strings.Repeat(" ", labelWidth)
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return labelRendered + " " + st.Value.Render(strings.Join(lines, "\n"))
}

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			return nil
		}
		_ = cmd.Start()
		return nil
	}
}
