package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/events"
	"github.com/unievents/uni/internal/kv"
	"github.com/unievents/uni/internal/session"
	"github.com/unievents/uni/internal/theme"
)

type stubGateway struct{ list []core.Event }

func (g stubGateway) ListEvents(context.Context) ([]core.Event, error) { return g.list, nil }
func (g stubGateway) GetEvent(_ context.Context, id core.EventID) (core.Event, error) {
	for _, e := range g.list {
		if e.ID.Equal(id) {
			e.Description = "full details"
			return e, nil
		}
	}
	return core.Event{}, errors.New("not found")
}

func newModel(t *testing.T, guard session.Guard) Model {
	t.Helper()
	ctx := context.Background()
	storage := kv.NewMemoryStore()
	gw := stubGateway{list: []core.Event{
		{ID: "1", Title: "Tech Conference 2025", Date: "2025-03-15T10:00:00Z", Category: "technology"},
		{ID: "2", Title: "Art Exhibition", Date: "2025-03-20T14:00:00Z"},
	}}
	th, err := theme.New(ctx, storage)
	require.NoError(t, err)
	guard.Session = session.New(ctx, storage)
	return NewModel(ctx, events.New(ctx, gw, storage), th, guard)
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestValidateDraft(t *testing.T) {
	assert.ErrorIs(t, ValidateDraft(core.Draft{Title: "Gala"}), ErrMissingFields)
	assert.ErrorIs(t, ValidateDraft(core.Draft{Title: "Go", Date: "2025-01-01", Description: "x"}), ErrShortTitle)
	assert.NoError(t, ValidateDraft(core.Draft{Title: "Gala", Date: "2025-01-01", Description: "x"}))
}

func TestModel_FetchAndNavigate(t *testing.T) {
	m := newModel(t, session.Guard{})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	msg := m.Init()()
	m, _ = step(t, m, msg)
	require.Len(t, m.events, 2)
	assert.Contains(t, m.View(), "Tech Conference 2025")

	m, _ = step(t, m, press("down"))
	assert.Equal(t, 1, m.selectedIdx)

	m, cmd := step(t, m, press("enter"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	require.NotNil(t, m.detail)
	assert.Equal(t, "Art Exhibition", m.detail.Title)
	assert.Contains(t, m.detail.Image, "1200x600")
}

func TestModel_CreateEvent(t *testing.T) {
	m := newModel(t, session.Guard{})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = step(t, m, press("n"))
	require.Equal(t, modeCreate, m.mode)

	m = typeText(t, m, "Chess Night")
	m, _ = step(t, m, press("tab"))
	m = typeText(t, m, "2025-06-01")
	for range 3 {
		m, _ = step(t, m, press("tab"))
	}

	// Submitting without a description fails validation.
	m, cmd := step(t, m, press("enter"))
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.form.err, ErrMissingFields)

	m = typeText(t, m, "Bring boards")
	m, cmd = step(t, m, press("enter"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, modeBrowse, m.mode)
	require.NotEmpty(t, m.events)
	assert.Equal(t, "Chess Night", m.events[0].Title)
}

func TestModel_GuardBlocksCreate(t *testing.T) {
	m := newModel(t, session.Guard{Enforce: true})

	m, _ = step(t, m, press("n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, session.ErrUnauthenticated.Error(), m.status)
}

func TestModel_ToggleTheme(t *testing.T) {
	m := newModel(t, session.Guard{})
	require.False(t, m.theme.IsDark())

	m, cmd := step(t, m, press("t"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.True(t, m.theme.IsDark())
	assert.Equal(t, "dark theme", m.status)
}
