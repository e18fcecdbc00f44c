package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unievents/uni/internal/core"
)

// Validation messages shown on the create form.
var (
	ErrMissingFields = errors.New("Please fill all fields")
	ErrShortTitle    = errors.New("Title must be at least 3 characters")
)

// ValidateDraft applies the create form rules: title, date and
// description are required and the title needs 3 characters.
func ValidateDraft(d core.Draft) error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Date) == "" || strings.TrimSpace(d.Description) == "" {
		return ErrMissingFields
	}
	if len([]rune(strings.TrimSpace(d.Title))) < 3 {
		return ErrShortTitle
	}
	return nil
}

const (
	fieldTitle = iota
	fieldDate
	fieldLocation
	fieldCategory
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Date", "Location", "Category", "Description"}

type createForm struct {
	inputs  [fieldCount]textinput.Model
	focused int
	err     error
}

func newCreateForm() createForm {
	var f createForm
	placeholders := [fieldCount]string{
		"Robotics Club Kickoff",
		"2025-09-01 18:00",
		"Engineering Hall 101",
		"Technology",
		"What is happening and why people should come",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		in.Width = 50
		f.inputs[i] = in
	}
	f.inputs[fieldDescription].CharLimit = 1000
	f.inputs[fieldTitle].Focus()
	return f
}

func (f createForm) draft() core.Draft {
	return core.Draft{
		Title:       strings.TrimSpace(f.inputs[fieldTitle].Value()),
		Date:        strings.TrimSpace(f.inputs[fieldDate].Value()),
		Location:    strings.TrimSpace(f.inputs[fieldLocation].Value()),
		Category:    strings.TrimSpace(f.inputs[fieldCategory].Value()),
		Description: strings.TrimSpace(f.inputs[fieldDescription].Value()),
	}
}

func (f *createForm) focus(i int) tea.Cmd {
	f.inputs[f.focused].Blur()
	f.focused = (i + fieldCount) % fieldCount
	return f.inputs[f.focused].Focus()
}

// update feeds a key to the focused input. It reports true when the user
// submits from the last field.
func (f *createForm) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return false, f.focus(f.focused + 1)
	case "shift+tab", "up":
		return false, f.focus(f.focused - 1)
	case "enter":
		if f.focused == fieldCount-1 {
			return true, nil
		}
		return false, f.focus(f.focused + 1)
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return false, cmd
}

func (f createForm) view(st Styles, width int) string {
	lines := []string{st.Title.Render("Create Event"), ""}
	for i, in := range f.inputs {
		label := st.Label.Render(fieldLabels[i])
		if i == f.focused {
			label = st.HelpKey.Width(14).Render("› " + fieldLabels[i])
		}
		lines = append(lines, label+" "+in.View())
	}
	if f.err != nil {
		lines = append(lines, "", st.Err.Render(f.err.Error()))
	}
	lines = append(lines, "", st.Status.Render("tab next • enter on description to save • esc cancel"))
	return st.DetailPanel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
