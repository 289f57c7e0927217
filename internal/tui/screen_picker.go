package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// pickedMsg reports the chosen entry of a picker. remove is set when the
// user asked to delete it instead.
type pickedMsg struct {
	tab    string
	name   string
	remove bool
}

func (m pickedMsg) target() string { return m.tab }

type pickerItem struct {
	name   string
	detail string
}

type pickerScreen struct {
	owner  string
	title  string
	items  []pickerItem
	cursor int
}

func newPickerScreen(owner, title string, items []pickerItem) *pickerScreen {
	return &pickerScreen{owner: owner, title: title, items: items}
}

func (s *pickerScreen) Title() string { return s.title }
func (s *pickerScreen) Scope() string { return scopePicker }

func (s *pickerScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil, false
	}
	switch key.String() {
	case "esc":
		return s, nil, true
	case "down", "j":
		s.cursor = min(s.cursor+1, max(0, len(s.items)-1))
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "enter", "ctrl+d":
		if len(s.items) == 0 {
			return s, nil, true
		}
		out := pickedMsg{tab: s.owner, name: s.items[s.cursor].name, remove: key.String() == "ctrl+d"}
		return s, func() tea.Msg { return out }, true
	}
	return s, nil, false
}

func (s *pickerScreen) View(width, height int) string {
	if len(s.items) == 0 {
		return mutedStyle.Render("Nessun filtro salvato") + "\n\n" + mutedStyle.Render("esc chiudi")
	}
	lines := make([]string, 0, len(s.items)+2)
	for i, it := range s.items {
		line := it.name + "  " + mutedStyle.Render(it.detail)
		if i == s.cursor {
			line = focusStyle.Render("› "+it.name) + "  " + mutedStyle.Render(it.detail)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", mutedStyle.Render("invio applica · ctrl+d elimina · esc chiudi"))
	return strings.Join(lines, "\n")
}
