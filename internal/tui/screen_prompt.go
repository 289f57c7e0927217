package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// promptMsg carries the text entered in a prompt screen.
type promptMsg struct {
	tab   string
	value string
}

func (m promptMsg) target() string { return m.tab }

// promptScreen asks for a single line of text.
type promptScreen struct {
	owner  string
	title  string
	fields fieldSet
	err    string
}

func newPromptScreen(owner, title, label string) *promptScreen {
	return &promptScreen{
		owner:  owner,
		title:  title,
		fields: newFieldSet(newField("value", label, "", "")),
	}
}

func (s *promptScreen) Title() string { return s.title }
func (s *promptScreen) Scope() string { return scopePrompt }

func (s *promptScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil, false
	}
	switch key.String() {
	case "esc":
		return s, nil, true
	case "enter":
		v := s.fields.value("value")
		if v == "" {
			s.err = "Inserire un nome"
			return s, nil, false
		}
		owner := s.owner
		return s, func() tea.Msg { return promptMsg{tab: owner, value: v} }, true
	}
	return s, s.fields.update(key), false
}

func (s *promptScreen) View(width, height int) string {
	lines := s.fields.view(nil)
	if s.err != "" {
		lines = append(lines, errorStyle.Render(s.err))
	}
	lines = append(lines, "", mutedStyle.Render("invio conferma · esc annulla"))
	return strings.Join(lines, "\n")
}
