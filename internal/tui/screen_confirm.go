package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmedMsg reports an accepted confirmation to the owning tab.
type confirmedMsg struct {
	tab string
	id  int64
}

func (m confirmedMsg) target() string { return m.tab }

// confirmScreen asks before a destructive action. Declining sends nothing.
type confirmScreen struct {
	owner   string
	id      int64
	title   string
	message string
	warning string
}

func newConfirmScreen(owner string, id int64, title, message, warning string) *confirmScreen {
	return &confirmScreen{owner: owner, id: id, title: title, message: message, warning: warning}
}

func (s *confirmScreen) Title() string { return s.title }
func (s *confirmScreen) Scope() string { return scopeConfirm }

func (s *confirmScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil, false
	}
	switch key.String() {
	case "y", "Y":
		owner, id := s.owner, s.id
		return s, func() tea.Msg { return confirmedMsg{tab: owner, id: id} }, true
	case "n", "N", "esc":
		return s, nil, true
	}
	return s, nil, false
}

func (s *confirmScreen) View(width, height int) string {
	lines := []string{s.message}
	if s.warning != "" {
		lines = append(lines, "", warnStyle.Render(s.warning))
	}
	lines = append(lines, "", mutedStyle.Render("y conferma · n annulla"))
	return strings.Join(lines, "\n")
}
