package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
)

type StatusMsg struct {
	Text  string
	IsErr bool
}

type PushScreenMsg struct {
	Screen Screen
}

type PopScreenMsg struct{}

type TabSwitchMsg struct {
	Index int
}

// addressed messages are delivered to the named tab even while a screen
// is open.
type addressed interface {
	target() string
}

// authRequiredMsg tears the session down and shows the login screen.
type authRequiredMsg struct{}

// sessionStartedMsg is emitted by the login screen on success.
type sessionStartedMsg struct {
	session api.Session
}

type loggedOutMsg struct{}

// userLoadedMsg answers the startup /auth/me request.
type userLoadedMsg struct {
	user api.User
	err  error
}

// signalMsg carries a change notification to the subscribing tab.
type signalMsg struct {
	tab    string
	stream string
	signal events.Signal
}

func (m signalMsg) target() string { return m.tab }

// savedMsg tells the owning tab that a form stored something.
type savedMsg struct {
	tab string
}

func (m savedMsg) target() string { return m.tab }

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}
