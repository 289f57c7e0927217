package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case StatusMsg:
		m.status = msg.Text
		m.statusErr = msg.IsErr
		return m, nil
	case PushScreenMsg:
		return m, m.PushScreen(msg.Screen)
	case PopScreenMsg:
		m.screens.Pop()
		return m, nil
	case TabSwitchMsg:
		m.SwitchTab(msg.Index)
		return m, nil
	case authRequiredMsg:
		if len(m.tabs) == 0 {
			return m, nil
		}
		m.log.Info("session expired")
		m.closeSession("Sessione scaduta, accedi di nuovo")
		return m, nil
	case userLoadedMsg:
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return m, requireLogin
			}
			m.log.Warn("load user failed", "err", msg.err)
			return m, nil
		}
		u := msg.user
		m.user = &u
		return m, nil
	case sessionStartedMsg:
		return m, m.openSession(msg.session)
	case loggedOutMsg:
		m.closeSession("Disconnesso")
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if top := m.screens.Top(); top != nil {
			return m, m.updateTop(top, msg)
		}

		scope := m.ActiveScope()
		if m.keys.IsAction(msg, actQuit, scope) {
			return m.quit()
		}
		if m.keys.IsAction(msg, actLogout, scope) {
			return m, m.logout()
		}
		for i := range m.tabs {
			if m.keys.IsAction(msg, fmt.Sprintf("switch-tab-%d", i+1), scope) {
				m.SwitchTab(i)
				return m, nil
			}
		}
		if len(m.tabs) > 0 {
			return m, m.tabs[m.activeTab].Update(&m, msg)
		}
		return m, nil
	}

	if a, ok := msg.(addressed); ok && a.target() != "" {
		if t := m.tab(a.target()); t != nil {
			return m, t.Update(&m, msg)
		}
		return m, nil
	}
	if top := m.screens.Top(); top != nil {
		return m, m.updateTop(top, msg)
	}
	if len(m.tabs) > 0 {
		return m, m.tabs[m.activeTab].Update(&m, msg)
	}
	return m, nil
}

func (m *Model) updateTop(top Screen, msg tea.Msg) tea.Cmd {
	next, cmd, pop := top.Update(msg)
	if pop {
		m.screens.Pop()
		return cmd
	}
	if next != nil {
		m.screens.Replace(next)
	}
	return cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.closeTabs()
	m.screens.Clear()
	return m, tea.Quit
}

// logout always ends the local session, even when the call fails.
func (m *Model) logout() tea.Cmd {
	client := m.deps.Client
	log := m.log
	m.SetStatus("Disconnessione...")
	return func() tea.Msg {
		if err := client.Logout(context.Background()); err != nil {
			log.Warn("logout failed", "err", err)
		}
		return loggedOutMsg{}
	}
}
