// Package tui is the terminal client: an app shell with tabs and modal
// screens over the remote API.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/database/repository"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/logging"
	"github.com/jask/mybudget/internal/money"
	"github.com/jask/mybudget/internal/tui/widgets"
)

type Screen interface {
	Update(msg tea.Msg) (Screen, tea.Cmd, bool)
	View(width, height int) string
	Scope() string
	Title() string
}

// ScreenInitializer is implemented by screens that fetch on open.
type ScreenInitializer interface {
	Init() tea.Cmd
}

// ScreenCloser is implemented by screens owning async work.
type ScreenCloser interface {
	Close()
}

type Tab interface {
	ID() string
	Title() string
	Scope() string
	Init(m *Model) tea.Cmd
	Update(m *Model, msg tea.Msg) tea.Cmd
	Build(m *Model) widgets.Widget
	// Close cancels the tab's tasks and releases its subscriptions.
	Close()
}

// TokenStore persists the bearer token per endpoint.
type TokenStore interface {
	StoreToken(endpoint, token string) error
	DeleteToken(endpoint string) error
}

// SavedFilterStore keeps named transaction filters.
type SavedFilterStore interface {
	Save(ctx context.Context, f repository.SavedFilter) (repository.SavedFilter, error)
	List(ctx context.Context) ([]repository.SavedFilter, error)
	Delete(ctx context.Context, name string) error
}

// Deps are the collaborators shared by every view.
type Deps struct {
	Client  *api.Client
	Hub     *events.Hub
	Tokens  TokenStore
	Filters SavedFilterStore
	Log     *logging.Logger
	// Send delivers messages from background goroutines into the program.
	Send       func(tea.Msg)
	Money      money.Formatter
	PerPage    int
	DateFormat string
	CloseDelay time.Duration
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.PerPage <= 0 {
		d.PerPage = 50
	}
	if d.DateFormat == "" {
		d.DateFormat = "02/01/2006"
	}
	if d.CloseDelay <= 0 {
		d.CloseDelay = time.Second
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type Model struct {
	width     int
	height    int
	tabs      []Tab
	activeTab int
	screens   ScreenStack
	keys      *KeyRegistry
	status    string
	statusErr bool
	quitting  bool
	deps      Deps
	log       *logging.Logger
	user      *api.User
}

// NewModel opens the tabs when the client already holds a token,
// otherwise the login screen.
func NewModel(deps Deps) Model {
	deps = deps.withDefaults()
	m := Model{
		keys:   NewKeyRegistry(DefaultKeyBindings()),
		deps:   deps,
		log:    deps.Log.WithComponent("tui"),
		status: "Pronto",
		width:  100,
		height: 32,
	}
	if deps.Client.HasToken() {
		m.tabs = newSessionTabs(deps)
	} else {
		m.screens.Push(newLoginScreen(deps, ""))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.tabs)+1)
	if len(m.tabs) > 0 && m.user == nil {
		// a stored token may have expired; /auth/me tells us early
		cmds = append(cmds, fetchUser(m.deps.Client))
	}
	for _, t := range m.tabs {
		if cmd := t.Init(&m); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) SetStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) SetError(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m Model) Deps() Deps { return m.deps }

func (m Model) ActiveScope() string {
	if top := m.screens.Top(); top != nil {
		return top.Scope()
	}
	if len(m.tabs) == 0 {
		return "app"
	}
	return m.tabs[m.activeTab].Scope()
}

func (m *Model) SwitchTab(index int) {
	if index < 0 || index >= len(m.tabs) {
		return
	}
	m.activeTab = index
}

// PushScreen opens s and returns its initial fetch, if any.
func (m *Model) PushScreen(s Screen) tea.Cmd {
	if s == nil {
		return nil
	}
	m.screens.Push(s)
	if init, ok := s.(ScreenInitializer); ok {
		return init.Init()
	}
	return nil
}

func (m *Model) tab(id string) Tab {
	for _, t := range m.tabs {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// openSession builds fresh tabs after a login.
func (m *Model) openSession(sess api.Session) tea.Cmd {
	m.deps.Client.SetToken(sess.Token)
	if m.deps.Tokens != nil {
		if err := m.deps.Tokens.StoreToken(m.deps.Client.Endpoint(), sess.Token); err != nil {
			m.log.Warn("store token failed", "err", err)
		}
	}
	user := sess.User
	m.user = &user
	m.screens.Clear()
	m.closeTabs()
	m.tabs = newSessionTabs(m.deps)
	m.activeTab = 0
	m.SetStatus("Benvenuto " + user.Name)
	return m.Init()
}

// closeSession tears every tab down and forgets the token.
func (m *Model) closeSession(notice string) {
	m.closeTabs()
	m.screens.Clear()
	m.user = nil
	m.deps.Client.SetToken("")
	if m.deps.Tokens != nil {
		if err := m.deps.Tokens.DeleteToken(m.deps.Client.Endpoint()); err != nil {
			m.log.Warn("delete token failed", "err", err)
		}
	}
	m.screens.Push(newLoginScreen(m.deps, notice))
}

func (m *Model) closeTabs() {
	for _, t := range m.tabs {
		t.Close()
	}
	m.tabs = nil
	m.activeTab = 0
}

func newSessionTabs(deps Deps) []Tab {
	return []Tab{
		newTransactionsTab(deps),
		newAccountsTab(deps),
		newTagsTab(deps),
		newChartsTab(deps),
	}
}
