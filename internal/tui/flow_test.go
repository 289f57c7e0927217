package tui

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/database"
	"github.com/jask/mybudget/internal/database/repository"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/fakeapi"
)

var flowNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

const flowSeed = `
users:
  - {name: Demo, email: demo@test.it, password: password123}
accounts: [Checking, Risparmi, Vuoto]
tags: [Spesa, Stipendio, Casa]
transactions:
  - {data: "2025-03-01", importo: "1000", descrizione: "Stipendio", conto: Checking, tags: [Stipendio]}
  - {data: "2025-03-02", importo: "-500", descrizione: "Affitto", conto: Checking, tags: [Casa]}
  - {data: "2025-03-05", importo: "-40", descrizione: "Supermercato", conto: Checking, tags: [Spesa]}
  - {data: "2025-03-10", importo: "-100", descrizione: "Accantonamento", conto: Checking, destinazione: Risparmi, tags: [Casa]}
  - {data: "2025-02-20", importo: "-25", descrizione: "Cena", conto: Checking, tags: [Spesa]}
`

// memTokens records what the model persists.
type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (s *memTokens) StoreToken(endpoint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = map[string]string{}
	}
	s.tokens[endpoint] = token
	return nil
}

func (s *memTokens) DeleteToken(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, endpoint)
	return nil
}

func (s *memTokens) get(endpoint string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[endpoint]
}

type flowHarness struct {
	t       *testing.T
	srv     *fakeapi.Server
	client  *api.Client
	hub     *events.Hub
	tokens  *memTokens
	signals chan tea.Msg
	m       Model
}

type flowOptions struct {
	seed     string
	loggedIn bool
	perPage  int
	filters  bool
}

func newFlow(t *testing.T, opts flowOptions) *flowHarness {
	t.Helper()
	if opts.seed == "" {
		opts.seed = flowSeed
	}
	seed, err := fakeapi.ParseSeed([]byte(opts.seed))
	require.NoError(t, err)
	srv, err := fakeapi.New(seed, fakeapi.WithClock(func() time.Time { return flowNow }))
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	token := ""
	if opts.loggedIn {
		tok, ok := srv.Login("demo@test.it", "password123")
		require.True(t, ok)
		token = tok
	}
	client := api.New(api.Options{Endpoint: hs.URL + fakeapi.BasePath, Token: token})
	hub := events.NewHub()
	t.Cleanup(hub.Close)

	h := &flowHarness{
		t:       t,
		srv:     srv,
		client:  client,
		hub:     hub,
		tokens:  &memTokens{},
		signals: make(chan tea.Msg, 64),
	}
	deps := Deps{
		Client:     client,
		Hub:        hub,
		Tokens:     h.tokens,
		Send:       func(msg tea.Msg) { h.signals <- msg },
		PerPage:    opts.perPage,
		DateFormat: "02/01/2006",
		CloseDelay: time.Millisecond,
		Now:        func() time.Time { return flowNow },
	}
	if opts.filters {
		db, err := database.Open(t.TempDir() + "/mybudget.db")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		deps.Filters = repository.NewSavedFilterRepo(db)
	}
	h.m = NewModel(deps)
	h.m.width, h.m.height = 140, 40
	h.drain(h.m.Init())
	return h
}

// drain runs cmd and every command it produces, feeding results back
// into the model. Batches are expanded.
func (h *flowHarness) drain(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			h.t.Fatal("command chain exceeded max depth")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, h.apply(msg))
		}
	}
}

// hold runs cmd and returns what it produced without applying it, so a
// test can deliver responses late or out of order.
func (h *flowHarness) hold(cmd tea.Cmd) []tea.Msg {
	h.t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func (h *flowHarness) deliver(msgs []tea.Msg) {
	h.t.Helper()
	for _, msg := range msgs {
		h.send(msg)
	}
}

func (h *flowHarness) apply(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		h.t.Fatalf("Update returned %T, want Model", next)
	}
	h.m = got
	return cmd
}

func (h *flowHarness) send(msg tea.Msg) {
	h.t.Helper()
	h.drain(h.apply(msg))
}

func (h *flowHarness) press(key string) {
	h.t.Helper()
	h.send(keyMsg(key))
}

func (h *flowHarness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// pump delivers the change signals forwarded so far, waiting briefly
// for at least want of them.
func (h *flowHarness) pump(want int) int {
	h.t.Helper()
	got := 0
	timeout := time.After(time.Second)
	for {
		wait := 20 * time.Millisecond
		if got < want {
			wait = time.Second
		}
		select {
		case msg := <-h.signals:
			got++
			h.send(msg)
		case <-time.After(wait):
			return got
		case <-timeout:
			return got
		}
	}
}

func (h *flowHarness) view() string {
	return ansi.Strip(h.m.View())
}

func (h *flowHarness) top() Screen {
	return h.m.screens.Top()
}

func (h *flowHarness) accountID(name string) int64 {
	h.t.Helper()
	accounts, err := h.client.ListAccounts(context.Background())
	require.NoError(h.t, err)
	for _, a := range accounts {
		if a.Nome == name {
			return a.ID
		}
	}
	h.t.Fatalf("account %q not found", name)
	return 0
}

func (h *flowHarness) transactionsTab() *transactionsTab {
	h.t.Helper()
	tab, ok := h.m.tab(tabTransactions).(*transactionsTab)
	require.True(h.t, ok)
	return tab
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
