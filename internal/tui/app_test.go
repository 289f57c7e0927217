package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/state"
)

func countSignals(sub interface{ C() <-chan events.Signal }, wait time.Duration) int {
	n := 0
	for {
		select {
		case <-sub.C():
			n++
		case <-time.After(wait):
			return n
		}
	}
}

func accountsTab(t *testing.T, h *flowHarness) *listTab[api.Account] {
	t.Helper()
	tab, ok := h.m.tab(tabAccounts).(*listTab[api.Account])
	require.True(t, ok)
	return tab
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func TestAccountsTabShowsBalanceWithoutPagination(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true, seed: `
users:
  - {name: Demo, email: demo@test.it, password: password123}
accounts: [Checking]
tags: [Stipendio]
transactions:
  - {data: "2025-03-01", importo: "500", descrizione: "Stipendio", conto: Checking, tags: [Stipendio]}
`})
	h.press("2")
	view := h.view()
	assert.Contains(t, view, "Checking")
	assert.Contains(t, view, "500,00")
	assert.NotContains(t, view, "Pagina")
	assert.Contains(t, view, "mybudget · Demo")
	assert.Equal(t, 1, accountsTab(t, h).list.Len())
}

func TestDeleteAccountRollsBackOnFailure(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("2")
	tab := accountsTab(t, h)
	idx := indexOf(tab.list.Items, func(a api.Account) bool { return a.Nome == "Vuoto" })
	require.GreaterOrEqual(t, idx, 0)
	for i := 0; i < idx; i++ {
		h.press("j")
	}
	id := h.accountID("Vuoto")
	path := fmt.Sprintf("/accounts/%d", id)
	h.srv.Fail("DELETE", path, 500, 1)

	h.press("d")
	_, ok := h.top().(*confirmScreen)
	require.True(t, ok)
	h.press("y")

	require.Equal(t, 3, tab.list.Len())
	assert.Equal(t, "Vuoto", tab.list.Items[idx].Nome)
	assert.True(t, h.m.statusErr)
	assert.Equal(t, "Errore: Errore simulato", h.m.status)
	assert.Empty(t, tab.pending)

	tab.cursor = idx
	h.press("d")
	h.press("y")
	assert.Equal(t, 2, tab.list.Len())
	assert.Equal(t, -1, indexOf(tab.list.Items, func(a api.Account) bool { return a.Nome == "Vuoto" }))
	assert.Equal(t, 2, h.srv.Requests("DELETE", path))
	assert.False(t, h.m.statusErr)
}

func TestDeclinedConfirmationSendsNoRequest(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("2")
	tab := accountsTab(t, h)
	first := tab.list.Items[0]

	h.press("d")
	require.NotNil(t, h.top())
	h.press("n")

	assert.Nil(t, h.top())
	assert.Equal(t, 3, tab.list.Len())
	assert.Zero(t, h.srv.Requests("DELETE", fmt.Sprintf("/accounts/%d", first.ID)))
}

func TestFilterAppliesAtomically(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()
	before := tab.filter
	total := tab.list.Len()
	require.Equal(t, 6, total)
	require.NotNil(t, tab.stats)
	prevStats := *tab.stats

	h.srv.Fail("GET", "/transactions/statistics", 500, 1)
	h.send(filterChosenMsg{tab: tabTransactions, filter: before.WithMonth(2)})

	assert.Equal(t, before, tab.filter)
	assert.Equal(t, total, tab.list.Len())
	assert.Equal(t, state.StatusFailed, tab.list.Status)
	assert.Equal(t, prevStats, *tab.stats)
	assert.True(t, h.m.statusErr)

	h.send(filterChosenMsg{tab: tabTransactions, filter: before.WithMonth(2)})
	assert.Equal(t, 2, tab.filter.Mese)
	require.Equal(t, 1, tab.list.Len())
	assert.Equal(t, "Cena", tab.list.Items[0].Descrizione)
	assert.Equal(t, "25", tab.stats.Spese.String())
}

func TestFilterScreenAppliesAndTabsStayLive(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()

	h.press("f")
	_, ok := h.top().(*filterScreen)
	require.True(t, ok)

	// results addressed to a tab reach it while the screen is open
	selectors := h.srv.Requests("GET", "/tags")
	h.hub.Publish(events.TagChanged)
	h.pump(1)
	assert.Equal(t, selectors+1, h.srv.Requests("GET", "/tags"))
	_, ok = h.top().(*filterScreen)
	require.True(t, ok)

	h.press("tab")
	h.typeText("13")
	h.press("enter")
	assert.Equal(t, "Mese non valido", h.top().(*filterScreen).err)

	h.press("backspace")
	h.press("enter")
	assert.Nil(t, h.top())
	assert.Equal(t, 1, tab.filter.Mese)
	assert.Equal(t, 0, tab.list.Len())
	assert.Contains(t, h.view(), "Nessuna operazione")

	h.press("x")
	assert.False(t, tab.filter.Active())
	assert.Equal(t, 6, tab.list.Len())
}

func TestPageNavigationKeepsStatistics(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true, perPage: 2})
	tab := h.transactionsTab()
	require.Equal(t, 2, tab.list.Len())
	assert.Contains(t, h.view(), "Pagina [1] 2 3")

	lists := h.srv.Requests("GET", "/transactions")
	stats := h.srv.Requests("GET", "/transactions/statistics")

	h.press("l")
	assert.Equal(t, 2, tab.filter.Page)
	assert.Equal(t, lists+1, h.srv.Requests("GET", "/transactions"))
	assert.Equal(t, stats, h.srv.Requests("GET", "/transactions/statistics"))
	assert.Contains(t, h.view(), "Pagina 1 [2] 3")

	h.press("h")
	h.press("h")
	assert.Equal(t, 1, tab.filter.Page)
	assert.Equal(t, lists+2, h.srv.Requests("GET", "/transactions"))
}

func TestDeleteTransferRefetchesList(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()
	idx := indexOf(tab.list.Items, func(tx api.Transaction) bool {
		return tx.IsTransfer() && tx.Descrizione == "Accantonamento" && tx.Importo.IsNegative()
	})
	require.GreaterOrEqual(t, idx, 0)
	tab.cursor = idx

	lists := h.srv.Requests("GET", "/transactions")
	stats := h.srv.Requests("GET", "/transactions/statistics")
	h.press("d")
	confirm, ok := h.top().(*confirmScreen)
	require.True(t, ok)
	assert.Equal(t, transferWarning, confirm.warning)
	h.press("y")

	assert.Equal(t, lists+1, h.srv.Requests("GET", "/transactions"))
	assert.Equal(t, stats+1, h.srv.Requests("GET", "/transactions/statistics"))
	assert.Equal(t, -1, indexOf(tab.list.Items, func(tx api.Transaction) bool { return tx.IsTransfer() }))
	assert.Equal(t, 4, tab.list.Len())

	// a plain movement only refreshes the totals
	tab.cursor = indexOf(tab.list.Items, func(tx api.Transaction) bool { return tx.Descrizione == "Cena" })
	h.press("d")
	assert.Empty(t, h.top().(*confirmScreen).warning)
	h.press("y")
	assert.Equal(t, lists+1, h.srv.Requests("GET", "/transactions"))
	assert.Equal(t, stats+2, h.srv.Requests("GET", "/transactions/statistics"))
	assert.Equal(t, 3, tab.list.Len())
}

func TestOnlyNewestFilterResponseApplies(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()
	base := tab.filter
	cena := func(tx api.Transaction) bool { return tx.Descrizione == "Cena" }

	first := h.hold(h.apply(filterChosenMsg{tab: tabTransactions, filter: base.WithMonth(2)}))
	require.Len(t, first, 1)
	h.send(filterChosenMsg{tab: tabTransactions, filter: base.WithMonth(3)})
	require.Equal(t, 3, tab.filter.Mese)
	rows, spese := tab.list.Len(), tab.stats.Spese.String()

	h.deliver(first)
	assert.Equal(t, 3, tab.filter.Mese)
	assert.Equal(t, rows, tab.list.Len())
	assert.False(t, tab.list.Contains(cena))
	assert.Equal(t, spese, tab.stats.Spese.String())
}

func TestStatisticsFromBeforeFilterChangeAreDropped(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()
	idx := indexOf(tab.list.Items, func(tx api.Transaction) bool { return tx.Descrizione == "Supermercato" })
	require.GreaterOrEqual(t, idx, 0)

	del := h.hold(h.apply(confirmedMsg{tab: tabTransactions, id: tab.list.Items[idx].ID}))
	require.Len(t, del, 1)
	// totals for the unfiltered list, still on their way
	stale := h.hold(h.apply(del[0]))
	require.Len(t, stale, 1)

	h.send(filterChosenMsg{tab: tabTransactions, filter: tab.filter.WithMonth(2)})
	require.Equal(t, 1, tab.list.Len())
	require.Equal(t, "25", tab.stats.Spese.String())

	h.deliver(stale)
	assert.Equal(t, 2, tab.filter.Mese)
	assert.Equal(t, 1, tab.list.Len())
	assert.Equal(t, "25", tab.stats.Spese.String())
}

func TestDeleteInFlightWithListFetchRefreshesTotals(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()
	idx := indexOf(tab.list.Items, func(tx api.Transaction) bool { return tx.Descrizione == "Supermercato" })
	require.GreaterOrEqual(t, idx, 0)

	del := h.hold(h.apply(confirmedMsg{tab: tabTransactions, id: tab.list.Items[idx].ID}))
	require.Len(t, del, 1)
	lists := h.srv.Requests("GET", "/transactions")
	pending := h.apply(savedMsg{tab: tabTransactions})

	// the delete lands while the list fetch is out: both are reissued
	h.drain(h.apply(del[0]))
	assert.Equal(t, lists+1, h.srv.Requests("GET", "/transactions"))
	h.drain(pending)
	assert.Equal(t, 5, tab.list.Len())
	assert.Equal(t, "525", tab.stats.Spese.String())
}

func TestRefreshKeepsPendingFilterChange(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	tab := h.transactionsTab()

	held := h.apply(filterChosenMsg{tab: tabTransactions, filter: tab.filter.WithMonth(2)})
	h.send(savedMsg{tab: tabTransactions})
	h.drain(held)

	assert.Equal(t, 2, tab.filter.Mese)
	require.Equal(t, 1, tab.list.Len())
	assert.Equal(t, "Cena", tab.list.Items[0].Descrizione)
	assert.Equal(t, "25", tab.stats.Spese.String())
}

func TestPagingWaitsForPendingFilterChange(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true, perPage: 2})
	tab := h.transactionsTab()
	lists := h.srv.Requests("GET", "/transactions")

	held := h.apply(filterChosenMsg{tab: tabTransactions, filter: tab.filter.WithYear(2025)})
	h.press("l")
	h.drain(held)

	assert.Equal(t, lists+1, h.srv.Requests("GET", "/transactions"))
	assert.Equal(t, 2025, tab.filter.Anno)
	assert.Equal(t, 1, tab.filter.Page)
}

func TestRefreshDuringDeleteKeepsRowHidden(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("2")
	tab := accountsTab(t, h)
	vuoto := func(a api.Account) bool { return a.Nome == "Vuoto" }
	id := h.accountID("Vuoto")
	h.srv.Fail("DELETE", fmt.Sprintf("/accounts/%d", id), 500, 1)

	// failed delete: the row comes back exactly once
	del := h.apply(confirmedMsg{tab: tabAccounts, id: id})
	h.send(savedMsg{tab: tabAccounts})
	assert.Equal(t, 2, tab.list.Len())
	assert.False(t, tab.list.Contains(vuoto))
	h.drain(del)
	assert.Equal(t, 3, tab.list.Len())
	assert.Len(t, filterAccounts(tab.list.Items, vuoto), 1)

	// successful delete: a refresh taken before it stays without the row
	del = h.apply(confirmedMsg{tab: tabAccounts, id: id})
	h.send(savedMsg{tab: tabAccounts})
	assert.False(t, tab.list.Contains(vuoto))
	h.drain(del)
	assert.Equal(t, 2, tab.list.Len())
	assert.False(t, tab.list.Contains(vuoto))
	assert.Empty(t, tab.pending)
}

func filterAccounts(items []api.Account, match func(api.Account) bool) []api.Account {
	var out []api.Account
	for _, a := range items {
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	endpoint := h.client.Endpoint()
	require.NoError(t, h.tokens.StoreToken(endpoint, "stale"))
	require.Positive(t, h.hub.Subscribers())

	h.srv.Fail("GET", "/accounts", 401, 10)
	h.press("r")

	login, ok := h.top().(*loginScreen)
	require.True(t, ok)
	assert.Equal(t, "Sessione scaduta, accedi di nuovo", login.notice)
	assert.Empty(t, h.m.tabs)
	assert.False(t, h.client.HasToken())
	assert.Empty(t, h.tokens.get(endpoint))
	assert.Zero(t, h.hub.Subscribers())
}

func TestLoginStartsSession(t *testing.T) {
	h := newFlow(t, flowOptions{})
	_, ok := h.top().(*loginScreen)
	require.True(t, ok)
	assert.Empty(t, h.m.tabs)

	h.typeText("demo@test.it")
	h.press("tab")
	h.typeText("password123")
	h.press("enter")

	assert.Nil(t, h.top())
	require.Len(t, h.m.tabs, 4)
	assert.True(t, h.client.HasToken())
	assert.NotEmpty(t, h.tokens.get(h.client.Endpoint()))
	assert.Contains(t, h.view(), "Demo")
	assert.Equal(t, 6, h.transactionsTab().list.Len())
}

func TestLoginErrors(t *testing.T) {
	h := newFlow(t, flowOptions{})
	login := h.top().(*loginScreen)

	h.press("enter")
	assert.Equal(t, state.PhaseFailed, login.sub.Phase)
	assert.Equal(t, "Email obbligatoria", login.errs["email"])
	assert.Zero(t, h.srv.Requests("POST", "/auth/login"))

	h.typeText("demo@test.it")
	h.press("tab")
	h.typeText("sbagliata")
	h.press("enter")
	assert.Equal(t, 1, h.srv.Requests("POST", "/auth/login"))
	assert.Equal(t, state.MsgBadCredentials, login.sub.Message)
	assert.Empty(t, h.m.tabs)
}

func TestRegisterValidatesBeforeRequest(t *testing.T) {
	h := newFlow(t, flowOptions{})
	h.press("ctrl+r")
	login := h.top().(*loginScreen)
	require.True(t, login.register)

	h.typeText("Nuovo")
	h.press("tab")
	h.typeText("nuovo@test.it")
	h.press("tab")
	h.typeText("corta")
	h.press("tab")
	h.typeText("corta")
	h.press("enter")
	assert.Equal(t, "La password deve contenere almeno 8 caratteri", login.errs["password"])
	assert.Zero(t, h.srv.Requests("POST", "/auth/register"))
}

func TestExpiredStoredTokenShowsLogin(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	require.Len(t, h.m.tabs, 4)

	h.srv.Fail("GET", "/auth/me", 401, 1)
	h.m.user = nil
	h.drain(h.m.Init())

	_, ok := h.top().(*loginScreen)
	assert.True(t, ok)
	assert.Empty(t, h.m.tabs)
}

func TestLogoutReleasesSubscriptions(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	require.Positive(t, h.hub.Subscribers())

	h.press("L")

	_, ok := h.top().(*loginScreen)
	require.True(t, ok)
	assert.Equal(t, 1, h.srv.Requests("POST", "/auth/logout"))
	assert.Zero(t, h.hub.Subscribers())
	assert.False(t, h.client.HasToken())
}

func TestTransactionFormRequiresFields(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("n")
	form, ok := h.top().(*transactionFormScreen)
	require.True(t, ok)
	require.False(t, form.loading)
	assert.Equal(t, "15/03/2025", form.fields.value("data_operazione"))

	h.press("ctrl+s")
	assert.Equal(t, state.MsgTransactionRequired, form.sub.Message)
	assert.NotEmpty(t, form.errs["importo"])
	assert.NotEmpty(t, form.errs["tags"])
	assert.Zero(t, h.srv.Requests("POST", "/transactions"))
	assert.Same(t, form, h.top())
}

func TestTransactionFormCreatesAndPublishesOnce(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	sub := h.hub.Subscribe(events.TransactionChanged)
	defer sub.Unsubscribe()

	h.press("n")
	form := h.top().(*transactionFormScreen)
	h.press("tab")
	h.typeText("-12,50")
	for i := 0; i < 4; i++ {
		h.press("tab")
	}
	h.typeText("spe")
	require.NotEmpty(t, form.suggestions())
	h.press("enter")
	require.Len(t, form.picker.Selected, 1)
	assert.Equal(t, "Spesa", form.picker.Selected[0].Nome)

	h.press("ctrl+s")

	assert.Nil(t, h.top())
	assert.Equal(t, 1, h.srv.Requests("POST", "/transactions"))
	assert.Equal(t, 1, countSignals(sub, 100*time.Millisecond))
	assert.Equal(t, 7, h.transactionsTab().list.Len())
	assert.Equal(t, "Operazione creato con successo", h.m.status)
}

func TestSavedFilterRoundTrip(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true, filters: true})
	tab := h.transactionsTab()
	h.send(filterChosenMsg{tab: tabTransactions, filter: tab.filter.WithYear(2025).WithMonth(3)})
	require.Equal(t, 3, tab.filter.Mese)

	h.press("s")
	_, ok := h.top().(*promptScreen)
	require.True(t, ok)
	h.typeText("marzo")
	h.press("enter")
	assert.Nil(t, h.top())
	assert.Contains(t, h.m.status, "salvato")

	h.press("x")
	assert.Zero(t, tab.filter.Mese)

	h.press("o")
	picker, ok := h.top().(*pickerScreen)
	require.True(t, ok)
	require.Len(t, picker.items, 1)
	assert.Equal(t, "marzo", picker.items[0].name)
	h.press("enter")
	assert.Equal(t, 3, tab.filter.Mese)
	assert.Equal(t, 2025, tab.filter.Anno)

	h.press("o")
	h.press("ctrl+d")
	assert.Contains(t, h.m.status, "eliminato")
	h.press("o")
	assert.Empty(t, h.top().(*pickerScreen).items)
}

func TestSavedFiltersUnavailableWithoutStore(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("s")
	assert.Nil(t, h.top())
	assert.True(t, h.m.statusErr)
}

func TestChartsTab(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("4")
	view := h.view()
	assert.Contains(t, view, "Spese per tag")
	assert.Contains(t, view, "Casa")

	h.press("v")
	assert.Contains(t, h.view(), "Entrate e uscite")
	h.press("v")
	assert.Contains(t, h.view(), "Seleziona un conto")
	assert.Zero(t, h.srv.Requests("GET", "/charts/balance-over-time"))

	h.press("a")
	assert.Equal(t, 1, h.srv.Requests("GET", "/charts/balance-over-time"))
	assert.NotContains(t, h.view(), "Seleziona un conto")

	expense := h.srv.Requests("GET", "/charts/expense-by-tag")
	h.hub.Publish(events.TransactionChanged)
	h.pump(3)
	assert.Equal(t, expense+1, h.srv.Requests("GET", "/charts/expense-by-tag"))

	h.press("x")
	tab := h.m.tab(tabCharts).(*chartsTab)
	assert.Zero(t, tab.filter.AccountID)
	assert.Equal(t, 31, tab.filter.Days())
}

func TestChartRangePrompt(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("4")
	h.press("c")
	h.typeText("10/03/2025 - 01/03/2025")
	h.press("enter")
	tab := h.m.tab(tabCharts).(*chartsTab)
	assert.Equal(t, "2025-03-01", tab.filter.Start.Format(api.DateLayout))
	assert.Equal(t, "2025-03-10", tab.filter.End.Format(api.DateLayout))
}

func TestChartsRefreshKeepsPendingPreset(t *testing.T) {
	h := newFlow(t, flowOptions{loggedIn: true})
	h.press("4")
	tab := h.m.tab(tabCharts).(*chartsTab)

	held := h.apply(keyMsg("p"))
	h.send(signalMsg{tab: tabCharts, stream: "reports"})
	h.drain(held)

	want := state.DefaultChartFilter(flowNow).WithPreset(state.PresetThisMonth, flowNow)
	assert.Equal(t, want.Start, tab.filter.Start)
	assert.Equal(t, want.End, tab.filter.End)
}

func TestCycleID(t *testing.T) {
	ids := []int64{4, 7}
	assert.Equal(t, int64(4), cycleID(ids, 0))
	assert.Equal(t, int64(7), cycleID(ids, 4))
	assert.Equal(t, int64(0), cycleID(ids, 7))
	assert.Equal(t, int64(0), cycleID(nil, 0))
}
