package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/database/repository"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
	"github.com/jask/mybudget/internal/tui/widgets"
)

const (
	tabTransactions = "transactions"

	streamBalances  = "balances"
	streamSelectors = "selectors"

	transferWarning = "È un trasferimento: verrà eliminata anche l'operazione collegata sull'altro conto."
)

// transactionsPage is one atomic list fetch. stats is nil for page moves.
type transactionsPage struct {
	filter state.TransactionFilter
	page   api.Page[api.Transaction]
	stats  *api.Statistics
}

type balanceRows []api.Account

type selectorData struct {
	accounts []api.Account
	tags     []api.Tag
}

type transactionsTab struct {
	deps     Deps
	sc       *scope.Scope
	subs     subscriptions
	filter   state.TransactionFilter // shown
	want     state.TransactionFilter // last requested
	list     state.ListState[api.Transaction]
	stats    *api.Statistics
	balances balanceRows
	accounts []api.Account
	tags     []api.Tag
	saved    []repository.SavedFilter
	cursor   int
	pending  map[int64]state.Removed[api.Transaction]
}

func newTransactionsTab(deps Deps) *transactionsTab {
	return &transactionsTab{
		deps:    deps,
		sc:      scope.New(context.Background()),
		filter:  state.NewTransactionFilter(deps.PerPage),
		want:    state.NewTransactionFilter(deps.PerPage),
		pending: map[int64]state.Removed[api.Transaction]{},
	}
}

func (t *transactionsTab) ID() string    { return tabTransactions }
func (t *transactionsTab) Title() string { return "Operazioni" }
func (t *transactionsTab) Scope() string { return scopeTransactions }

func (t *transactionsTab) Init(m *Model) tea.Cmd {
	if len(t.subs) == 0 {
		t.subs.add(t.deps.Hub, tabTransactions, streamBalances, t.deps.Send, events.TransactionChanged, events.AccountChanged)
		t.subs.add(t.deps.Hub, tabTransactions, streamSelectors, t.deps.Send, events.AccountChanged, events.TagChanged)
	}
	return tea.Batch(t.load(t.want, true), t.fetchBalances(), t.fetchSelectors())
}

func (t *transactionsTab) Close() {
	t.sc.Close()
	t.subs.release()
}

// load fetches the list, and the statistics when withStats, for f. Both
// requests run together and are applied together. A statistics-only
// fetch still running is for an older filter and is dropped.
func (t *transactionsTab) load(f state.TransactionFilter, withStats bool) tea.Cmd {
	t.want = f
	if withStats {
		t.sc.Cancel("stats")
	}
	t.list = t.list.Loading()
	client := t.deps.Client
	return run(t.sc, tabTransactions, "list", func(ctx context.Context) (transactionsPage, error) {
		out := transactionsPage{filter: f}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			page, err := client.ListTransactions(gctx, f.Query())
			out.page = page
			return err
		})
		if withStats {
			g.Go(func() error {
				st, err := client.Statistics(gctx, f.Query())
				out.stats = &st
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return transactionsPage{}, err
		}
		return out, nil
	})
}

func (t *transactionsTab) fetchStats() tea.Cmd {
	client, q := t.deps.Client, t.want.Query()
	return run(t.sc, tabTransactions, "stats", func(ctx context.Context) (api.Statistics, error) {
		return client.Statistics(ctx, q)
	})
}

func (t *transactionsTab) fetchBalances() tea.Cmd {
	client := t.deps.Client
	return run(t.sc, tabTransactions, streamBalances, func(ctx context.Context) (balanceRows, error) {
		return client.ListAccounts(ctx)
	})
}

func (t *transactionsTab) fetchSelectors() tea.Cmd {
	client := t.deps.Client
	return run(t.sc, tabTransactions, streamSelectors, func(ctx context.Context) (selectorData, error) {
		var out selectorData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			out.accounts, err = client.ListAccounts(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.tags, err = client.ListTags(gctx)
			return err
		})
		err := g.Wait()
		return out, err
	})
}

func (t *transactionsTab) Update(m *Model, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case result[transactionsPage]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			t.want = t.filter
			return t.failed(m, &t.list, msg.err)
		}
		t.filter = msg.val.filter
		t.list = t.list.Loaded(msg.val.page.Items, msg.val.page.Pagination).Without(t.isPending)
		if msg.val.stats != nil {
			t.stats = msg.val.stats
		}
		t.clampCursor()
		return nil
	case result[api.Statistics]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			return t.failed(m, nil, msg.err)
		}
		st := msg.val
		t.stats = &st
		return nil
	case result[balanceRows]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			return t.failed(m, nil, msg.err)
		}
		t.balances = msg.val
		return nil
	case result[selectorData]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			return t.failed(m, nil, msg.err)
		}
		t.accounts, t.tags = msg.val.accounts, msg.val.tags
		return nil
	case result[deleted]:
		return t.deleteDone(m, msg)
	case signalMsg:
		switch msg.stream {
		case streamBalances:
			return t.fetchBalances()
		case streamSelectors:
			return t.fetchSelectors()
		}
		return nil
	case savedMsg:
		return t.load(t.want, true)
	case filterChosenMsg:
		return t.load(msg.filter, true)
	case confirmedMsg:
		return t.delete(m, msg.id)
	case promptMsg:
		return t.saveFilter(m, msg.value)
	case result[[]repository.SavedFilter]:
		return t.openSavedFilters(m, msg)
	case result[repository.SavedFilter]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			m.SetError("Errore: " + msg.err.Error())
			return nil
		}
		m.SetStatus(fmt.Sprintf("Filtro %q salvato", msg.val.Name))
		return nil
	case pickedMsg:
		return t.savedFilterPicked(m, msg)
	case result[savedFilterDeleted]:
		return t.savedFilterRemoved(m, msg)
	case tea.KeyMsg:
		return t.handleKey(m, msg)
	}
	return nil
}

// failed reports err; a list keeps its previous items.
func (t *transactionsTab) failed(m *Model, list *state.ListState[api.Transaction], err error) tea.Cmd {
	if isAuthErr(err) {
		return requireLogin
	}
	if list != nil {
		*list = list.Failed(err)
	}
	t.deps.Log.Warn("transactions fetch failed", "err", err)
	m.SetError(loadErrorMessage(err))
	return nil
}

func (t *transactionsTab) handleKey(m *Model, msg tea.KeyMsg) tea.Cmd {
	keys, sc := m.keys, scopeTransactions
	switch {
	case keys.IsAction(msg, actDown, sc):
		t.cursor = min(t.cursor+1, max(0, t.list.Len()-1))
	case keys.IsAction(msg, actUp, sc):
		t.cursor = max(t.cursor-1, 0)
	case keys.IsAction(msg, actPageNext, sc):
		return t.goToPage(t.want.Page + 1)
	case keys.IsAction(msg, actPagePrev, sc):
		return t.goToPage(t.want.Page - 1)
	case keys.IsAction(msg, actRefresh, sc):
		return tea.Batch(t.load(t.want, true), t.fetchBalances(), t.fetchSelectors())
	case keys.IsAction(msg, actFilter, sc):
		return m.PushScreen(newFilterScreen(t.deps, tabTransactions, t.want, t.accounts, t.tags))
	case keys.IsAction(msg, actClearFilter, sc):
		if !t.want.Active() {
			return nil
		}
		return t.load(t.want.Cleared(), true)
	case keys.IsAction(msg, actSaveFilter, sc):
		if t.deps.Filters == nil {
			m.SetError("Filtri salvati non disponibili")
			return nil
		}
		return m.PushScreen(newPromptScreen(tabTransactions, "Salva filtro", "Nome"))
	case keys.IsAction(msg, actLoadFilter, sc):
		return t.listSavedFilters(m)
	case keys.IsAction(msg, actNew, sc):
		return m.PushScreen(newTransactionForm(t.deps, tabTransactions, nil))
	case keys.IsAction(msg, actEdit, sc):
		if tx, ok := t.selected(); ok {
			return m.PushScreen(newTransactionForm(t.deps, tabTransactions, &tx))
		}
	case keys.IsAction(msg, actDelete, sc):
		if tx, ok := t.selected(); ok {
			warning := ""
			if tx.IsTransfer() {
				warning = transferWarning
			}
			return m.PushScreen(newConfirmScreen(tabTransactions, tx.ID, "Elimina operazione",
				fmt.Sprintf("Eliminare l'operazione %q di %s?", describe(tx), t.deps.Money.Format(tx.Importo)), warning))
		}
	}
	return nil
}

// goToPage refetches only the list; statistics do not depend on the page.
// Paging waits for a pending filter change, whose page count is unknown.
func (t *transactionsTab) goToPage(page int) tea.Cmd {
	if !t.want.SameFilters(t.filter) {
		return nil
	}
	w := state.NewPageWindow(t.list.Pagination)
	target, ok := w.Target(page)
	if !ok {
		// back to the shown page while another page is still loading
		if !w.Visible() || page != w.Current || t.want.Page == page {
			return nil
		}
		target = page
	}
	return t.load(t.want.WithPage(target), false)
}

func (t *transactionsTab) delete(m *Model, id int64) tea.Cmd {
	next, removed, ok := t.list.Remove(hasTransactionID(id))
	if !ok {
		return nil
	}
	t.list = next
	t.pending[id] = removed
	t.clampCursor()
	m.SetStatus("Eliminazione...")
	client := t.deps.Client
	return run(t.sc, tabTransactions, fmt.Sprintf("delete:%d", id), func(ctx context.Context) (deleted, error) {
		return deleted{id: id}, client.DeleteTransaction(ctx, id)
	})
}

func (t *transactionsTab) deleteDone(m *Model, msg result[deleted]) tea.Cmd {
	if !t.sc.Finish(msg.tok) {
		return nil
	}
	removed, ok := t.pending[msg.val.id]
	delete(t.pending, msg.val.id)
	if msg.err != nil {
		if ok && !t.list.Contains(hasTransactionID(msg.val.id)) {
			t.list = t.list.Restore(removed)
		}
		if isAuthErr(msg.err) {
			return requireLogin
		}
		t.deps.Log.Warn("delete transaction failed", "id", msg.val.id, "err", msg.err)
		m.SetError(state.DeleteErrorMessage(msg.err))
		return nil
	}
	publish(t.deps.Hub, events.TransactionChanged)
	m.SetStatus("Operazione eliminata")
	// the paired movement of a transfer may sit on this page too, and a
	// list fetch in flight may carry totals from before the delete
	if ok && removed.Item.IsTransfer() || t.sc.Pending("list") {
		return t.load(t.want, true)
	}
	return t.fetchStats()
}

func (t *transactionsTab) isPending(tx api.Transaction) bool {
	_, ok := t.pending[tx.ID]
	return ok
}

func hasTransactionID(id int64) func(api.Transaction) bool {
	return func(tx api.Transaction) bool { return tx.ID == id }
}

func (t *transactionsTab) selected() (api.Transaction, bool) {
	if t.cursor < 0 || t.cursor >= t.list.Len() {
		return api.Transaction{}, false
	}
	return t.list.Items[t.cursor], true
}

func (t *transactionsTab) clampCursor() {
	t.cursor = max(0, min(t.cursor, t.list.Len()-1))
}

func (t *transactionsTab) accountName(id int64) string {
	for _, a := range t.accounts {
		if a.ID == id {
			return a.Nome
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (t *transactionsTab) tagName(id int64) string {
	for _, tag := range t.tags {
		if tag.ID == id {
			return tag.Nome
		}
	}
	return fmt.Sprintf("#%d", id)
}

func describe(tx api.Transaction) string {
	if tx.Descrizione != "" {
		return tx.Descrizione
	}
	return tx.DataOperazione
}

func (t *transactionsTab) Build(m *Model) widgets.Widget {
	return widgets.HStack{
		Widgets: []widgets.Widget{
			widgets.Pane{Title: "Operazioni", Content: t.listBody(m), Focused: true},
			widgets.Pane{Title: "Saldi", Content: t.balancesBody()},
		},
		Ratios: []float64{3, 1},
		Gap:    1,
	}
}

func (t *transactionsTab) listBody(m *Model) string {
	lines := []string{
		mutedStyle.Render("Filtri: " + t.filter.Describe(t.accountName, t.tagName)),
		t.statsLine(),
		"",
	}
	switch {
	case t.list.Status == state.StatusLoading && t.list.Len() == 0:
		lines = append(lines, mutedStyle.Render("Caricamento..."))
	case t.list.Status == state.StatusFailed && t.list.Len() == 0:
		lines = append(lines, errorStyle.Render(loadErrorMessage(t.list.Err)))
	default:
		width := max(40, (m.width-4)*3/4-4)
		height := max(3, m.height-14)
		lines = append(lines, t.table().Render(width, height))
	}
	if w := state.NewPageWindow(t.list.Pagination); w.Visible() {
		lines = append(lines, "", fmt.Sprintf("Pagina %s  (%d operazioni)", w.String(), t.list.Pagination.Total))
	}
	return strings.Join(lines, "\n")
}

func (t *transactionsTab) statsLine() string {
	if t.stats == nil {
		return ""
	}
	return "Entrate " + incomeStyle.Render(t.deps.Money.Format(t.stats.Guadagno)) +
		"  Uscite " + expenseStyle.Render(t.deps.Money.Format(t.stats.Spese)) +
		"  Saldo " + t.deps.Money.Format(t.stats.Saldo)
}

func (t *transactionsTab) table() widgets.Table {
	rows := make([][]string, 0, t.list.Len())
	for _, tx := range t.list.Items {
		day := tx.DataOperazione
		if d, err := tx.Date(); err == nil {
			day = d.Format(t.deps.DateFormat)
		}
		desc := tx.Descrizione
		if tx.IsTransfer() {
			desc = "⇄ " + desc
		}
		conto := ""
		if tx.Conto != nil {
			conto = tx.Conto.Nome
		} else {
			conto = t.accountName(tx.ContoID)
		}
		names := make([]string, 0, len(tx.Tags))
		for _, tag := range tx.Tags {
			names = append(names, tag.Nome)
		}
		rows = append(rows, []string{day, desc, conto, strings.Join(names, ", "), t.deps.Money.Format(tx.Importo)})
	}
	return widgets.Table{
		Columns: []widgets.Column{
			{Title: "Data", Width: 10},
			{Title: "Descrizione"},
			{Title: "Conto", Width: 14},
			{Title: "Tag", Width: 16},
			{Title: "Importo", Width: 14, Right: true},
		},
		Rows:   rows,
		Cursor: t.cursor,
		Empty:  mutedStyle.Render("Nessuna operazione per i filtri correnti."),
	}
}

func (t *transactionsTab) balancesBody() string {
	if len(t.balances) == 0 {
		return mutedStyle.Render("Nessun conto")
	}
	lines := make([]string, 0, len(t.balances))
	for _, a := range t.balances {
		lines = append(lines, a.Nome, "  "+t.deps.Money.FormatPtr(a.SaldoTotale))
	}
	return strings.Join(lines, "\n")
}
