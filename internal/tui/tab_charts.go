package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/charts"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
	"github.com/jask/mybudget/internal/tui/widgets"
)

const tabCharts = "charts"

type chartView int

const (
	viewExpense chartView = iota
	viewFlows
	viewBalance
	chartViews
)

func (v chartView) String() string {
	switch v {
	case viewFlows:
		return "Entrate e uscite"
	case viewBalance:
		return "Saldo nel tempo"
	default:
		return "Spese per tag"
	}
}

// chartReports is one atomic refresh of every chart.
type chartReports struct {
	filter  state.ChartFilter
	expense []charts.Slice
	flows   []charts.MonthGroup
	balance []charts.Point
}

type chartsTab struct {
	deps     Deps
	sc       *scope.Scope
	subs     subscriptions
	filter   state.ChartFilter // shown
	want     state.ChartFilter // last requested
	preset   int
	view     chartView
	accounts []api.Account
	tags     []api.Tag
	reports  *chartReports
	loading  bool
	err      error
}

func newChartsTab(deps Deps) *chartsTab {
	f := state.DefaultChartFilter(deps.Now())
	return &chartsTab{
		deps:   deps,
		sc:     scope.New(context.Background()),
		filter: f,
		want:   f,
		preset: presetIndex(state.PresetLast30),
	}
}

func presetIndex(p state.Preset) int {
	for i, q := range state.Presets {
		if q == p {
			return i
		}
	}
	return 0
}

func (t *chartsTab) ID() string    { return tabCharts }
func (t *chartsTab) Title() string { return "Grafici" }
func (t *chartsTab) Scope() string { return scopeCharts }

func (t *chartsTab) Init(m *Model) tea.Cmd {
	if len(t.subs) == 0 {
		t.subs.add(t.deps.Hub, tabCharts, "reports", t.deps.Send, events.TransactionChanged)
	}
	return tea.Batch(t.fetchOptions(), t.load(t.want))
}

func (t *chartsTab) Close() {
	t.sc.Close()
	t.subs.release()
}

// fetchOptions loads the account and tag selectors once.
func (t *chartsTab) fetchOptions() tea.Cmd {
	client := t.deps.Client
	return run(t.sc, tabCharts, "options", func(ctx context.Context) (selectorData, error) {
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

// load fetches every report for f. The balance report needs an account
// and is skipped otherwise.
func (t *chartsTab) load(f state.ChartFilter) tea.Cmd {
	t.want = f
	t.loading = true
	client, q := t.deps.Client, f.Query()
	return run(t.sc, tabCharts, "reports", func(ctx context.Context) (chartReports, error) {
		out := chartReports{filter: f}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			r, err := client.ExpenseByTag(gctx, q)
			out.expense = charts.ExpenseSlices(r, charts.TopSlices)
			return err
		})
		g.Go(func() error {
			r, err := client.IncomeVsExpense(gctx, q)
			out.flows = charts.MonthlyGroups(r)
			return err
		})
		if f.CanShowBalance() {
			g.Go(func() error {
				r, err := client.BalanceOverTime(gctx, q)
				out.balance = charts.BalanceSeries(r)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return chartReports{}, err
		}
		return out, nil
	})
}

func (t *chartsTab) Update(m *Model, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case result[chartReports]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		t.loading = false
		if msg.err != nil {
			t.want = t.filter
			if isAuthErr(msg.err) {
				return requireLogin
			}
			t.err = msg.err
			t.deps.Log.Warn("charts fetch failed", "err", msg.err)
			m.SetError(loadErrorMessage(msg.err))
			return nil
		}
		r := msg.val
		t.reports, t.filter, t.err = &r, r.filter, nil
		return nil
	case result[selectorData]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return requireLogin
			}
			m.SetError(loadErrorMessage(msg.err))
			return nil
		}
		t.accounts, t.tags = msg.val.accounts, msg.val.tags
		return nil
	case signalMsg:
		return t.load(t.want)
	case promptMsg:
		f, err := parseRange(t.want, msg.value, t.deps.DateFormat)
		if err != nil {
			m.SetError(err.Error())
			return nil
		}
		return t.load(f)
	case tea.KeyMsg:
		return t.handleKey(m, msg)
	}
	return nil
}

func (t *chartsTab) handleKey(m *Model, msg tea.KeyMsg) tea.Cmd {
	keys, sc, now := m.keys, scopeCharts, t.deps.Now()
	switch {
	case keys.IsAction(msg, actPreset, sc):
		t.preset = (t.preset + 1) % len(state.Presets)
		return t.load(t.want.WithPreset(state.Presets[t.preset], now))
	case keys.IsAction(msg, actRange, sc):
		return m.PushScreen(newPromptScreen(tabCharts, "Intervallo", "Dal - al"))
	case keys.IsAction(msg, actAccount, sc):
		ids := make([]int64, 0, len(t.accounts))
		for _, a := range t.accounts {
			ids = append(ids, a.ID)
		}
		return t.load(t.want.WithAccount(cycleID(ids, t.want.AccountID)))
	case keys.IsAction(msg, actTag, sc):
		ids := make([]int64, 0, len(t.tags))
		for _, tag := range t.tags {
			ids = append(ids, tag.ID)
		}
		return t.load(t.want.WithTag(cycleID(ids, t.want.TagID)))
	case keys.IsAction(msg, actView, sc):
		t.view = (t.view + 1) % chartViews
	case keys.IsAction(msg, actReset, sc):
		t.preset = presetIndex(state.PresetLast30)
		return t.load(t.want.Reset(now))
	case keys.IsAction(msg, actRefresh, sc):
		return tea.Batch(t.fetchOptions(), t.load(t.want))
	}
	return nil
}

// cycleID steps through none, ids[0], ids[1], ... and back to none.
func cycleID(ids []int64, cur int64) int64 {
	if cur == 0 {
		if len(ids) == 0 {
			return 0
		}
		return ids[0]
	}
	for i, id := range ids {
		if id == cur {
			if i+1 < len(ids) {
				return ids[i+1]
			}
			return 0
		}
	}
	return 0
}

// parseRange reads "start - end" in the display or wire date layout.
func parseRange(f state.ChartFilter, s, dateFormat string) (state.ChartFilter, error) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return f, fmt.Errorf("intervallo non valido: usa gg/mm/aaaa - gg/mm/aaaa")
	}
	start, err := state.ParseDate(parts[0], dateFormat)
	if err != nil {
		return f, fmt.Errorf("data iniziale non valida")
	}
	end, err := state.ParseDate(parts[1], dateFormat)
	if err != nil {
		return f, fmt.Errorf("data finale non valida")
	}
	return f.WithRange(start, end)
}

func (t *chartsTab) name(id int64, accounts bool) string {
	if id == 0 {
		return "tutti"
	}
	if accounts {
		for _, a := range t.accounts {
			if a.ID == id {
				return a.Nome
			}
		}
	} else {
		for _, tag := range t.tags {
			if tag.ID == id {
				return tag.Nome
			}
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (t *chartsTab) Build(m *Model) widgets.Widget {
	return widgets.Pane{Title: t.view.String(), Content: t.body(m), Focused: true}
}

func (t *chartsTab) body(m *Model) string {
	df := t.deps.DateFormat
	header := fmt.Sprintf("Periodo %s - %s (%d giorni) · Conto %s · Tag %s",
		t.filter.Start.Format(df), t.filter.End.Format(df), t.filter.Days(),
		t.name(t.filter.AccountID, true), t.name(t.filter.TagID, false))
	lines := []string{mutedStyle.Render(header), ""}

	width, height := max(30, m.width-6), max(8, m.height-12)
	switch {
	case t.reports == nil && t.loading:
		lines = append(lines, mutedStyle.Render("Caricamento..."))
	case t.reports == nil && t.err != nil:
		lines = append(lines, errorStyle.Render(loadErrorMessage(t.err)))
	case t.reports == nil:
		lines = append(lines, mutedStyle.Render(charts.NoData))
	default:
		lines = append(lines, t.chart(width, height))
	}
	return strings.Join(lines, "\n")
}

func (t *chartsTab) chart(width, height int) string {
	r := t.reports
	switch t.view {
	case viewFlows:
		return charts.RenderMonthlyFlows(r.flows, width, height, t.deps.Money)
	case viewBalance:
		if !r.filter.CanShowBalance() {
			return mutedStyle.Render("Seleziona un conto (a) per vedere il saldo nel tempo.")
		}
		return charts.RenderBalance(r.balance, width, height)
	default:
		return charts.RenderExpenseSlices(r.expense, width, t.deps.Money)
	}
}
