package fakeapi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/mybudget/internal/api"
)

const (
	defaultPerPage   = 50
	defaultChartDays = 30
)

func parseDate(s string) (time.Time, error) {
	return time.Parse(api.DateLayout, s)
}

// chartRange resolves the requested window, defaulting to the last 30 days.
func chartRange(q api.ChartQuery, now time.Time) (time.Time, time.Time) {
	end, err := parseDate(q.EndDate)
	if err != nil {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	start, err := parseDate(q.StartDate)
	if err != nil {
		start = end.AddDate(0, 0, -defaultChartDays)
	}
	return start, end
}

func (s *store) chartMovements(q api.ChartQuery, now time.Time, includeTransfers bool) []api.Transaction {
	start, end := chartRange(q, now)
	out := make([]api.Transaction, 0)
	for _, t := range s.txs {
		if t.IsTransfer() && !includeTransfers {
			continue
		}
		d, err := t.Date()
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		if q.AccountID > 0 && t.ContoID != q.AccountID {
			continue
		}
		if q.TagID > 0 && !hasTag(t.Transaction, q.TagID) {
			continue
		}
		out = append(out, t.Transaction)
	}
	return out
}

// expenseByTag totals outgoing movements per tag. A movement with several
// tags counts toward each of them.
func (s *store) expenseByTag(q api.ChartQuery, now time.Time) api.ExpenseByTagReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTag := map[int64]*api.TagExpense{}
	total := decimal.Zero
	for _, t := range s.chartMovements(q, now, false) {
		if !t.Importo.IsNegative() {
			continue
		}
		amount := t.Importo.Abs()
		total = total.Add(amount)
		for _, tag := range t.Tags {
			row, ok := byTag[tag.ID]
			if !ok {
				row = &api.TagExpense{ID: tag.ID, Nome: tag.Nome}
				byTag[tag.ID] = row
			}
			row.Totale = row.Totale.Add(amount)
			row.NumOperazioni++
		}
	}
	rows := make([]api.TagExpense, 0, len(byTag))
	for _, r := range byTag {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Totale.Cmp(rows[j].Totale); c != 0 {
			return c > 0
		}
		return rows[i].Nome < rows[j].Nome
	})
	return api.ExpenseByTagReport{Rows: rows, TotaleGenerale: total}
}

func (s *store) incomeVsExpense(q api.ChartQuery, now time.Time) api.IncomeVsExpenseReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := map[string]*api.MonthlyFlow{}
	for _, t := range s.chartMovements(q, now, false) {
		mese := t.DataOperazione[:7]
		row, ok := byMonth[mese]
		if !ok {
			row = &api.MonthlyFlow{Mese: mese}
			byMonth[mese] = row
		}
		if t.Importo.IsPositive() {
			row.Guadagni = row.Guadagni.Add(t.Importo)
		} else {
			row.Spese = row.Spese.Add(t.Importo.Abs())
		}
	}
	r := api.IncomeVsExpenseReport{Rows: make([]api.MonthlyFlow, 0, len(byMonth))}
	for _, row := range byMonth {
		row.SaldoNetto = row.Guadagni.Sub(row.Spese)
		r.Rows = append(r.Rows, *row)
		r.Totals.TotaleGuadagni = r.Totals.TotaleGuadagni.Add(row.Guadagni)
		r.Totals.TotaleSpese = r.Totals.TotaleSpese.Add(row.Spese)
	}
	sort.Slice(r.Rows, func(i, j int) bool { return r.Rows[i].Mese < r.Rows[j].Mese })
	r.Totals.SaldoNetto = r.Totals.TotaleGuadagni.Sub(r.Totals.TotaleSpese)
	r.Totals.NumMesi = len(r.Rows)
	return r
}

// balanceOverTime returns the closing balance of every day with movements
// in the window, starting from the balance before it.
func (s *store) balanceOverTime(q api.ChartQuery, now time.Time) (api.BalanceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[q.AccountID]
	if !ok {
		return api.BalanceReport{}, fieldErrors{"account_id": {"Selezionare un conto."}}
	}
	start, end := chartRange(q, now)

	opening := decimal.Zero
	daily := map[string]decimal.Decimal{}
	for _, t := range s.txs {
		if t.ContoID != a.ID {
			continue
		}
		d, err := t.Date()
		if err != nil || d.After(end) {
			continue
		}
		if d.Before(start) {
			opening = opening.Add(t.Importo)
			continue
		}
		daily[t.DataOperazione] = daily[t.DataOperazione].Add(t.Importo)
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	r := api.BalanceReport{Account: &api.AccountRef{ID: a.ID, Nome: a.Nome}, Rows: make([]api.BalancePoint, 0, len(days))}
	running := opening
	lo, hi := opening, opening
	for _, d := range days {
		running = running.Add(daily[d])
		r.Rows = append(r.Rows, api.BalancePoint{Data: d, Saldo: running})
		lo = decimal.Min(lo, running)
		hi = decimal.Max(hi, running)
	}
	r.Stats = api.BalanceStats{
		SaldoIniziale: opening,
		SaldoFinale:   running,
		Variazione:    running.Sub(opening),
		SaldoMinimo:   lo,
		SaldoMassimo:  hi,
		NumGiorni:     int(end.Sub(start).Hours()/24) + 1,
	}
	return r, nil
}
