// Package charts turns chart reports into display series and renders
// them for the terminal.
package charts

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/mybudget/internal/api"
)

// TopSlices is how many tags get their own slice before "Altri".
const TopSlices = 10

// OtherLabel names the aggregate of the smaller slices.
const OtherLabel = "Altri"

var hundred = decimal.NewFromInt(100)

// Slice is one share of the expense-by-tag chart.
type Slice struct {
	Label   string
	Total   decimal.Decimal
	Percent decimal.Decimal // of the grand total, one decimal
	Count   int
	TagIDs  []int64
}

// ExpenseSlices sorts rows by total, keeps the first top and folds the
// rest into a single "Altri" slice.
func ExpenseSlices(r api.ExpenseByTagReport, top int) []Slice {
	if top <= 0 {
		top = TopSlices
	}
	rows := append([]api.TagExpense(nil), r.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Totale.Cmp(rows[j].Totale); c != 0 {
			return c > 0
		}
		return rows[i].Nome < rows[j].Nome
	})

	grand := r.TotaleGenerale
	if grand.IsZero() {
		for _, row := range rows {
			grand = grand.Add(row.Totale)
		}
	}
	pct := func(v decimal.Decimal) decimal.Decimal {
		if grand.IsZero() {
			return decimal.Zero
		}
		return v.Div(grand).Mul(hundred).Round(1)
	}

	out := make([]Slice, 0, min(len(rows), top+1))
	var other *Slice
	for i, row := range rows {
		if i < top {
			out = append(out, Slice{
				Label:   row.Nome,
				Total:   row.Totale,
				Percent: pct(row.Totale),
				Count:   row.NumOperazioni,
				TagIDs:  []int64{row.ID},
			})
			continue
		}
		if other == nil {
			other = &Slice{Label: OtherLabel}
		}
		other.Total = other.Total.Add(row.Totale)
		other.Count += row.NumOperazioni
		other.TagIDs = append(other.TagIDs, row.ID)
	}
	if other != nil {
		other.Percent = pct(other.Total)
		out = append(out, *other)
	}
	return out
}

// MonthGroup is one month of income against expense.
type MonthGroup struct {
	Mese       string // YYYY-MM
	Label      string // MM/YYYY
	Guadagni   decimal.Decimal
	Spese      decimal.Decimal
	SaldoNetto decimal.Decimal
}

// MonthlyGroups orders the months chronologically and labels them.
func MonthlyGroups(r api.IncomeVsExpenseReport) []MonthGroup {
	out := make([]MonthGroup, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, MonthGroup{
			Mese:       row.Mese,
			Label:      MonthLabel(row.Mese),
			Guadagni:   row.Guadagni,
			Spese:      row.Spese,
			SaldoNetto: row.SaldoNetto,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mese < out[j].Mese })
	return out
}

// MonthLabel turns "2025-03" into "03/2025". Unknown input is returned as is.
func MonthLabel(mese string) string {
	t, err := time.Parse("2006-01", mese)
	if err != nil {
		return mese
	}
	return t.Format("01/2006")
}

// Point is one day of the balance line.
type Point struct {
	Time  time.Time
	Saldo decimal.Decimal
}

func (p Point) Value() float64 {
	f, _ := p.Saldo.Float64()
	return f
}

// BalanceSeries converts the report rows into chronological points,
// skipping rows with an unreadable date.
func BalanceSeries(r api.BalanceReport) []Point {
	out := make([]Point, 0, len(r.Rows))
	for _, row := range r.Rows {
		t, err := time.Parse(api.DateLayout, row.Data)
		if err != nil {
			continue
		}
		out = append(out, Point{Time: t, Saldo: row.Saldo})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
