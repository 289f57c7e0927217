package charts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpenseSlicesTopTenPlusOther(t *testing.T) {
	var r api.ExpenseByTagReport
	for i := 1; i <= 12; i++ {
		r.Rows = append(r.Rows, api.TagExpense{
			ID: int64(i), Nome: fmt.Sprintf("tag%02d", i),
			Totale: decimal.NewFromInt(int64(i * 10)), NumOperazioni: 1,
		})
	}
	slices := ExpenseSlices(r, TopSlices)
	require.Len(t, slices, 11)
	assert.Equal(t, "tag12", slices[0].Label)
	assert.Equal(t, "tag03", slices[9].Label)

	other := slices[10]
	assert.Equal(t, OtherLabel, other.Label)
	assert.Equal(t, "30", other.Total.String())
	assert.Equal(t, 2, other.Count)
	assert.ElementsMatch(t, []int64{1, 2}, other.TagIDs)
	// grand total 780
	assert.Equal(t, "3.8", other.Percent.String())
	assert.Equal(t, "15.4", slices[0].Percent.String())
}

func TestExpenseSlicesUsesServerTotal(t *testing.T) {
	r := api.ExpenseByTagReport{
		Rows:           []api.TagExpense{{ID: 1, Nome: "Spesa", Totale: dec("25"), NumOperazioni: 3}},
		TotaleGenerale: dec("100"),
	}
	slices := ExpenseSlices(r, 0)
	require.Len(t, slices, 1)
	assert.Equal(t, "25", slices[0].Percent.String())
	assert.Empty(t, ExpenseSlices(api.ExpenseByTagReport{}, 10))
}

func TestMonthlyGroupsLabelsAndOrder(t *testing.T) {
	r := api.IncomeVsExpenseReport{Rows: []api.MonthlyFlow{
		{Mese: "2025-03", Guadagni: dec("10"), Spese: dec("5"), SaldoNetto: dec("5")},
		{Mese: "2024-12", Guadagni: dec("1"), Spese: dec("2"), SaldoNetto: dec("-1")},
	}}
	groups := MonthlyGroups(r)
	require.Len(t, groups, 2)
	assert.Equal(t, "12/2024", groups[0].Label)
	assert.Equal(t, "03/2025", groups[1].Label)
	assert.Equal(t, "bad", MonthLabel("bad"))
}

func TestBalanceSeries(t *testing.T) {
	r := api.BalanceReport{Rows: []api.BalancePoint{
		{Data: "2025-03-02", Saldo: dec("900")},
		{Data: "nope", Saldo: dec("1")},
		{Data: "2025-03-01", Saldo: dec("960")},
	}}
	pts := BalanceSeries(r)
	require.Len(t, pts, 2)
	assert.Equal(t, 1, pts[0].Time.Day())
	assert.InDelta(t, 960.0, pts[0].Value(), 0.001)
}

func TestRenderersHandleEmptyAndData(t *testing.T) {
	assert.Contains(t, RenderExpenseSlices(nil, 40, money.Formatter{}), NoData)
	assert.Contains(t, RenderMonthlyFlows(nil, 40, 10, money.Formatter{}), NoData)
	assert.Contains(t, RenderBalance(nil, 40, 10), NoData)

	out := RenderExpenseSlices([]Slice{
		{Label: "Spesa", Total: dec("100"), Percent: dec("62.5"), Count: 2},
		{Label: "Casa", Total: dec("60"), Percent: dec("37.5"), Count: 1},
	}, 60, money.Formatter{})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Spesa")
	assert.Contains(t, lines[0], "62.5%")

	flows := RenderMonthlyFlows([]MonthGroup{{Label: "03/2025", Guadagni: dec("10"), Spese: dec("4"), SaldoNetto: dec("6")}}, 40, 8, money.Formatter{Symbol: "EUR"})
	assert.Contains(t, flows, "03/2025")
	assert.Contains(t, flows, "saldo netto 6,00 EUR")

	bal := RenderBalance([]Point{{Saldo: dec("5")}}, 40, 8)
	assert.NotEmpty(t, bal)
}
