package charts

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mybudget/internal/money"
)

const minChartWidth = 20

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// NoData is shown in place of an empty chart.
const NoData = "Nessun dato per il periodo selezionato."

// RenderExpenseSlices draws one horizontal bar per slice, scaled to the
// largest slice.
func RenderExpenseSlices(slices []Slice, width int, fm money.Formatter) string {
	if len(slices) == 0 {
		return mutedStyle.Render(NoData)
	}
	width = max(width, minChartWidth)

	labelW := 0
	for _, s := range slices {
		labelW = max(labelW, lipgloss.Width(s.Label))
	}
	labelW = min(labelW, width/3)

	maxTotal := slices[0].Total
	for _, s := range slices[1:] {
		if s.Total.GreaterThan(maxTotal) {
			maxTotal = s.Total
		}
	}

	var b strings.Builder
	for i, s := range slices {
		tail := fmt.Sprintf(" %5s%% %s (%d)", s.Percent.StringFixed(1), fm.Format(s.Total), s.Count)
		barW := max(width-labelW-lipgloss.Width(tail)-2, 1)
		n := 0
		if maxTotal.IsPositive() {
			ratio, _ := s.Total.Div(maxTotal).Float64()
			n = int(ratio * float64(barW))
		}
		label := truncate(s.Label, labelW)
		fmt.Fprintf(&b, "%-*s ", labelW, label)
		b.WriteString(expenseStyle.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barW-n))
		b.WriteString(tail)
		if i < len(slices)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

// RenderMonthlyFlows draws paired income and expense bars per month,
// followed by a net line per month.
func RenderMonthlyFlows(groups []MonthGroup, width, height int, fm money.Formatter) string {
	if len(groups) == 0 {
		return mutedStyle.Render(NoData)
	}
	width = max(width, minChartWidth)
	height = max(height, 6)

	data := make([]barchart.BarData, 0, len(groups)*2)
	for _, g := range groups {
		in, _ := g.Guadagni.Float64()
		out, _ := g.Spese.Float64()
		data = append(data,
			barchart.BarData{Label: g.Label, Values: []barchart.BarValue{{Name: "Entrate", Value: in, Style: incomeStyle}}},
			barchart.BarData{Label: "", Values: []barchart.BarValue{{Name: "Uscite", Value: out, Style: expenseStyle}}},
		)
	}
	bc := barchart.New(width, height)
	bc.PushAll(data)
	bc.Draw()

	var b strings.Builder
	b.WriteString(bc.View())
	b.WriteByte('\n')
	b.WriteString(incomeStyle.Render("█ Entrate") + "  " + expenseStyle.Render("█ Uscite"))
	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s  saldo netto %s", g.Label, fm.Format(g.SaldoNetto))
	}
	return b.String()
}

// RenderBalance draws the balance line of one account.
func RenderBalance(points []Point, width, height int) string {
	if len(points) == 0 {
		return mutedStyle.Render(NoData)
	}
	width = max(width, minChartWidth)
	height = max(height, 6)

	start, end := points[0].Time, points[len(points)-1].Time
	if !end.After(start) {
		end = start.Add(24 * time.Hour)
	}
	lo, hi := points[0].Value(), points[0].Value()
	for _, p := range points[1:] {
		lo = min(lo, p.Value())
		hi = max(hi, p.Value())
	}
	if hi == lo {
		hi = lo + 1
	}

	chart := tslc.New(width, height)
	chart.SetTimeRange(start, end)
	chart.SetViewTimeRange(start, end)
	chart.SetYRange(lo, hi)
	chart.SetViewYRange(lo, hi)
	for _, p := range points {
		chart.Push(tslc.TimePoint{Time: p.Time, Value: p.Value()})
	}
	chart.DrawBraille()
	return chart.View()
}
