// Package money formats and parses euro amounts the way the Italian UI
// shows them: "1.234,56 €".
package money

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Italian)

// DefaultSymbol is used by the zero Formatter.
const DefaultSymbol = "€"

// Formatter renders amounts with a configured currency symbol.
type Formatter struct {
	Symbol string
}

func (f Formatter) symbol() string {
	if f.Symbol == "" {
		return DefaultSymbol
	}
	return f.Symbol
}

// Format renders d with two decimals, Italian grouping and the currency symbol.
func (f Formatter) Format(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", v) + " " + f.symbol()
}

// FormatPtr renders "-" for a missing amount.
func (f Formatter) FormatPtr(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return f.Format(*d)
}

// Plain renders d with two decimals and no grouping, suitable for an input field.
func Plain(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// Parse accepts "12,50", "12.50", "-1.234,56" and "1234.56". A trailing
// currency symbol is ignored.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// Sign classifies an amount for colouring: 1 income, -1 expense, 0 neutral.
func Sign(d decimal.Decimal) int {
	return d.Sign()
}
