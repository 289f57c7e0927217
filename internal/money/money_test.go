package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00 €",
		"500":      "500,00 €",
		"1234.5":   "1.234,50 €",
		"-20":      "-20,00 €",
		"12.345":   "12,35 €",
		"-1000000": "-1.000.000,00 €",
	}
	for in, want := range cases {
		require.Equal(t, want, Formatter{}.Format(decimal.RequireFromString(in)), in)
	}
}

func TestFormatPtrNil(t *testing.T) {
	require.Equal(t, "-", Formatter{}.FormatPtr(nil))
}

func TestFormatterSymbol(t *testing.T) {
	usd := Formatter{Symbol: "$"}
	require.Equal(t, "1.234,50 $", usd.Format(decimal.RequireFromString("1234.5")))
	require.Equal(t, "-", usd.FormatPtr(nil))
	require.Equal(t, "7,00 €", Formatter{}.Format(decimal.NewFromInt(7)))

	got, err := Parse("12,50 $")
	require.NoError(t, err)
	require.Equal(t, "12.5", got.String())
}

func TestParse(t *testing.T) {
	cases := map[string]string{
		"12,50":     "12.5",
		"12.50":     "12.5",
		"-1.234,56": "-1234.56",
		"1234.56":   "1234.56",
		" 7 € ":     "7",
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "%s -> %s", in, got)
	}

	_, err := Parse("")
	require.Error(t, err)
	_, err = Parse("abc")
	require.Error(t, err)
	_, err = Parse("12abc")
	require.Error(t, err)
}

func TestPlainRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("-42.1")
	require.Equal(t, "-42,10", Plain(d))
	back, err := Parse(Plain(d))
	require.NoError(t, err)
	require.True(t, back.Equal(d))
}
