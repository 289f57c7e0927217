package state

import (
	"fmt"
	"time"

	"github.com/jask/mybudget/internal/api"
)

// Preset names a predefined chart window.
type Preset string

const (
	PresetLast7     Preset = "last7"
	PresetLast30    Preset = "last30"
	PresetThisMonth Preset = "thisMonth"
	PresetThisYear  Preset = "thisYear"
)

// Presets in display order.
var Presets = []Preset{PresetLast7, PresetLast30, PresetThisMonth, PresetThisYear}

func (p Preset) Label() string {
	switch p {
	case PresetLast7:
		return "Ultimi 7 giorni"
	case PresetLast30:
		return "Ultimi 30 giorni"
	case PresetThisMonth:
		return "Questo mese"
	case PresetThisYear:
		return "Quest'anno"
	default:
		return string(p)
	}
}

// ChartFilter drives the charts page.
type ChartFilter struct {
	Start     time.Time
	End       time.Time
	AccountID int64
	TagID     int64
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultChartFilter covers the last 30 days with no account or tag.
func DefaultChartFilter(now time.Time) ChartFilter {
	return ChartFilter{}.WithPreset(PresetLast30, now)
}

// WithPreset replaces the window, keeping account and tag.
func (f ChartFilter) WithPreset(p Preset, now time.Time) ChartFilter {
	today := day(now)
	switch p {
	case PresetLast7:
		f.Start, f.End = today.AddDate(0, 0, -7), today
	case PresetThisMonth:
		f.Start, f.End = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today
	case PresetThisYear:
		f.Start, f.End = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location()), today
	default:
		f.Start, f.End = today.AddDate(0, 0, -30), today
	}
	return f
}

// WithRange sets explicit bounds; they are swapped when reversed.
func (f ChartFilter) WithRange(start, end time.Time) (ChartFilter, error) {
	if start.IsZero() || end.IsZero() {
		return f, fmt.Errorf("intervallo di date incompleto")
	}
	start, end = day(start), day(end)
	if end.Before(start) {
		start, end = end, start
	}
	f.Start, f.End = start, end
	return f, nil
}

func (f ChartFilter) WithAccount(id int64) ChartFilter {
	f.AccountID = id
	return f
}

func (f ChartFilter) WithTag(id int64) ChartFilter {
	f.TagID = id
	return f
}

// Reset returns the defaults.
func (f ChartFilter) Reset(now time.Time) ChartFilter {
	return DefaultChartFilter(now)
}

// Days is the inclusive length of the window.
func (f ChartFilter) Days() int {
	return int(f.End.Sub(f.Start).Hours()/24) + 1
}

func (f ChartFilter) Query() api.ChartQuery {
	return api.ChartQuery{
		StartDate: f.Start.Format(api.DateLayout),
		EndDate:   f.End.Format(api.DateLayout),
		AccountID: f.AccountID,
		TagID:     f.TagID,
	}
}

// CanShowBalance reports whether the balance-over-time chart can be asked for.
func (f ChartFilter) CanShowBalance() bool {
	return f.AccountID > 0
}
