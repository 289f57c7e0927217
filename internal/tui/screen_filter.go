package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/state"
)

// filterChosenMsg carries the filter the user confirmed.
type filterChosenMsg struct {
	tab    string
	filter state.TransactionFilter
}

func (m filterChosenMsg) target() string { return m.tab }

const (
	filterSlotConto = 3
	filterSlotTag   = 4
	filterSlots     = 5
)

// filterScreen edits day, month, year, account and tag. The first three
// slots are text inputs, the rest cycle through fetched options.
type filterScreen struct {
	owner      string
	base       state.TransactionFilter
	dateFormat string
	fields     fieldSet
	conto      choice
	tag        choice
	slot       int
	err        string
}

func newFilterScreen(deps Deps, owner string, base state.TransactionFilter, accounts []api.Account, tags []api.Tag) *filterScreen {
	day := ""
	if base.Data != "" {
		if t, err := state.ParseDate(base.Data, deps.DateFormat); err == nil {
			day = t.Format(deps.DateFormat)
		}
	}
	num := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	accOpts := []option{{name: "Tutti"}}
	for _, a := range accounts {
		accOpts = append(accOpts, option{id: a.ID, name: a.Nome})
	}
	tagOpts := []option{{name: "Tutti"}}
	for _, t := range tags {
		tagOpts = append(tagOpts, option{id: t.ID, name: t.Nome})
	}
	return &filterScreen{
		owner:      owner,
		base:       base,
		dateFormat: deps.DateFormat,
		fields: newFieldSet(
			newField("data", "Giorno", day, "gg/mm/aaaa"),
			newField("mese", "Mese", num(base.Mese), "1-12"),
			newField("anno", "Anno", num(base.Anno), "aaaa"),
		),
		conto: newChoice("Conto", accOpts, base.ContoID),
		tag:   newChoice("Tag", tagOpts, base.TagID),
	}
}

func (s *filterScreen) Title() string { return "Filtri" }
func (s *filterScreen) Scope() string { return scopeFilter }

func (s *filterScreen) focusSlot(i int) {
	s.slot = (i + filterSlots) % filterSlots
	if s.slot < len(s.fields.fields) {
		s.fields.setFocus(s.slot)
		return
	}
	for j := range s.fields.fields {
		s.fields.fields[j].input.Blur()
	}
}

func (s *filterScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil, false
	}
	switch key.String() {
	case "esc":
		return s, nil, true
	case "tab", "down":
		s.focusSlot(s.slot + 1)
		return s, nil, false
	case "shift+tab", "up":
		s.focusSlot(s.slot - 1)
		return s, nil, false
	case "enter":
		f, problem := s.build()
		if problem != "" {
			s.err = problem
			return s, nil, false
		}
		owner := s.owner
		return s, func() tea.Msg { return filterChosenMsg{tab: owner, filter: f} }, true
	}
	switch s.slot {
	case filterSlotConto, filterSlotTag:
		c := &s.conto
		if s.slot == filterSlotTag {
			c = &s.tag
		}
		switch key.String() {
		case "left", "h":
			c.move(-1)
		case "right", "l", " ":
			c.move(1)
		}
		return s, nil, false
	}
	return s, s.fields.update(key), false
}

// build validates the inputs and returns the new filter on page 1, or
// the message describing the first bad input.
func (s *filterScreen) build() (state.TransactionFilter, string) {
	f := s.base
	day := ""
	if v := s.fields.value("data"); v != "" {
		t, err := state.ParseDate(v, s.dateFormat)
		if err != nil {
			return f, "Giorno non valido"
		}
		day = t.Format(api.DateLayout)
	}
	mese, err := optionalInt(s.fields.value("mese"))
	if err != nil || mese < 0 || mese > 12 {
		return f, "Mese non valido"
	}
	anno, err := optionalInt(s.fields.value("anno"))
	if err != nil || anno < 0 {
		return f, "Anno non valido"
	}
	f = f.WithDate(day).WithMonth(mese).WithYear(anno).
		WithAccount(s.conto.selected().id).
		WithTag(s.tag.selected().id)
	return f, ""
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (s *filterScreen) View(width, height int) string {
	lines := s.fields.view(nil)
	lines = append(lines,
		s.conto.view(s.slot == filterSlotConto),
		s.tag.view(s.slot == filterSlotTag),
		"",
	)
	if s.err != "" {
		lines = append(lines, errorStyle.Render(s.err))
	}
	lines = append(lines, mutedStyle.Render("tab campo · ←/→ scegli · invio applica · esc chiudi"))
	return strings.Join(lines, "\n")
}
