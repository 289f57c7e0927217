// Package state holds the immutable view state of the client: filters,
// list contents, form drafts, tag search and pagination. Every update
// returns a new value; nothing here performs I/O.
package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/jask/mybudget/internal/api"
)

// TransactionFilter drives the transaction list and its statistics.
// Any filter change returns a copy positioned on page 1.
type TransactionFilter struct {
	Data    string // YYYY-MM-DD, exact day
	Anno    int
	Mese    int
	ContoID int64
	TagID   int64
	Page    int
	PerPage int
}

// NewTransactionFilter returns an unfiltered first page.
func NewTransactionFilter(perPage int) TransactionFilter {
	return TransactionFilter{Page: 1, PerPage: perPage}
}

func (f TransactionFilter) firstPage() TransactionFilter {
	f.Page = 1
	return f
}

func (f TransactionFilter) WithDate(day string) TransactionFilter {
	f.Data = day
	return f.firstPage()
}

func (f TransactionFilter) WithYear(anno int) TransactionFilter {
	f.Anno = anno
	return f.firstPage()
}

// WithMonth sets the month (1-12, 0 clears).
func (f TransactionFilter) WithMonth(mese int) TransactionFilter {
	if mese < 0 || mese > 12 {
		mese = 0
	}
	f.Mese = mese
	return f.firstPage()
}

func (f TransactionFilter) WithAccount(id int64) TransactionFilter {
	f.ContoID = id
	return f.firstPage()
}

func (f TransactionFilter) WithTag(id int64) TransactionFilter {
	f.TagID = id
	return f.firstPage()
}

// WithPage moves the cursor without touching the filters.
func (f TransactionFilter) WithPage(page int) TransactionFilter {
	if page < 1 {
		page = 1
	}
	f.Page = page
	return f
}

// Cleared drops every filter, keeping the page size.
func (f TransactionFilter) Cleared() TransactionFilter {
	return NewTransactionFilter(f.PerPage)
}

// SameFilters reports whether f and o select the same rows, ignoring pagination.
func (f TransactionFilter) SameFilters(o TransactionFilter) bool {
	f.Page, o.Page = 0, 0
	return f == o
}

// Active reports whether any filter is set.
func (f TransactionFilter) Active() bool {
	return !f.SameFilters(NewTransactionFilter(f.PerPage))
}

// Query is the request for the list endpoint. Statistics use the same
// query; the client drops the pagination part.
func (f TransactionFilter) Query() api.TransactionQuery {
	return api.TransactionQuery{
		Anno:    f.Anno,
		Mese:    f.Mese,
		Data:    f.Data,
		ContoID: f.ContoID,
		Tag:     f.TagID,
		Page:    f.Page,
		PerPage: f.PerPage,
	}
}

// Describe renders the active filters with account and tag names.
func (f TransactionFilter) Describe(accountName, tagName func(int64) string) string {
	var parts []string
	if f.Data != "" {
		if d, err := time.Parse(api.DateLayout, f.Data); err == nil {
			parts = append(parts, "giorno "+d.Format("02/01/2006"))
		} else {
			parts = append(parts, "giorno "+f.Data)
		}
	}
	if f.Mese > 0 {
		parts = append(parts, "mese "+fmt.Sprintf("%02d", f.Mese))
	}
	if f.Anno > 0 {
		parts = append(parts, fmt.Sprintf("anno %d", f.Anno))
	}
	if f.ContoID > 0 {
		parts = append(parts, "conto "+accountName(f.ContoID))
	}
	if f.TagID > 0 {
		parts = append(parts, "tag "+tagName(f.TagID))
	}
	if len(parts) == 0 {
		return "nessun filtro"
	}
	return strings.Join(parts, ", ")
}
