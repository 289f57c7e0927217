package api

import (
	"net/url"
	"strconv"
)

// TransactionQuery holds the list and statistics filters. Zero values are
// omitted from the query string.
type TransactionQuery struct {
	Anno    int
	Mese    int
	Data    string // YYYY-MM-DD
	ContoID int64
	Tag     int64
	Page    int
	PerPage int
}

// Values encodes the filters, pagination included.
func (q TransactionQuery) Values() url.Values {
	v := q.FilterValues()
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// FilterValues encodes the filters without pagination.
func (q TransactionQuery) FilterValues() url.Values {
	v := url.Values{}
	if q.Data != "" {
		v.Set("data", q.Data)
	}
	if q.Anno > 0 {
		v.Set("anno", strconv.Itoa(q.Anno))
	}
	if q.Mese > 0 {
		v.Set("mese", strconv.Itoa(q.Mese))
	}
	if q.ContoID > 0 {
		v.Set("conto_id", strconv.FormatInt(q.ContoID, 10))
	}
	if q.Tag > 0 {
		v.Set("tag", strconv.FormatInt(q.Tag, 10))
	}
	return v
}

// ChartQuery filters the chart endpoints. Dates are YYYY-MM-DD.
type ChartQuery struct {
	StartDate string
	EndDate   string
	AccountID int64
	TagID     int64
}

func (q ChartQuery) Values() url.Values {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.AccountID > 0 {
		v.Set("account_id", strconv.FormatInt(q.AccountID, 10))
	}
	if q.TagID > 0 {
		v.Set("tag_id", strconv.FormatInt(q.TagID, 10))
	}
	return v
}
