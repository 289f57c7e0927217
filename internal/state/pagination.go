package state

import (
	"strconv"
	"strings"

	"github.com/jask/mybudget/internal/api"
)

const pageRadius = 2

// PageWindow is the set of page links around the current page.
type PageWindow struct {
	Current        int
	Last           int
	Pages          []int
	ShowFirst      bool
	ShowLast       bool
	EllipsisBefore bool
	EllipsisAfter  bool
}

// Visible is false when there is a single page.
func (w PageWindow) Visible() bool { return w.Last > 1 }

// NewPageWindow computes the links for p. A nil p yields a hidden window.
func NewPageWindow(p *api.Pagination) PageWindow {
	if p == nil || p.LastPage <= 1 {
		return PageWindow{Current: 1, Last: 1}
	}
	cur := min(max(p.CurrentPage, 1), p.LastPage)
	w := PageWindow{Current: cur, Last: p.LastPage}
	lo := max(1, cur-pageRadius)
	hi := min(p.LastPage, cur+pageRadius)
	for i := lo; i <= hi; i++ {
		w.Pages = append(w.Pages, i)
	}
	w.ShowFirst = cur > pageRadius+1
	w.EllipsisBefore = cur > pageRadius+2
	w.ShowLast = cur < p.LastPage-pageRadius
	w.EllipsisAfter = cur < p.LastPage-pageRadius-1
	return w
}

// Target validates a page request. Out-of-range and current page are rejected.
func (w PageWindow) Target(page int) (int, bool) {
	if !w.Visible() || page < 1 || page > w.Last || page == w.Current {
		return w.Current, false
	}
	return page, true
}

// String renders e.g. "1 … 4 5 [6] 7 8 … 12".
func (w PageWindow) String() string {
	if !w.Visible() {
		return ""
	}
	var b strings.Builder
	write := func(s string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	if w.ShowFirst {
		write("1")
	}
	if w.EllipsisBefore {
		write("…")
	}
	for _, p := range w.Pages {
		if p == w.Current {
			write("[" + strconv.Itoa(p) + "]")
		} else {
			write(strconv.Itoa(p))
		}
	}
	if w.EllipsisAfter {
		write("…")
	}
	if w.ShowLast {
		write(strconv.Itoa(w.Last))
	}
	return b.String()
}
