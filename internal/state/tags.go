package state

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/mybudget/internal/api"
)

// TagPicker is the search-as-you-type tag selector of the transaction form.
type TagPicker struct {
	All      []api.Tag
	Selected []api.Tag
	Query    string
}

func NewTagPicker(all, selected []api.Tag) TagPicker {
	return TagPicker{
		All:      append([]api.Tag(nil), all...),
		Selected: append([]api.Tag(nil), selected...),
	}
}

func (p TagPicker) WithQuery(q string) TagPicker {
	p.Query = q
	return p
}

// WithAll replaces the known tag set, e.g. after a tag changed elsewhere.
func (p TagPicker) WithAll(all []api.Tag) TagPicker {
	p.All = append([]api.Tag(nil), all...)
	return p
}

func (p TagPicker) isSelected(id int64) bool {
	for _, t := range p.Selected {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Suggestions lists unselected tags whose name contains the query,
// ignoring case. Prefix matches come first, then closer names.
func (p TagPicker) Suggestions() []api.Tag {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	if q == "" {
		return nil
	}
	type ranked struct {
		tag    api.Tag
		prefix bool
		dist   int
		lower  string
	}
	var hits []ranked
	for _, t := range p.All {
		name := strings.ToLower(t.Nome)
		if !strings.Contains(name, q) || p.isSelected(t.ID) {
			continue
		}
		hits = append(hits, ranked{
			tag:    t,
			prefix: strings.HasPrefix(name, q),
			dist:   levenshtein.ComputeDistance(q, name),
			lower:  name,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.lower < b.lower
	})
	out := make([]api.Tag, len(hits))
	for i, h := range hits {
		out[i] = h.tag
	}
	return out
}

// Select appends t and clears the query. Already selected tags are ignored.
func (p TagPicker) Select(t api.Tag) TagPicker {
	p.Query = ""
	if p.isSelected(t.ID) {
		return p
	}
	p.Selected = append(append([]api.Tag(nil), p.Selected...), t)
	return p
}

// Remove drops the selected tag with id.
func (p TagPicker) Remove(id int64) TagPicker {
	out := make([]api.Tag, 0, len(p.Selected))
	for _, t := range p.Selected {
		if t.ID != id {
			out = append(out, t)
		}
	}
	p.Selected = out
	return p
}
