package state

import "github.com/jask/mybudget/internal/api"

// Status is the lifecycle of a fetched list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ListState is the content of a list view. A failed or in-flight fetch
// keeps the previous items visible.
type ListState[T any] struct {
	Status     Status
	Items      []T
	Pagination *api.Pagination
	Err        error
}

func (l ListState[T]) Loading() ListState[T] {
	l.Status = StatusLoading
	l.Err = nil
	return l
}

// Loaded replaces the items with a fresh fetch result.
func (l ListState[T]) Loaded(items []T, p *api.Pagination) ListState[T] {
	l.Items = items
	l.Pagination = p
	l.Err = nil
	if len(items) == 0 {
		l.Status = StatusEmpty
	} else {
		l.Status = StatusReady
	}
	return l
}

func (l ListState[T]) Failed(err error) ListState[T] {
	l.Status = StatusFailed
	l.Err = err
	return l
}

func (l ListState[T]) Len() int { return len(l.Items) }

// ShowPagination reports whether page controls make sense.
func (l ListState[T]) ShowPagination() bool {
	return l.Pagination != nil && l.Pagination.LastPage > 1
}

// Removed is what Remove took out, used to put it back.
type Removed[T any] struct {
	Item  T
	Index int
}

// Remove drops the first item matching pred. The returned state holds a
// fresh slice; the receiver is untouched.
func (l ListState[T]) Remove(pred func(T) bool) (ListState[T], Removed[T], bool) {
	for i, it := range l.Items {
		if !pred(it) {
			continue
		}
		items := make([]T, 0, len(l.Items)-1)
		items = append(items, l.Items[:i]...)
		items = append(items, l.Items[i+1:]...)
		l.Items = items
		if len(items) == 0 && l.Status == StatusReady {
			l.Status = StatusEmpty
		}
		return l, Removed[T]{Item: it, Index: i}, true
	}
	var zero Removed[T]
	return l, zero, false
}

// Restore puts r back at its original position, or at the end when the
// list shrank meanwhile.
func (l ListState[T]) Restore(r Removed[T]) ListState[T] {
	idx := r.Index
	if idx < 0 || idx > len(l.Items) {
		idx = len(l.Items)
	}
	items := make([]T, 0, len(l.Items)+1)
	items = append(items, l.Items[:idx]...)
	items = append(items, r.Item)
	items = append(items, l.Items[idx:]...)
	l.Items = items
	if l.Status == StatusEmpty {
		l.Status = StatusReady
	}
	return l
}

// Without drops every item matching pred, e.g. rows whose delete is
// still in flight when a refresh lands.
func (l ListState[T]) Without(pred func(T) bool) ListState[T] {
	items := make([]T, 0, len(l.Items))
	for _, it := range l.Items {
		if !pred(it) {
			items = append(items, it)
		}
	}
	l.Items = items
	if len(items) == 0 && l.Status == StatusReady {
		l.Status = StatusEmpty
	}
	return l
}

// Contains reports whether any item matches pred.
func (l ListState[T]) Contains(pred func(T) bool) bool {
	for _, it := range l.Items {
		if pred(it) {
			return true
		}
	}
	return false
}
