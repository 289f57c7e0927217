package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
	"github.com/jask/mybudget/internal/tui/widgets"
)

// entityList configures a list-with-modal-form tab.
type entityList[T any] struct {
	id      string
	title   string
	scope   string
	entity  string // "Conto", "Tag"
	empty   string
	topic   events.Topic
	columns []widgets.Column
	row     func(T) []string
	key     func(T) int64
	name    func(T) string
	fetch   func(ctx context.Context) ([]T, error)
	remove  func(ctx context.Context, id int64) error
	form    func(deps Deps, owner string, target *T) Screen
	// watch lists the topics that make the list stale.
	watch []events.Topic
}

// listTab renders one entityList and owns its fetches and deletes.
type listTab[T any] struct {
	cfg     entityList[T]
	deps    Deps
	sc      *scope.Scope
	subs    subscriptions
	list    state.ListState[T]
	cursor  int
	pending map[int64]state.Removed[T]
}

func newListTab[T any](deps Deps, cfg entityList[T]) *listTab[T] {
	return &listTab[T]{
		cfg:     cfg,
		deps:    deps,
		sc:      scope.New(context.Background()),
		pending: map[int64]state.Removed[T]{},
	}
}

func (t *listTab[T]) ID() string    { return t.cfg.id }
func (t *listTab[T]) Title() string { return t.cfg.title }
func (t *listTab[T]) Scope() string { return t.cfg.scope }

func (t *listTab[T]) Init(m *Model) tea.Cmd {
	if len(t.cfg.watch) > 0 && len(t.subs) == 0 {
		t.subs.add(t.deps.Hub, t.cfg.id, "list", t.deps.Send, t.cfg.watch...)
	}
	return t.refresh()
}

func (t *listTab[T]) Close() {
	t.sc.Close()
	t.subs.release()
}

func (t *listTab[T]) refresh() tea.Cmd {
	t.list = t.list.Loading()
	return run(t.sc, t.cfg.id, "list", t.cfg.fetch)
}

// deleted is the outcome of a delete request.
type deleted struct {
	id int64
}

func (t *listTab[T]) Update(m *Model, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case result[[]T]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return requireLogin
			}
			t.list = t.list.Failed(msg.err)
			m.SetError(loadErrorMessage(msg.err))
			return nil
		}
		t.list = t.list.Loaded(msg.val, nil).Without(t.isPending)
		t.clampCursor()
		return nil
	case result[deleted]:
		if !t.sc.Finish(msg.tok) {
			return nil
		}
		removed, ok := t.pending[msg.val.id]
		delete(t.pending, msg.val.id)
		if msg.err != nil {
			if ok && !t.list.Contains(t.hasKey(msg.val.id)) {
				t.list = t.list.Restore(removed)
			}
			if isAuthErr(msg.err) {
				return requireLogin
			}
			t.deps.Log.Warn("delete failed", "entity", t.cfg.entity, "id", msg.val.id, "err", msg.err)
			m.SetError(state.DeleteErrorMessage(msg.err))
			return nil
		}
		publish(t.deps.Hub, t.cfg.topic)
		m.SetStatus(t.cfg.entity + " eliminato")
		return nil
	case confirmedMsg:
		return t.delete(m, msg.id)
	case savedMsg:
		return t.refresh()
	case signalMsg:
		return t.refresh()
	case tea.KeyMsg:
		return t.handleKey(m, msg)
	}
	return nil
}

func (t *listTab[T]) handleKey(m *Model, msg tea.KeyMsg) tea.Cmd {
	keys, sc := m.keys, t.cfg.scope
	switch {
	case keys.IsAction(msg, actDown, sc):
		t.cursor = min(t.cursor+1, max(0, t.list.Len()-1))
	case keys.IsAction(msg, actUp, sc):
		t.cursor = max(t.cursor-1, 0)
	case keys.IsAction(msg, actRefresh, sc):
		return t.refresh()
	case keys.IsAction(msg, actNew, sc):
		return m.PushScreen(t.cfg.form(t.deps, t.cfg.id, nil))
	case keys.IsAction(msg, actEdit, sc):
		if item, ok := t.selected(); ok {
			return m.PushScreen(t.cfg.form(t.deps, t.cfg.id, &item))
		}
	case keys.IsAction(msg, actDelete, sc):
		if item, ok := t.selected(); ok {
			return m.PushScreen(newConfirmScreen(t.cfg.id, t.cfg.key(item),
				"Elimina "+strings.ToLower(t.cfg.entity),
				fmt.Sprintf("Eliminare %q?", t.cfg.name(item)), ""))
		}
	}
	return nil
}

// delete removes the item locally and asks the server; a failure puts
// it back where it was.
func (t *listTab[T]) delete(m *Model, id int64) tea.Cmd {
	next, removed, ok := t.list.Remove(t.hasKey(id))
	if !ok {
		return nil
	}
	t.list = next
	t.pending[id] = removed
	t.clampCursor()
	m.SetStatus("Eliminazione...")
	remove := t.cfg.remove
	return run(t.sc, t.cfg.id, fmt.Sprintf("delete:%d", id), func(ctx context.Context) (deleted, error) {
		return deleted{id: id}, remove(ctx, id)
	})
}

func (t *listTab[T]) isPending(it T) bool {
	_, ok := t.pending[t.cfg.key(it)]
	return ok
}

func (t *listTab[T]) hasKey(id int64) func(T) bool {
	return func(it T) bool { return t.cfg.key(it) == id }
}

func (t *listTab[T]) selected() (T, bool) {
	var zero T
	if t.cursor < 0 || t.cursor >= t.list.Len() {
		return zero, false
	}
	return t.list.Items[t.cursor], true
}

func (t *listTab[T]) clampCursor() {
	t.cursor = max(0, min(t.cursor, t.list.Len()-1))
}

func (t *listTab[T]) Build(m *Model) widgets.Widget {
	return widgets.Pane{Title: t.cfg.title, Content: t.body(m), Focused: true}
}

func (t *listTab[T]) body(m *Model) string {
	switch {
	case t.list.Status == state.StatusLoading && t.list.Len() == 0:
		return mutedStyle.Render("Caricamento...")
	case t.list.Status == state.StatusFailed && t.list.Len() == 0:
		return errorStyle.Render(loadErrorMessage(t.list.Err))
	}
	rows := make([][]string, 0, t.list.Len())
	for _, it := range t.list.Items {
		rows = append(rows, t.cfg.row(it))
	}
	tbl := widgets.Table{Columns: t.cfg.columns, Rows: rows, Cursor: t.cursor, Empty: mutedStyle.Render(t.cfg.empty)}
	return tbl.Render(max(20, m.width-8), max(3, m.height-10))
}

func loadErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return "Errore: " + err.Error()
}
