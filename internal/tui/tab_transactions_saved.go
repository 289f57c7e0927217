package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/database/repository"
	"github.com/jask/mybudget/internal/state"
)

const savedFiltersKey = "saved-filters"

// savedFilterDeleted is the outcome of removing a saved filter.
type savedFilterDeleted struct {
	name string
}

func savedFromFilter(name string, f state.TransactionFilter) repository.SavedFilter {
	return repository.SavedFilter{
		Name:    name,
		Data:    f.Data,
		Anno:    f.Anno,
		Mese:    f.Mese,
		ContoID: f.ContoID,
		TagID:   f.TagID,
	}
}

func filterFromSaved(sf repository.SavedFilter, perPage int) state.TransactionFilter {
	return state.NewTransactionFilter(perPage).
		WithDate(sf.Data).
		WithYear(sf.Anno).
		WithMonth(sf.Mese).
		WithAccount(sf.ContoID).
		WithTag(sf.TagID)
}

func (t *transactionsTab) saveFilter(m *Model, name string) tea.Cmd {
	store := t.deps.Filters
	if store == nil {
		m.SetError("Filtri salvati non disponibili")
		return nil
	}
	sf := savedFromFilter(name, t.filter)
	return run(t.sc, tabTransactions, savedFiltersKey, func(ctx context.Context) (repository.SavedFilter, error) {
		return store.Save(ctx, sf)
	})
}

func (t *transactionsTab) listSavedFilters(m *Model) tea.Cmd {
	store := t.deps.Filters
	if store == nil {
		m.SetError("Filtri salvati non disponibili")
		return nil
	}
	return run(t.sc, tabTransactions, savedFiltersKey, func(ctx context.Context) ([]repository.SavedFilter, error) {
		return store.List(ctx)
	})
}

func (t *transactionsTab) openSavedFilters(m *Model, msg result[[]repository.SavedFilter]) tea.Cmd {
	if !t.sc.Finish(msg.tok) {
		return nil
	}
	if msg.err != nil {
		t.deps.Log.Warn("list saved filters failed", "err", msg.err)
		m.SetError("Errore: " + msg.err.Error())
		return nil
	}
	t.saved = msg.val
	items := make([]pickerItem, 0, len(msg.val))
	for _, sf := range msg.val {
		f := filterFromSaved(sf, t.filter.PerPage)
		items = append(items, pickerItem{name: sf.Name, detail: f.Describe(t.accountName, t.tagName)})
	}
	return m.PushScreen(newPickerScreen(tabTransactions, "Filtri salvati", items))
}

func (t *transactionsTab) savedFilterPicked(m *Model, msg pickedMsg) tea.Cmd {
	if msg.remove {
		store, name := t.deps.Filters, msg.name
		if store == nil {
			return nil
		}
		return run(t.sc, tabTransactions, savedFiltersKey, func(ctx context.Context) (savedFilterDeleted, error) {
			return savedFilterDeleted{name: name}, store.Delete(ctx, name)
		})
	}
	for _, sf := range t.saved {
		if sf.Name == msg.name {
			m.SetStatus(fmt.Sprintf("Filtro %q applicato", sf.Name))
			return t.load(filterFromSaved(sf, t.filter.PerPage), true)
		}
	}
	return nil
}

func (t *transactionsTab) savedFilterRemoved(m *Model, msg result[savedFilterDeleted]) tea.Cmd {
	if !t.sc.Finish(msg.tok) {
		return nil
	}
	switch {
	case errors.Is(msg.err, repository.ErrNotFound):
		m.SetError(fmt.Sprintf("Filtro %q non trovato", msg.val.name))
	case msg.err != nil:
		m.SetError("Errore: " + msg.err.Error())
	default:
		m.SetStatus(fmt.Sprintf("Filtro %q eliminato", msg.val.name))
	}
	return nil
}
