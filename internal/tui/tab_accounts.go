package tui

import (
	"context"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/state"
	"github.com/jask/mybudget/internal/tui/widgets"
)

const tabAccounts = "accounts"

func newAccountsTab(deps Deps) *listTab[api.Account] {
	client := deps.Client
	return newListTab(deps, entityList[api.Account]{
		id:     tabAccounts,
		title:  "Conti",
		scope:  scopeAccounts,
		entity: "Conto",
		empty:  "Nessun conto. Premi n per crearne uno.",
		topic:  events.AccountChanged,
		columns: []widgets.Column{
			{Title: "Nome"},
			{Title: "Saldo", Width: 16, Right: true},
		},
		row: func(a api.Account) []string {
			return []string{a.Nome, deps.Money.FormatPtr(a.SaldoTotale)}
		},
		key:    func(a api.Account) int64 { return a.ID },
		name:   func(a api.Account) string { return a.Nome },
		fetch:  client.ListAccounts,
		remove: client.DeleteAccount,
		form:   newAccountForm,
		// balances move with every transaction
		watch: []events.Topic{events.TransactionChanged},
	})
}

func newAccountForm(deps Deps, owner string, target *api.Account) Screen {
	draft := state.NewAccountDraft(target)
	client := deps.Client
	return newNameFormScreen(deps, nameFormOpts{
		entity: "Conto",
		owner:  owner,
		topic:  events.AccountChanged,
		mode:   draft.Mode(),
		nome:   draft.Nome,
		validate: func(nome string) error {
			d := draft
			d.Nome = nome
			return d.Validate()
		},
		save: func(ctx context.Context, nome string) error {
			d := draft
			d.Nome = nome
			if d.Mode() == state.ModeEdit {
				_, err := client.UpdateAccount(ctx, d.ID, d.Input())
				return err
			}
			_, err := client.CreateAccount(ctx, d.Input())
			return err
		},
	})
}
