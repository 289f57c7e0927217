package tui

import (
	"context"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/state"
	"github.com/jask/mybudget/internal/tui/widgets"
)

const tabTags = "tags"

func newTagsTab(deps Deps) *listTab[api.Tag] {
	client := deps.Client
	return newListTab(deps, entityList[api.Tag]{
		id:      tabTags,
		title:   "Tag",
		scope:   scopeTags,
		entity:  "Tag",
		empty:   "Nessun tag. Premi n per crearne uno.",
		topic:   events.TagChanged,
		columns: []widgets.Column{{Title: "Nome"}},
		row:     func(t api.Tag) []string { return []string{t.Nome} },
		key:     func(t api.Tag) int64 { return t.ID },
		name:    func(t api.Tag) string { return t.Nome },
		fetch:   client.ListTags,
		remove:  client.DeleteTag,
		form:    newTagForm,
	})
}

func newTagForm(deps Deps, owner string, target *api.Tag) Screen {
	draft := state.NewTagDraft(target)
	client := deps.Client
	return newNameFormScreen(deps, nameFormOpts{
		entity: "Tag",
		owner:  owner,
		topic:  events.TagChanged,
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
				_, err := client.UpdateTag(ctx, d.ID, d.Input())
				return err
			}
			_, err := client.CreateTag(ctx, d.Input())
			return err
		},
	})
}
