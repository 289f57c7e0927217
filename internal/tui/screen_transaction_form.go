package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
)

const (
	txSlotConto        = 3
	txSlotDestinazione = 4
	txSlotTags         = 5
	txSlots            = 6

	maxSuggestions = 6
)

// formOptions are the accounts and tags fetched once per form.
type formOptions struct {
	accounts []api.Account
	tags     []api.Tag
}

type transactionFormScreen struct {
	deps    Deps
	sc      *scope.Scope
	owner   string
	draft   state.TransactionDraft
	fields  fieldSet
	conto   choice
	dest    choice
	search  field
	picker  state.TagPicker
	suggest int
	slot    int
	loading bool
	sub     state.Submission
	errs    map[string]string
}

func newTransactionForm(deps Deps, owner string, target *api.Transaction) *transactionFormScreen {
	draft := state.NewTransactionDraft(target, deps.Now(), deps.DateFormat)
	s := &transactionFormScreen{
		deps:  deps,
		sc:    scope.New(context.Background()),
		owner: owner,
		draft: draft,
		fields: newFieldSet(
			newField("data_operazione", "Data", draft.Data, "gg/mm/aaaa"),
			newField("importo", "Importo", draft.Importo, "-12,50"),
			newField("descrizione", "Descrizione", draft.Descrizione, ""),
		),
		search:  newField("tags", "Tag", "", "cerca tag"),
		picker:  state.NewTagPicker(nil, draft.Tags),
		loading: true,
	}
	s.conto = newChoice("Conto", nil, draft.ContoID)
	s.dest = newChoice("Destinazione", nil, draft.DestinazioneID)
	return s
}

func (s *transactionFormScreen) Title() string {
	if s.draft.Mode() == state.ModeEdit {
		return "Modifica operazione"
	}
	return "Nuova operazione"
}

func (s *transactionFormScreen) Scope() string { return scopeForm }
func (s *transactionFormScreen) Close()        { s.sc.Close() }

// Init fetches the options shown by the selectors.
func (s *transactionFormScreen) Init() tea.Cmd {
	client := s.deps.Client
	return run(s.sc, "", "options", func(ctx context.Context) (formOptions, error) {
		var out formOptions
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			out.accounts, err = client.ListAccounts(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.tags, err = client.ListTags(gctx)
			return err
		})
		err := g.Wait()
		return out, err
	})
}

func (s *transactionFormScreen) applyOptions(opts formOptions) {
	accounts := make([]option, 0, len(opts.accounts))
	for _, a := range opts.accounts {
		accounts = append(accounts, option{id: a.ID, name: a.Nome})
	}
	if s.draft.ContoID == 0 && len(accounts) > 0 {
		s.draft.ContoID = accounts[0].id
	}
	s.conto = newChoice("Conto", accounts, s.draft.ContoID)
	dest := append([]option{{name: "Nessuno"}}, accounts...)
	s.dest = newChoice("Destinazione", dest, s.draft.DestinazioneID)
	s.picker = s.picker.WithAll(opts.tags)
}

func (s *transactionFormScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case result[formOptions]:
		if !s.sc.Finish(msg.tok) {
			return s, nil, false
		}
		s.loading = false
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return s, requireLogin, false
			}
			s.sub = s.sub.Fail(msg.err)
			return s, nil, false
		}
		s.applyOptions(msg.val)
		return s, nil, false
	case result[api.Transaction]:
		if !s.sc.Finish(msg.tok) {
			return s, nil, false
		}
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return s, requireLogin, false
			}
			s.sub = s.sub.Fail(msg.err)
			s.errs = state.FieldErrors(msg.err)
			s.deps.Log.Warn("save transaction failed", "err", msg.err)
			return s, nil, false
		}
		publish(s.deps.Hub, events.TransactionChanged)
		s.sub = s.sub.Succeed(state.SuccessMessage("Operazione", s.draft.Mode()))
		return s, tea.Tick(s.deps.CloseDelay, func(_ time.Time) tea.Msg { return formCloseMsg{} }), false
	case formCloseMsg:
		owner := s.owner
		return s, tea.Batch(func() tea.Msg { return savedMsg{tab: owner} }, StatusCmd(s.sub.Message)), true
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil, false
}

func (s *transactionFormScreen) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return s, nil, !s.sub.InFlight()
	case "ctrl+s":
		return s, s.submit(), false
	case "tab":
		s.focusSlot(s.slot + 1)
		return s, nil, false
	case "shift+tab":
		s.focusSlot(s.slot - 1)
		return s, nil, false
	}
	if s.sub.Phase == state.PhaseSucceeded {
		return s, nil, false
	}
	switch s.slot {
	case txSlotConto, txSlotDestinazione:
		c := &s.conto
		if s.slot == txSlotDestinazione {
			c = &s.dest
		}
		switch msg.String() {
		case "left":
			c.move(-1)
		case "right", " ":
			c.move(1)
		case "enter":
			return s, s.submit(), false
		}
		return s, nil, false
	case txSlotTags:
		return s.handleTagKey(msg)
	}
	if msg.String() == "enter" {
		return s, s.submit(), false
	}
	return s, s.fields.update(msg), false
}

// handleTagKey drives the tag search: typing filters, up/down move
// through suggestions, enter attaches one and backspace on an empty
// query detaches the last tag.
func (s *transactionFormScreen) handleTagKey(msg tea.KeyMsg) (Screen, tea.Cmd, bool) {
	hits := s.suggestions()
	switch msg.String() {
	case "down":
		s.suggest = min(s.suggest+1, max(0, len(hits)-1))
		return s, nil, false
	case "up":
		s.suggest = max(s.suggest-1, 0)
		return s, nil, false
	case "enter":
		if s.picker.Query == "" || len(hits) == 0 {
			return s, s.submit(), false
		}
		s.picker = s.picker.Select(hits[min(s.suggest, len(hits)-1)])
		s.search.input.SetValue("")
		s.suggest = 0
		return s, nil, false
	case "backspace":
		if s.search.input.Value() == "" && len(s.picker.Selected) > 0 {
			last := s.picker.Selected[len(s.picker.Selected)-1]
			s.picker = s.picker.Remove(last.ID)
			return s, nil, false
		}
	}
	var cmd tea.Cmd
	s.search.input, cmd = s.search.input.Update(msg)
	s.picker = s.picker.WithQuery(s.search.input.Value())
	s.suggest = 0
	return s, cmd, false
}

func (s *transactionFormScreen) suggestions() []api.Tag {
	hits := s.picker.Suggestions()
	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	return hits
}

func (s *transactionFormScreen) focusSlot(i int) {
	s.slot = (i + txSlots) % txSlots
	if s.slot < len(s.fields.fields) {
		s.fields.setFocus(s.slot)
	} else {
		for j := range s.fields.fields {
			s.fields.fields[j].input.Blur()
		}
	}
	if s.slot == txSlotTags {
		s.search.input.Focus()
	} else {
		s.search.input.Blur()
	}
}

func (s *transactionFormScreen) collect() state.TransactionDraft {
	d := s.draft
	d.Data = s.fields.value("data_operazione")
	d.Importo = s.fields.value("importo")
	d.Descrizione = s.fields.value("descrizione")
	d.ContoID = s.conto.selected().id
	d.DestinazioneID = s.dest.selected().id
	d.Tags = append([]api.Tag(nil), s.picker.Selected...)
	return d
}

func (s *transactionFormScreen) submit() tea.Cmd {
	if s.loading {
		return nil
	}
	d := s.collect()
	in, err := d.Input(s.deps.DateFormat)
	if err != nil {
		s.sub = s.sub.Reject(err)
		var verr *state.ValidationErrors
		if errors.As(err, &verr) {
			s.errs = verr.Fields
		}
		return nil
	}
	next, ok := s.sub.Begin()
	if !ok {
		return nil
	}
	s.sub, s.errs, s.draft = next, nil, d
	client, id := s.deps.Client, d.ID
	return run(s.sc, "", "submit", func(ctx context.Context) (api.Transaction, error) {
		if id > 0 {
			return client.UpdateTransaction(ctx, id, in)
		}
		return client.CreateTransaction(ctx, in)
	})
}

func (s *transactionFormScreen) View(width, height int) string {
	if s.loading {
		return mutedStyle.Render("Caricamento...")
	}
	lines := s.fields.view(s.errs)
	lines = append(lines, s.conto.view(s.slot == txSlotConto))
	lines = appendFieldError(lines, s.errs["conto_id"])
	lines = append(lines, s.dest.view(s.slot == txSlotDestinazione))
	lines = appendFieldError(lines, s.errs["conto_destinazione_id"])

	label := labelStyle.Render("Tag")
	if s.slot == txSlotTags {
		label = focusStyle.Render("Tag")
	}
	names := make([]string, 0, len(s.picker.Selected))
	for _, t := range s.picker.Selected {
		names = append(names, "["+t.Nome+"]")
	}
	lines = append(lines, label+" "+strings.Join(names, " ")+" "+s.search.input.View())
	lines = appendFieldError(lines, s.errs["tags"])
	if s.slot == txSlotTags && s.picker.Query != "" {
		for i, t := range s.suggestions() {
			prefix := "  "
			if i == s.suggest {
				prefix = "› "
			}
			lines = append(lines, strings.Repeat(" ", 8)+prefix+t.Nome)
		}
	}
	if s.conto.selected().id > 0 && s.dest.selected().id > 0 {
		lines = append(lines, warnStyle.Render("Trasferimento: verrà creata anche l'operazione sul conto di destinazione."))
	}
	lines = append(lines, "", submissionLine(s.sub),
		mutedStyle.Render("tab campo · ←/→ conto · ctrl+s salva · esc annulla"))
	return strings.Join(lines, "\n")
}

func appendFieldError(lines []string, msg string) []string {
	if msg == "" {
		return lines
	}
	return append(lines, strings.Repeat(" ", 15)+errorStyle.Render(msg))
}
