package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
)

// formCloseMsg fires after the success delay of a form.
type formCloseMsg struct{}

// nameFormOpts configures a form with a single nome field, shared by
// accounts and tags.
type nameFormOpts struct {
	entity   string
	owner    string
	topic    events.Topic
	mode     state.Mode
	nome     string
	validate func(nome string) error
	save     func(ctx context.Context, nome string) error
}

type nameFormScreen struct {
	opts   nameFormOpts
	deps   Deps
	sc     *scope.Scope
	fields fieldSet
	sub    state.Submission
	errs   map[string]string
}

func newNameFormScreen(deps Deps, opts nameFormOpts) *nameFormScreen {
	return &nameFormScreen{
		opts:   opts,
		deps:   deps,
		sc:     scope.New(context.Background()),
		fields: newFieldSet(newField("nome", "Nome", opts.nome, "nome")),
	}
}

func (s *nameFormScreen) Title() string {
	if s.opts.mode == state.ModeEdit {
		return "Modifica " + strings.ToLower(s.opts.entity)
	}
	return "Nuovo " + strings.ToLower(s.opts.entity)
}

func (s *nameFormScreen) Scope() string { return scopeForm }
func (s *nameFormScreen) Close()        { s.sc.Close() }

func (s *nameFormScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case result[struct{}]:
		if !s.sc.Finish(msg.tok) {
			return s, nil, false
		}
		if msg.err != nil {
			if isAuthErr(msg.err) {
				return s, requireLogin, false
			}
			s.sub = s.sub.Fail(msg.err)
			s.errs = state.FieldErrors(msg.err)
			s.deps.Log.Warn("save failed", "entity", s.opts.entity, "err", msg.err)
			return s, nil, false
		}
		publish(s.deps.Hub, s.opts.topic)
		s.sub = s.sub.Succeed(state.SuccessMessage(s.opts.entity, s.opts.mode))
		return s, tea.Tick(s.deps.CloseDelay, func(_ time.Time) tea.Msg { return formCloseMsg{} }), false
	case formCloseMsg:
		owner := s.opts.owner
		return s, tea.Batch(func() tea.Msg { return savedMsg{tab: owner} }, StatusCmd(s.sub.Message)), true
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if s.sub.InFlight() {
				return s, nil, false
			}
			return s, nil, true
		case "enter", "ctrl+s":
			return s, s.submit(), false
		}
		if s.sub.Phase == state.PhaseSucceeded {
			return s, nil, false
		}
		return s, s.fields.update(msg), false
	}
	return s, nil, false
}

func (s *nameFormScreen) submit() tea.Cmd {
	nome := s.fields.value("nome")
	if err := s.opts.validate(nome); err != nil {
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
	s.sub, s.errs = next, nil
	save := s.opts.save
	return run(s.sc, "", "submit", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, save(ctx, nome)
	})
}

func (s *nameFormScreen) View(width, height int) string {
	lines := s.fields.view(s.errs)
	lines = append(lines, "", submissionLine(s.sub), mutedStyle.Render("invio salva · esc annulla"))
	return strings.Join(lines, "\n")
}

func submissionLine(sub state.Submission) string {
	switch sub.Phase {
	case state.PhaseSubmitting:
		return mutedStyle.Render("Salvataggio...")
	case state.PhaseSucceeded:
		return successStyle.Render(sub.Message)
	case state.PhaseFailed:
		return errorStyle.Render(sub.Message)
	}
	return ""
}
