package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/scope"
	"github.com/jask/mybudget/internal/state"
)

// loginScreen authenticates against the API. ctrl+r switches between
// login and registration. It cannot be dismissed.
type loginScreen struct {
	deps     Deps
	sc       *scope.Scope
	register bool
	fields   fieldSet
	notice   string
	sub      state.Submission
	errs     map[string]string
}

func newLoginScreen(deps Deps, notice string) *loginScreen {
	s := &loginScreen{
		deps:   deps,
		sc:     scope.New(context.Background()),
		notice: notice,
	}
	s.resetFields()
	return s
}

func (s *loginScreen) resetFields() {
	email := s.fields.value("email")
	if s.register {
		s.fields = newFieldSet(
			newField("name", "Nome", "", ""),
			newField("email", "Email", email, "nome@esempio.it"),
			newPasswordField("password", "Password"),
			newPasswordField("password_confirmation", "Conferma"),
		)
	} else {
		s.fields = newFieldSet(
			newField("email", "Email", email, "nome@esempio.it"),
			newPasswordField("password", "Password"),
		)
	}
	s.errs = nil
	s.sub = state.Submission{}
}

func (s *loginScreen) Title() string {
	if s.register {
		return "Registrazione"
	}
	return "Accesso"
}

func (s *loginScreen) Scope() string { return scopeLogin }
func (s *loginScreen) Close()        { s.sc.Close() }

func (s *loginScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case result[api.Session]:
		if !s.sc.Finish(msg.tok) {
			return s, nil, false
		}
		if msg.err != nil {
			s.deps.Log.Info("authentication failed", "register", s.register, "err", msg.err)
			s.sub = s.sub.Reject(errors.New(state.AuthErrorMessage(msg.err)))
			s.errs = state.FieldErrors(msg.err)
			return s, nil, false
		}
		s.sub = s.sub.Succeed("Accesso effettuato")
		sess := msg.val
		return s, func() tea.Msg { return sessionStartedMsg{session: sess} }, false
	case tea.KeyMsg:
		if s.sub.InFlight() {
			return s, nil, false
		}
		switch msg.String() {
		case "ctrl+r":
			s.register = !s.register
			s.resetFields()
			return s, nil, false
		case "tab", "down":
			s.fields.next()
			return s, nil, false
		case "shift+tab", "up":
			s.fields.prev()
			return s, nil, false
		case "enter":
			return s, s.submit(), false
		}
		return s, s.fields.update(msg), false
	}
	return s, nil, false
}

func (s *loginScreen) submit() tea.Cmd {
	client := s.deps.Client
	var (
		err  error
		call func(ctx context.Context) (api.Session, error)
	)
	if s.register {
		reg := api.Registration{
			Name:                 s.fields.value("name"),
			Email:                s.fields.value("email"),
			Password:             s.rawValue("password"),
			PasswordConfirmation: s.rawValue("password_confirmation"),
		}
		err = state.ValidateRegistration(reg)
		call = func(ctx context.Context) (api.Session, error) { return client.Register(ctx, reg) }
	} else {
		creds := api.Credentials{Email: s.fields.value("email"), Password: s.rawValue("password")}
		err = state.ValidateLogin(creds)
		call = func(ctx context.Context) (api.Session, error) { return client.Login(ctx, creds) }
	}
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
	s.sub, s.errs = next, nil
	return run(s.sc, "", "auth", call)
}

// rawValue keeps surrounding spaces, which are significant in passwords.
func (s *loginScreen) rawValue(key string) string {
	for _, f := range s.fields.fields {
		if f.key == key {
			return f.input.Value()
		}
	}
	return ""
}

func (s *loginScreen) View(width, height int) string {
	var lines []string
	if s.notice != "" {
		lines = append(lines, warnStyle.Render(s.notice), "")
	}
	lines = append(lines, s.fields.view(s.errs)...)
	lines = append(lines, "", submissionLine(s.sub))
	hint := "invio accedi · ctrl+r registrati · ctrl+c esci"
	if s.register {
		hint = "invio registrati · ctrl+r accedi · ctrl+c esci"
	}
	lines = append(lines, mutedStyle.Render(hint))
	return strings.Join(lines, "\n")
}
