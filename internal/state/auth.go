package state

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jask/mybudget/internal/api"
)

const minPasswordLen = 8

// ValidateLogin checks credentials before any request.
func ValidateLogin(c api.Credentials) error {
	v := &ValidationErrors{}
	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		v.add("email", "Email obbligatoria")
	case !strings.Contains(email, "@"):
		v.add("email", "Email non valida")
	}
	if c.Password == "" {
		v.add("password", "Password obbligatoria")
	}
	return v.orNil()
}

// ValidateRegistration checks the register form before any request.
func ValidateRegistration(r api.Registration) error {
	v := &ValidationErrors{}
	if strings.TrimSpace(r.Name) == "" {
		v.add("name", "Nome obbligatorio")
	}
	if err := ValidateLogin(api.Credentials{Email: r.Email, Password: r.Password}); err != nil {
		var le *ValidationErrors
		if errors.As(err, &le) {
			for k, m := range le.Fields {
				v.add(k, m)
			}
		}
	}
	if r.Password != "" && len(r.Password) < minPasswordLen {
		v.add("password", "La password deve contenere almeno 8 caratteri")
	}
	if r.PasswordConfirmation != r.Password {
		v.add("password_confirmation", "Le password non coincidono")
	}
	return v.orNil()
}

// AuthErrorMessage maps a login or register failure to its display text.
func AuthErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return MsgBadCredentials
	}
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.IsValidation() {
			if m := apiErr.FirstFieldMessage(); m != "" {
				return m
			}
		}
		if apiErr.Status >= http.StatusInternalServerError && apiErr.Message == "" {
			return "Errore del server"
		}
		return apiErr.Error()
	}
	return "Errore di connessione: " + err.Error()
}
