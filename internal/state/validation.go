package state

import (
	"errors"
	"sort"
	"strings"

	"github.com/jask/mybudget/internal/api"
)

const (
	MsgTransactionRequired = "Compilare tutti i campi obbligatori (Data, Importo, Conto, almeno 1 Tag)"
	MsgNameRequired        = "Compilare il campo nome"
	MsgSaveFallback        = "Impossibile salvare"
	MsgDeleteFallback      = "Impossibile eliminare"
	MsgBadCredentials      = "Email o password non corretti"
)

// ValidationErrors is a client-side rejection. No request is issued.
// Summary is shown above the form; Fields keys follow the API field names.
type ValidationErrors struct {
	Summary string
	Fields  map[string]string
}

func (v *ValidationErrors) Error() string {
	if v.Summary != "" {
		return v.Summary
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, v.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string]string{}
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = msg
	}
}

func (v *ValidationErrors) orNil() error {
	if v.Summary == "" && len(v.Fields) == 0 {
		return nil
	}
	return v
}

// SaveErrorMessage is the text a form shows after a failed submit.
func SaveErrorMessage(err error) string {
	return failureMessage(err, MsgSaveFallback)
}

// DeleteErrorMessage is the status text after a failed delete.
func DeleteErrorMessage(err error) string {
	return failureMessage(err, MsgDeleteFallback)
}

func failureMessage(err error, fallback string) string {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.IsValidation() {
			if m := apiErr.FirstFieldMessage(); m != "" {
				return m
			}
		}
		if apiErr.Message != "" {
			return "Errore: " + apiErr.Message
		}
	}
	return "Errore: " + fallback
}

// FieldErrors extracts per-field messages from a 422 response.
func FieldErrors(err error) map[string]string {
	apiErr, ok := api.AsError(err)
	if !ok || !apiErr.IsValidation() {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for k := range apiErr.Fields {
		out[k] = apiErr.FieldMessage(k)
	}
	return out
}
