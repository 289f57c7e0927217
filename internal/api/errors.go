package api

import (
	"errors"
	"net/http"
	"sort"
)

// ErrUnauthorized is matched (errors.Is) by any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a failed request the server answered.
type Error struct {
	Status  int
	Message string
	// Fields holds 422 field-level messages.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if t := http.StatusText(e.Status); t != "" {
		return t
	}
	return "request failed"
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsValidation reports whether the server rejected the payload field by field.
func (e *Error) IsValidation() bool {
	return e.Status == http.StatusUnprocessableEntity
}

// FirstFieldMessage returns the first field message by field name order.
func (e *Error) FirstFieldMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// FieldMessage returns the first message for field.
func (e *Error) FieldMessage(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
