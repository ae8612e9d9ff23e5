package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrRelationNotFound   = errors.New("relation not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrSelfSubscription   = errors.New("cannot subscribe to yourself")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrShoppingListEmpty  = errors.New("shopping list is empty")
	ErrCatalogNotEmpty    = errors.New("ingredient catalog is not empty")
)

// ValidationError reports a rejected input field. Err, when set, classifies the failure
// further (for example ErrConflict for a taken email).
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every rejected field of one request.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Fields renders the errors as field -> messages, the shape returned to API clients.
func (e ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	for field := range out {
		sort.Strings(out[field])
	}
	return out
}

func invalid(field, message string) error {
	return ValidationErrors{{Field: field, Message: message}}
}

func conflict(field, message string) error {
	return ValidationErrors{{Field: field, Message: message, Err: ErrConflict}}
}

// Unwrap lets errors.Is see classification errors of the contained fields.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, fe := range e {
		errs = append(errs, fe)
	}
	return errs
}

// DetailError carries a client facing message for a classified failure.
type DetailError struct {
	Detail string
	Err    error
}

func (e *DetailError) Error() string {
	return e.Detail
}

func (e *DetailError) Unwrap() error {
	return e.Err
}

func detail(kind error, message string) error {
	return &DetailError{Detail: message, Err: kind}
}
