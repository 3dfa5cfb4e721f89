package services

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/roayati/clubs/internal/repository"
)

var (
	ErrNotFound              = repository.ErrNotFound
	ErrDuplicateRegistration = errors.New("student already registered in this term")
	ErrInvalidTransition     = errors.New("registration state does not allow this action")
	ErrTermOverlap           = errors.New("another term of this club overlaps these dates")
	ErrTermFull              = errors.New("term has no available seats")
	ErrTermClosed            = errors.New("term is closed for registration")
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError rejects a write; Fields carries per-field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// invalid builds a ValidationError for a single field.
func invalid(field, msg string) error {
	return NewValidationError(errors.New(msg), FieldError{Field: field, Error: msg})
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

// IsValidation reports whether err (or its cause) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
