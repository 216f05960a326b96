package errors

import "errors"

// Common application errors for type-safe error handling.
// These errors can be checked using errors.Is() instead of string comparison.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrUpload     = errors.New("upload failed")
	ErrStore      = errors.New("store operation failed")
)

// kindError tags an underlying error with one of the sentinel kinds above.
// Its message is the underlying message so callers can surface it as-is.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Validation marks err as missing or malformed caller input.
func Validation(msg string) error { return wrap(ErrValidation, errors.New(msg)) }

// Upload marks err as a collaborator failure during photo creation.
func Upload(err error) error { return wrap(ErrUpload, err) }

// Store marks err as a persistence failure outside of creation.
func Store(err error) error { return wrap(ErrStore, err) }
