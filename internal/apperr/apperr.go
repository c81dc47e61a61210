// Package apperr defines the error kinds surfaced by the promotion engine.
// Callers match kinds with errors.Is; messages carry the specifics.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced promotion, progress record, requirement
	// or employee that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvariant marks a request that would break a lifecycle or ownership
	// rule (wrong source state, wrong actor, second active promotion).
	ErrInvariant = errors.New("invariant violation")

	// ErrValidation marks malformed input rejected before any state change.
	ErrValidation = errors.New("validation error")
)

// kindError attaches a kind to a human-readable message.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NotFound returns an error of kind ErrNotFound.
func NotFound(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Invariant returns an error of kind ErrInvariant.
func Invariant(format string, args ...any) error {
	return &kindError{kind: ErrInvariant, msg: fmt.Sprintf(format, args...)}
}

// Validation returns an error of kind ErrValidation.
func Validation(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Kind returns the sentinel kind of err, or nil if err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvariant, ErrValidation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
