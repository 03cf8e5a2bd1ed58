// Package errkind names the error taxonomy shared across the module as
// errors.Is-compatible sentinel values, rather than ad hoc string
// matching.
package errkind

import "errors"

// Sentinels identify the error kinds named by the design: Validation,
// IO, Compatibility, and Embedder failures. Timeout and Cancelled are not
// surfaced as errors — they are observable as a missing or truncated
// SearchResult sequence — so no sentinel exists for them.
var (
	ErrValidation   = errors.New("validation error")
	ErrIO           = errors.New("io error")
	ErrCompatibility = errors.New("compatibility error")
	ErrEmbedder     = errors.New("embedder error")
)

// Wrap annotates err so that errors.Is(wrapped, kind) succeeds, preserving
// the original error's message and chain.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }
