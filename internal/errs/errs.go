// Package errs defines the error-kind taxonomy shared across the
// retrieval engine and RAG orchestration layer, and the propagation
// policy attached to each kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories named in spec §7, each with
// its own propagation policy.
type Kind string

const (
	// ConfigMissing: startup, missing provider key. Policy: fail startup loudly.
	ConfigMissing Kind = "config_missing"
	// ModelUnavailable: embedder or translator cannot load. Policy: start degraded.
	ModelUnavailable Kind = "model_unavailable"
	// IndexLoadError: per-file load failure. Policy: log and skip.
	IndexLoadError Kind = "index_load_error"
	// RetrievalEmpty: query yielded nothing. Not an error; informational only.
	RetrievalEmpty Kind = "retrieval_empty"
	// ProviderTransient: LLM/translator network failure. Policy: fixed apology, log cause.
	ProviderTransient Kind = "provider_transient"
	// ProviderInvalidOutput: empty/malformed provider response. Same policy as ProviderTransient.
	ProviderInvalidOutput Kind = "provider_invalid_output"
	// SessionNotFound: unknown session_id. Policy: create implicitly, not surfaced.
	SessionNotFound Kind = "session_not_found"
	// Cancelled: caller disconnect. Policy: abort cheaply, no session mutation.
	Cancelled Kind = "cancelled"
)

// Error wraps an underlying cause with a Kind and the operation that
// produced it, so callers can branch on Kind via errors.As without
// parsing strings.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error for the given kind and operation.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
