// Package apperror defines the typed error taxonomy returned across Otter's
// tool dispatcher boundary. Every error that can reach an MCP caller is a
// *Error carrying a stable Kind, a human-readable Message, and zero or more
// Suggestions the caller can act on.
package apperror

import "fmt"

// Kind identifies one of the fixed error categories the dispatcher contract
// promises callers. Kinds are stable strings: callers may switch on them.
type Kind string

const (
	// KindDependencyMissing means a required external binary (language
	// server, debug adapter, runtime) could not be found.
	KindDependencyMissing Kind = "dependency_missing"
	// KindRuntimeNotResolved means the runtime resolver could not settle on
	// an interpreter/toolchain for the requested language in this project.
	KindRuntimeNotResolved Kind = "runtime_not_resolved"
	// KindAdapterUnavailable means a debug adapter is configured but failed
	// to start or does not support a requested capability.
	KindAdapterUnavailable Kind = "adapter_unavailable"
	// KindNotOpenOrNotAttached means the target buffer/session/client the
	// caller referenced does not exist or is not in the required state.
	KindNotOpenOrNotAttached Kind = "not_open_or_not_attached"
	// KindLSPFailed wraps an error returned by a language server.
	KindLSPFailed Kind = "lsp_failed"
	// KindDAPFailed wraps an error returned by a debug adapter.
	KindDAPFailed Kind = "dap_failed"
	// KindSessionNotFound means a debug session ID does not resolve to any
	// retained session, live or evicted.
	KindSessionNotFound Kind = "session_not_found"
	// KindInvalidRange means a caller-supplied line/column range failed
	// validation (out of bounds, end before start, etc).
	KindInvalidRange Kind = "invalid_range"
	// KindAmbiguousSymbol means a symbol lookup matched more than one
	// candidate and the caller must disambiguate.
	KindAmbiguousSymbol Kind = "ambiguous_symbol"
	// KindTimeout means an operation did not complete within its deadline.
	KindTimeout Kind = "timeout"
	// KindNotImplemented means the operation is recognized but intentionally
	// unimplemented (see SPEC_FULL.md Open Questions).
	KindNotImplemented Kind = "not_implemented"
	// KindResourceExhausted means a configured concurrency cap (attached
	// LSP clients, active debug sessions) was already at its limit; the
	// broker does not queue indefinitely, it fails the request.
	KindResourceExhausted Kind = "resource_exhausted"
	// KindInternal means a lower layer returned an error with no more
	// specific Kind attached. Every service-layer function is expected to
	// return a properly-kinded *Error; this exists only as the dispatcher's
	// last-resort wrapper so a bare error never crosses the tool boundary
	// unlabeled.
	KindInternal Kind = "internal"
)

// Error is the single error type that crosses the tool dispatcher boundary.
// It never wraps an opaque internal error without attaching a Kind.
type Error struct {
	Kind        Kind
	Message     string
	Suggestions []string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs an Error with no suggestions and no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and Message to an underlying cause, preserving it for
// errors.Unwrap/errors.Is callers while still exposing a stable Kind at the
// dispatcher boundary.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithSuggestions returns a copy of e with Suggestions set. It does not
// mutate e, so the same base Error can be reused as a template.
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	cp := *e
	cp.Suggestions = suggestions
	return &cp
}

// Is reports whether err is an *Error of the given kind. It is the intended
// way for callers to branch on error category without a type assertion.
func Is(err error, kind Kind) bool {
	ae, ok := err.(*Error)
	if !ok {
		return false
	}
	return ae.Kind == kind
}

// As extracts the *Error from err, if it is one.
func As(err error) (*Error, bool) {
	ae, ok := err.(*Error)
	return ae, ok
}

// DependencyMissing reports a missing external binary with install
// suggestions attached.
func DependencyMissing(what string, suggestions ...string) *Error {
	return Newf(KindDependencyMissing, "%s is not available on this system", what).WithSuggestions(suggestions...)
}

// RuntimeNotResolved reports that no runtime could be resolved for language
// in the given project root.
func RuntimeNotResolved(language, projectRoot string, suggestions ...string) *Error {
	return Newf(KindRuntimeNotResolved, "could not resolve a %s runtime for %s", language, projectRoot).
		WithSuggestions(suggestions...)
}

// AdapterUnavailable reports that a debug adapter for language could not be
// started or does not support a requested capability.
func AdapterUnavailable(language, reason string) *Error {
	return Newf(KindAdapterUnavailable, "debug adapter for %s unavailable: %s", language, reason)
}

// NotOpenOrNotAttached reports that the referenced resource is not in the
// required state (buffer not open, client not attached).
func NotOpenOrNotAttached(what string) *Error {
	return Newf(KindNotOpenOrNotAttached, "%s is not open or not attached", what)
}

// LSPFailed wraps a language server error.
func LSPFailed(cause error, op string) *Error {
	return Wrap(KindLSPFailed, cause, fmt.Sprintf("language server request %s failed", op))
}

// DAPFailed wraps a debug adapter error.
func DAPFailed(cause error, op string) *Error {
	return Wrap(KindDAPFailed, cause, fmt.Sprintf("debug adapter request %s failed", op))
}

// SessionNotFound reports that id does not resolve to any retained debug
// session.
func SessionNotFound(id string) *Error {
	return Newf(KindSessionNotFound, "debug session %s not found", id)
}

// InvalidRange reports a caller-supplied range that failed validation.
func InvalidRange(reason string) *Error {
	return Newf(KindInvalidRange, "invalid range: %s", reason)
}

// AmbiguousSymbol reports that count candidates matched a symbol lookup.
func AmbiguousSymbol(name string, count int) *Error {
	return Newf(KindAmbiguousSymbol, "%d candidates matched %q, disambiguate by location", count, name)
}

// TimeoutErr reports that op did not complete before its deadline.
func TimeoutErr(op string) *Error {
	return Newf(KindTimeout, "%s timed out", op)
}

// NotImplemented reports that op is recognized but intentionally
// unimplemented.
func NotImplemented(op string) *Error {
	return New(KindNotImplemented, fmt.Sprintf("%s is not implemented", op))
}

// ResourceExhausted reports that the configured cap on concurrent
// resources of the given kind (e.g. "LSP clients", "debug sessions") has
// already been reached.
func ResourceExhausted(resource string, limit int64) *Error {
	return Newf(KindResourceExhausted, "%s limit of %d reached", resource, limit).
		WithSuggestions("close an existing session or client before starting another", "raise the configured limit in .otter.toml")
}
