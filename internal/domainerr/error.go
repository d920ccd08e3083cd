// Package domainerr is the shared error taxonomy for santa's orchestration
// core: every fallible operation across the config resolver, composer,
// planner, driver, and watcher returns (or wraps) an *Error carrying a Kind
// from this package.
package domainerr

import (
	"fmt"
	"strings"
)

// Kind classifies an error for routing, retry, and security decisions.
type Kind string

const (
	KindConfig        Kind = "config"
	KindParse         Kind = "parse"
	KindPackageSource Kind = "package_source"
	KindCommandFailed Kind = "command_failed"
	KindTimeout       Kind = "timeout"
	KindSecurity      Kind = "security"
	KindCache         Kind = "cache"
	KindIO            Kind = "io"
	KindValidation    Kind = "validation"
	KindCancelled     Kind = "cancelled"
)

// Error is a user-facing error carrying a Kind, a message, optional
// context/suggestion strings, and an optional wrapped cause.
type Error struct {
	Kind       Kind
	Message    string
	Context    string
	Suggestion string
	Underlying error
}

// New creates an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}
	return b.String()
}

// Unwrap supports errors.Is/errors.As through the wrapped cause.
func (e *Error) Unwrap() error { return e.Underlying }

// Is supports errors.Is comparison against another *Error by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Format returns a multi-line, fully detailed rendering of the error.
func (e *Error) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  at: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  caused by: %s", e.Underlying.Error())
	}
	return b.String()
}

// WithContext returns a copy of e with Context set.
func (e *Error) WithContext(ctx string) *Error {
	cp := *e
	cp.Context = ctx
	return &cp
}

// WithSuggestion returns a copy of e with Suggestion set.
func (e *Error) WithSuggestion(s string) *Error {
	cp := *e
	cp.Suggestion = s
	return &cp
}

// WithUnderlying returns a copy of e wrapping err.
func (e *Error) WithUnderlying(err error) *Error {
	cp := *e
	cp.Underlying = err
	return &cp
}

// IsSecurityError reports whether err is, or wraps, a KindSecurity error.
// Security errors are never retryable and must always surface at the top level.
func IsSecurityError(err error) bool {
	return Category(err) == KindSecurity
}

// IsRetryable reports whether retrying the operation that produced err is
// reasonable. Only Timeout and Io are retryable; Security is explicitly never.
func IsRetryable(err error) bool {
	switch Category(err) {
	case KindTimeout, KindIO:
		return true
	default:
		return false
	}
}

// Category extracts the Kind from err, walking its Unwrap chain. Returns ""
// if err is not, and does not wrap, a *Error.
func Category(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// List accumulates multiple errors for comprehensive reporting, e.g. from a
// validation pass that wants to report every failure at once rather than
// aborting on the first.
type List struct {
	errors []*Error
}

// NewList creates an empty List.
func NewList() *List { return &List{} }

// Add appends err to the list, ignoring nil.
func (l *List) Add(err *Error) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation appends a KindValidation error scoped to field.
func (l *List) AddValidation(field, message string) {
	l.Add(&Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Context: field,
	})
}

// HasErrors reports whether any errors were added.
func (l *List) HasErrors() bool { return len(l.errors) > 0 }

// Errors returns a copy of the accumulated errors.
func (l *List) Errors() []*Error {
	out := make([]*Error, len(l.errors))
	copy(out, l.errors)
	return out
}

// Error implements the error interface, summarizing every accumulated error.
func (l *List) Error() string {
	switch len(l.errors) {
	case 0:
		return ""
	case 1:
		return l.errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
		for i, err := range l.errors {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
		}
		return b.String()
	}
}

// AsError returns l as an error, or nil if empty.
func (l *List) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}
