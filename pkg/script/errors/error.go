package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes the type of error encountered while compiling or
// evaluating an expression.
type Kind string

const (
	// KindSyntax is a malformed expression: bad token, unbalanced
	// parentheses, unterminated string, and so on.
	KindSyntax Kind = "syntax"

	// KindUnsafeRegex is a regex pattern rejected by the safety
	// validator before any matching was attempted.
	KindUnsafeRegex Kind = "unsafe_regex"

	// KindType is a runtime type mismatch, such as calling a string
	// method on a number.
	KindType Kind = "type"

	// KindDynamicPattern is a regex-consuming method called with a
	// pattern argument that is not a string literal.
	KindDynamicPattern Kind = "dynamic_pattern"
)

// Error is a rich error with kind, source position, and an optional
// suggested fix.
type Error struct {
	Kind       Kind   // Category of error
	Message    string // Human-readable message
	Column     int    // 1-based column in the expression source (0 if unknown)
	Token      string // Offending token text, if any
	Suggestion string // Suggested fix (optional)
	Err        error  // Wrapped cause, if any
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Kind, e.Message))

	if e.Token != "" {
		sb.WriteString(fmt.Sprintf(" (near %q)", e.Token))
	}
	if e.Column > 0 {
		sb.WriteString(fmt.Sprintf(" at column %d", e.Column))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("; suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// New creates a new error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Syntax creates a syntax error at the given 0-based offset.
func Syntax(offset int, token string, format string, args ...any) *Error {
	return &Error{
		Kind:    KindSyntax,
		Message: fmt.Sprintf(format, args...),
		Column:  offset + 1,
		Token:   token,
	}
}

// WithSuggestion returns a copy of e with the suggestion set.
func (e *Error) WithSuggestion(s string) *Error {
	out := *e
	out.Suggestion = s
	return &out
}

// KindOf returns the kind of err when it is (or wraps) an *Error, or ""
// otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
