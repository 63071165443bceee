// Package errs provides the unified error type used across ddlexport.
//
// The extraction layer wraps driver-level errors into *errs.Error before
// returning them; the CLI uses the Is* predicates to decide the exit prefix
// without importing driver packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error without exposing driver-specific codes.
type Kind int

const (
	KindUnexpected Kind = iota // filesystem failures, bugs, everything else
	KindConnection             // cannot reach the database
	KindAuth                   // credentials rejected
	KindQuery                  // a catalog query failed
	KindExport                 // rendering or writing the document failed
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuth:
		return "auth"
	case KindQuery:
		return "query"
	case KindExport:
		return "export"
	default:
		return "unexpected"
	}
}

// Error is the single error type produced by the extraction and export
// layers. The original driver error is preserved as Cause for logging.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsDatabase reports whether err was surfaced by the catalog layer:
// a connection failure, an authentication failure, or a failed query.
func IsDatabase(err error) bool {
	switch kindOf(err) {
	case KindConnection, KindAuth, KindQuery:
		return true
	}
	return false
}

// IsConnection reports whether err is a connectivity failure.
func IsConnection(err error) bool {
	return kindOf(err) == KindConnection
}

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool {
	return kindOf(err) == KindAuth
}

// IsQuery reports whether err is a failed catalog query.
func IsQuery(err error) bool {
	return kindOf(err) == KindQuery
}

// IsExport reports whether err occurred while rendering or writing the
// output document.
func IsExport(err error) bool {
	return kindOf(err) == KindExport
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
