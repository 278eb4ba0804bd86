// Package apperr holds the error kinds surfaced at the HTTP boundary.
// Use errors.Is with the Err* sentinels to test a kind, errors.As with *Error
// to read the field messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrPermission marks a role or scope that may not perform the action.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound marks a missing (or invisible) row.
	ErrNotFound = errors.New("not found")
	// ErrDomain marks an undefined aggregate, e.g. IPS over zero grades.
	ErrDomain = errors.New("domain error")
	// ErrUnauthenticated marks a missing or invalid bearer token.
	ErrUnauthenticated = errors.New("authentication required")
)

// Error carries a kind, a human readable detail and optional per-field messages.
type Error struct {
	Kind   error
	Detail string
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(detail string) *Error {
	return &Error{Kind: ErrValidation, Detail: detail}
}

// FieldValidation reports one message for one field.
func FieldValidation(field, msg string) *Error {
	return &Error{Kind: ErrValidation, Detail: msg, Fields: map[string][]string{field: {msg}}}
}

// Conflict names the field whose uniqueness was violated.
func Conflict(field, msg string) *Error {
	return &Error{Kind: ErrConflict, Detail: msg, Fields: map[string][]string{field: {msg}}}
}

func Permission(detail string) *Error {
	return &Error{Kind: ErrPermission, Detail: detail}
}

func NotFound(what string) *Error {
	return &Error{Kind: ErrNotFound, Detail: what + " not found"}
}

func Domain(detail string) *Error {
	return &Error{Kind: ErrDomain, Detail: detail}
}

func Unauthenticated(detail string) *Error {
	return &Error{Kind: ErrUnauthenticated, Detail: detail}
}

// With adds a field message and returns e for chaining.
func (e *Error) With(field, msg string) *Error {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// FieldsOf returns the field messages of err, if it is an *Error.
func FieldsOf(err error) map[string][]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// DetailOf returns the detail text of err, falling back to err.Error().
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}
