// Package apperror defines the typed error taxonomy surfaced by the
// service layer. The HTTP boundary maps kinds to transport status codes;
// nothing below the boundary inspects error strings.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule_violation"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation_failed"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func BusinessRule(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Internal wraps a storage or transaction failure. The wrapped cause is
// for logs; Message is the only text exposed to callers.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies any error, defaulting to KindInternal for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
