// Package apperror carries business-rule failures from services to the HTTP
// error handler. Every error has a kind and the status it maps to, so
// handlers never decide status codes on their own.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindDependency   Kind = "dependency"
	KindInternal     Kind = "internal"
)

// Error is a classified failure. Message is safe to show to clients; Err is
// the lower-level cause, if any, and is only logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message)
}

// Dependency wraps a failure of a collaborator (store, mail provider).
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Status: http.StatusInternalServerError, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
}

// From returns the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if ae, ok := From(err); ok {
		return ae.Kind
	}
	return KindInternal
}

// StatusOf reports the HTTP status for err, 500 for unclassified errors.
func StatusOf(err error) int {
	if ae, ok := From(err); ok {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text a client sees for err. Wrapping context added with
// fmt.Errorf is kept for business errors; dependency and internal failures only
// expose their generic message.
func PublicMessage(err error) string {
	ae, ok := From(err)
	if !ok {
		return "Internal Server Error"
	}
	switch ae.Kind {
	case KindDependency, KindInternal:
		return ae.Message
	}
	return err.Error()
}
