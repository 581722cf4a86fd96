// Package apperr defines the error type shared by the services and the
// HTTP layer. Codes are machine readable; keys identify the failed rule.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	EInternal     = "internal error"
	EInvalid      = "invalid"
	EUnauthorized = "unauthorized"
	ENotFound     = "not found"
	EConflict     = "conflict"
)

// Error keys reported in Msg
const (
	KeySurveyResponseDetailNotFound = "SurveyResponseDetailNotFound"
	KeyNotAuthorised                = "NotAuthorised"
	KeyNotAllowedAccess             = "NotAllowedAccess"
	KeyInvalidSurvey                = "InvalidSurvey"
	KeyInvalidQuestion              = "InvalidQuestion"
	KeyInvalidCycleDates            = "InvalidCycleDates"
	KeyInvalidResponder             = "InvalidResponder"
	KeyInvalidCredentials           = "InvalidCredentials"
	KeyInvalidToken                 = "InvalidToken"
)

// Error carries a code, an optional message, the operation that failed and
// the underlying cause.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err == nil:
		b.WriteString(e.Code)
	}
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// ErrorCode returns the code of the first *Error in the chain. Errors that
// carry no code are internal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return EInternal
}

// ErrorMessage returns the message of the first *Error in the chain that
// has one, falling back to the error text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err != nil {
			return ErrorMessage(e.Err)
		}
		return e.Code
	}
	return err.Error()
}

// Validation returns a client-correctable error.
func Validation(op, key string) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: key}
}

// Authorization returns an error for a caller that may not perform op.
func Authorization(op, key string) *Error {
	return &Error{Code: EUnauthorized, Op: op, Msg: key}
}

// NotFound returns a not found error.
func NotFound(op, format string, args ...interface{}) *Error {
	e := &Error{Code: ENotFound, Op: op}
	if format != "" {
		e.Msg = fmt.Sprintf(format, args...)
	}
	return e
}

// Internal wraps err as an internal failure of op.
func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return ErrorCode(err) == code
}

// HasKey reports whether err carries code and message key.
func HasKey(err error, code, key string) bool {
	return ErrorCode(err) == code && ErrorMessage(err) == key
}
