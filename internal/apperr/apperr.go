// Package apperr defines the error kinds surfaced by the registry and the
// context ingestor.
//
// Every kind is an *Error carrying a machine-readable Code. errors.Is matches
// on Code, so callers compare against the exported sentinels:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code string

const (
	CodeDuplicateEntity        Code = "ERR_DUPLICATE_ENTITY"
	CodeNotFound               Code = "ERR_NOT_FOUND"
	CodeNotADirectory          Code = "ERR_NOT_A_DIRECTORY"
	CodeDegradedRead           Code = "ERR_DEGRADED_READ"
	CodeExternalServiceFailure Code = "ERR_EXTERNAL_SERVICE"
	CodeMissingCredential      Code = "ERR_MISSING_CREDENTIAL"
)

// Error is a typed failure with an operator-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Sentinels for errors.Is.
var (
	ErrDuplicateEntity        = &Error{Code: CodeDuplicateEntity}
	ErrNotFound               = &Error{Code: CodeNotFound}
	ErrNotADirectory          = &Error{Code: CodeNotADirectory}
	ErrDegradedRead           = &Error{Code: CodeDegradedRead}
	ErrExternalServiceFailure = &Error{Code: CodeExternalServiceFailure}
	ErrMissingCredential      = &Error{Code: CodeMissingCredential}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newf(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

func DuplicateEntity(format string, args ...any) error {
	return newf(CodeDuplicateEntity, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(CodeNotFound, nil, format, args...)
}

func NotADirectory(path string) error {
	return newf(CodeNotADirectory, nil, "%s is not a directory", path)
}

// DegradedRead reports content that could not be read or extracted. It is a
// soft failure: batch operations record it and continue.
func DegradedRead(path string, cause error) error {
	return newf(CodeDegradedRead, cause, "could not read %s", path)
}

func ExternalServiceFailure(cause error, format string, args ...any) error {
	return newf(CodeExternalServiceFailure, cause, format, args...)
}

// MissingCredential names the environment variable that must be set.
func MissingCredential(envVar string) error {
	return newf(CodeMissingCredential, nil, "missing %s; export it before running", envVar)
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
