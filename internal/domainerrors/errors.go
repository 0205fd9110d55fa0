// Package domainerrors provides coded errors shared by services and the HTTP
// layer. Services return these; transport translates codes to status codes.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport translation and audit outcomes.
type Code string

const (
	// CodeInvalidInput marks requests rejected before any stage runs
	// (missing transcript/audio, unsupported language, malformed body).
	CodeInvalidInput Code = "invalid_input"

	// CodeCollaborator marks failures of an external collaborator
	// (speech-to-text, text generation, store, transmitter).
	CodeCollaborator Code = "collaborator_error"

	// CodeForbidden marks policy violations: transmission without explicit
	// confirmation or without the required permission scope.
	CodeForbidden Code = "forbidden"

	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error carries a code plus a human-readable message and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			break
		}
	}
	return false
}

// CodeOf returns the outermost code on err, or CodeInternal when uncoded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
