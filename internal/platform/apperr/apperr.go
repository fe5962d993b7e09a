// Package apperr defines the error kinds handlers return and the single
// mapping from those kinds to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hengadev/errsx"
)

// Kind categorizes an error for the purpose of choosing a response.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInternal           Kind = "internal"
)

// Error is a categorized application error. Message is safe to show to the
// caller; Cause is logged but never written to a response.
type Error struct {
	Kind    Kind
	Message string
	Details errsx.Map
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation returns a validation error. details may be nil.
func Validation(message string, details errsx.Map) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

// Internal wraps an unexpected failure. The caller sees a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Cause: cause}
}

// FromValidation turns an errsx.Map produced by a model's Validate into a
// validation error. A nil err yields nil.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var details errsx.Map
	if errors.As(err, &details) {
		return Validation("validation failed", details)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Validation(err.Error(), nil)
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for every error.
type Response struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// Render converts err into a status code and response body. Anything that is
// not an *Error becomes a generic 500.
func Render(err error) (int, Response) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, Response{Error: "internal server error"}
	}
	if appErr.Kind == KindInternal {
		return http.StatusInternalServerError, Response{Error: "internal server error"}
	}
	return StatusFor(appErr.Kind), Response{Error: appErr.Message, Details: flatten(appErr.Details)}
}

func flatten(details errsx.Map) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for field, msg := range details {
		out[field] = fmt.Sprint(msg)
	}
	return out
}
