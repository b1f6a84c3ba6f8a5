// Package apierror defines the error taxonomy surfaced to API clients.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
)

// Kind is a machine-stable error category.
type Kind string

const (
	Validation      Kind = "validation"
	Unauthorized    Kind = "unauthorized"
	Forbidden       Kind = "forbidden"
	NotFound        Kind = "not_found"
	Conflict        Kind = "conflict"
	UpstreamFailure Kind = "upstream_failure"
	Timeout         Kind = "timeout"
	RateLimited     Kind = "rate_limited"
	Canceled        Kind = "canceled"
)

// StatusClientClosedRequest is reported when the caller abandoned the request.
const StatusClientClosedRequest = 499

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Timeout:
		return http.StatusGatewayTimeout
	case RateLimited:
		return http.StatusTooManyRequests
	case Canceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message and Details are shown to clients;
// Err is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

// New builds an error of the given kind.
func New(kind Kind, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap builds an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validationf builds a Validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

// Forbiddenf builds a Forbidden error with a formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, fmt.Sprintf(format, args...))
}

// From classifies err into exactly one kind. Errors already classified pass
// through unchanged.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(Timeout, "the request timed out", err)
	case errors.Is(err, context.Canceled):
		return Wrap(Canceled, "the request was canceled", err)
	case errors.Is(err, repositories.ErrNotFound):
		return Wrap(NotFound, "resource not found", err)
	case errors.Is(err, repositories.ErrConflict):
		return Wrap(Conflict, "resource already exists", err)
	case errors.Is(err, auth.ErrInvalidCredential):
		return Wrap(Unauthorized, "invalid credentials", err)
	case errors.Is(err, auth.ErrRevoked):
		return Wrap(Unauthorized, "refresh token is expired or used", err)
	case errors.Is(err, token.ErrExpired):
		return Wrap(Unauthorized, "token expired", err)
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrSignatureInvalid):
		return Wrap(Unauthorized, "invalid token", err)
	case errors.Is(err, auth.ErrWeakSecret):
		return Wrap(Validation, auth.ErrWeakSecret.Error(), err)
	case errors.Is(err, pagination.ErrInvalidSort):
		return Wrap(Validation, err.Error(), err)
	default:
		return Wrap(UpstreamFailure, "internal server error", err)
	}
}
