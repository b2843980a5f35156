package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP edge
type Kind int

const (
	KindInternal Kind = iota
	KindConfig
	KindUnauthorized
	KindBadRequest
	KindForbidden
	KindTooManyRequests
)

// Common errors for the authentication core
var (
	// Session errors
	ErrUnauthorized = errors.New("unauthorized")

	// OAuth handshake errors
	ErrMissingOAuthState = errors.New("missing oauth state")
	ErrMissingPKCE       = errors.New("missing pkce verifier")
	ErrInvalidOAuthState = errors.New("invalid oauth state")

	// CSRF errors
	ErrMissingCSRFHeader = errors.New("missing csrf header")
	ErrMissingCSRFCookie = errors.New("missing csrf cookie")
	ErrCSRFMismatch      = errors.New("csrf token mismatch")

	// General errors
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal server error")
)

const internalMessage = "internal server error"

// AppError carries a Kind alongside the client-visible message and the underlying cause
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Config(format string, args ...any) *AppError {
	return &AppError{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized never carries detail; cause is kept for logging only.
func Unauthorized(cause error) *AppError {
	if cause == nil {
		cause = ErrUnauthorized
	}
	return &AppError{Kind: KindUnauthorized, Err: cause}
}

func BadRequest(format string, args ...any) *AppError {
	return &AppError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// BadRequestErr uses err's text as the client-visible message
func BadRequestErr(err error) *AppError {
	return &AppError{Kind: KindBadRequest, Err: err}
}

// ForbiddenErr uses err's text as the client-visible message
func ForbiddenErr(err error) *AppError {
	return &AppError{Kind: KindForbidden, Err: err}
}

func TooManyRequests() *AppError {
	return &AppError{Kind: KindTooManyRequests, Err: ErrTooManyRequests}
}

func Internal(err error) *AppError {
	if err == nil {
		err = ErrInternal
	}
	return &AppError{Kind: KindInternal, Err: err}
}

// KindOf returns the Kind of the first AppError in err's chain, KindInternal otherwise
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode maps err onto an HTTP status
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to a client.
// Config, internal and unclassified errors are flattened.
func PublicMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return internalMessage
	}
	switch appErr.Kind {
	case KindUnauthorized:
		return "unauthorized"
	case KindTooManyRequests:
		return "too many requests"
	case KindBadRequest, KindForbidden:
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Error()
	default:
		return internalMessage
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes err as {"error": "..."} with the status reflecting its Kind
func WriteJSON(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(errorBody{Error: PublicMessage(err)})
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
