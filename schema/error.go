package schema

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Use errors.Is to classify any error returned by this module.
var (
	// ErrNetworkFailure means the transport could not reach the server.
	ErrNetworkFailure = errors.New("network failure")
	// ErrUnauthorized means the server rejected the credential (401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRefreshExhausted means the refresh call failed and the session ended.
	ErrRefreshExhausted = errors.New("session ended")
	// ErrValidationFailure means a credential payload could not be decoded.
	ErrValidationFailure = errors.New("malformed credential payload")
	// ErrRejected means the endpoint refused the request for any other reason.
	ErrRejected = errors.New("request rejected")
)

// Error is a classified failure carrying the server message verbatim.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%v: status %d", e.Kind, e.Status)
	}
	return e.Kind.Error()
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error
func NewError(kind error, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// NewNetworkFailure wraps a transport error
func NewNetworkFailure(err error) *Error {
	return &Error{Kind: ErrNetworkFailure, Err: err}
}

// FromStatus classifies a non-2xx HTTP status
func FromStatus(status int, message string) *Error {
	kind := ErrRejected
	if status == http.StatusUnauthorized {
		kind = ErrUnauthorized
	}
	return &Error{Kind: kind, Status: status, Message: message}
}
