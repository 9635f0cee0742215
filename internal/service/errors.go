package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated indicates a call that needs a session was made
	// without one.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrUnavailable indicates the server could not be reached or timed out.
	ErrUnavailable = errors.New("could not reach server")

	// ErrMalformed indicates a 2xx response whose body could not be parsed.
	ErrMalformed = errors.New("malformed server response")

	// ErrUnsupported indicates the backend does not implement an operation.
	ErrUnsupported = errors.New("not supported by this backend")
)

// APIError is the normalized shape of every failed backend call that got
// an HTTP response. Message holds the server-provided text, if any.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// MessageOf returns the server-provided message carried by err, or
// fallback when there is none.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrUnsupported) {
		return fmt.Sprintf("%s: %v", fallback, rootCause(err))
	}
	return fallback
}

func rootCause(err error) error {
	for _, sentinel := range []error{ErrNotAuthenticated, ErrUnavailable, ErrUnsupported} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}
