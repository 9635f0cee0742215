// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tasklist"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, unknown task).
	UserError = 1

	// AuthError indicates a missing or rejected session.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// FromError maps an operation error to an exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	if errors.Is(err, tasklist.ErrInvalidInput) || errors.Is(err, tasklist.ErrNotFound) ||
		errors.Is(err, session.ErrIncomplete) {
		return UserError
	}
	if errors.Is(err, service.ErrNotAuthenticated) {
		return AuthError
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403) {
		return AuthError
	}
	return BackendError
}
