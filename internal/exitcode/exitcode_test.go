package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"todoctl/internal/service"
	"todoctl/internal/tasklist"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"invalid input", fmt.Errorf("create: %w", tasklist.ErrInvalidInput), UserError},
		{"not found", tasklist.ErrNotFound, UserError},
		{"anonymous", service.ErrNotAuthenticated, AuthError},
		{"rejected token", &service.APIError{Status: 401, Message: "Token is not valid"}, AuthError},
		{"server error", &service.APIError{Status: 500}, BackendError},
		{"unreachable", fmt.Errorf("%w: refused", service.ErrUnavailable), BackendError},
		{"other", errors.New("boom"), BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromError(tt.err))
		})
	}
}
