package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &APIError{Status: 400, Message: "text is required"}, "text is required"},
		{"wrapped server message", fmt.Errorf("update: %w", &APIError{Status: 404, Message: "Todo not found"}), "Todo not found"},
		{"no message", &APIError{Status: 500}, "could not update task"},
		{"malformed", &APIError{Status: 200, Err: ErrMalformed}, "could not update task"},
		{"unreachable", fmt.Errorf("%w: dial tcp: refused", ErrUnavailable), "could not update task: could not reach server"},
		{"anonymous", ErrNotAuthenticated, "could not update task: not logged in"},
		{"other", errors.New("boom"), "could not update task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageOf(tt.err, "could not update task"))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "request failed with status 502", (&APIError{Status: 502}).Error())
	assert.ErrorIs(t, &APIError{Status: 200, Err: ErrMalformed}, ErrMalformed)
}
