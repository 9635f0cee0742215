// Package service defines the backend-agnostic interface for the todo API.
package service

import "context"

// Service defines the interface for task backend operations.
// Commands and the task list controller never import a backend directly.
type Service interface {
	// Register creates an account and returns the issued session.
	Register(ctx context.Context, reg Registration) (Auth, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, creds Credentials) (Auth, error)

	// ListTasks returns the authenticated user's tasks in API order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns the server's representation.
	CreateTask(ctx context.Context, text string) (Task, error)

	// UpdateTask applies the non-nil fields of upd and returns the server's
	// representation of the task.
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
