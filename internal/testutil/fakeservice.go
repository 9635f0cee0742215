// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"todoctl/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = &service.APIError{Status: 404, Message: "Todo not found"}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	users  map[string]fakeAccount // email -> account
	nextID int

	// Calls counts invocations per method name.
	Calls map[string]int

	// Error injection for testing
	RegisterErr   error
	LoginErr      error
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// RegisterIssuesToken controls whether Register returns a token.
	RegisterIssuesToken bool
}

type fakeAccount struct {
	user     service.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]fakeAccount),
		Calls: make(map[string]int),
	}
}

// AddUser adds an account that can log in.
func (f *FakeService) AddUser(username, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := service.User{ID: "u" + strconv.Itoa(f.nextID), Username: username, Email: email}
	f.users[email] = fakeAccount{user: u, password: password}
	return u
}

// AddTask adds a task and returns it.
func (f *FakeService) AddTask(id, text string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: id, Text: text, Completed: completed}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of the server-side tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneTasks(f.tasks)
}

// CallCount returns how many times method was invoked.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.Calls[method]++
	f.mu.Unlock()
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.Auth, error) {
	f.record("Register")
	if f.RegisterErr != nil {
		return service.Auth{}, f.RegisterErr
	}
	f.mu.RLock()
	_, exists := f.users[reg.Email]
	f.mu.RUnlock()
	if exists {
		return service.Auth{}, &service.APIError{Status: 400, Message: "User already exists"}
	}
	u := f.AddUser(reg.Username, reg.Email, reg.Password)
	if !f.RegisterIssuesToken {
		return service.Auth{User: u}, nil
	}
	return service.Auth{Token: "token-" + u.ID, User: u}, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.Auth, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.Auth{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	acct, ok := f.users[creds.Email]
	if !ok || acct.password != creds.Password {
		return service.Auth{}, &service.APIError{Status: 401, Message: "Invalid credentials"}
	}
	return service.Auth{Token: "token-" + acct.user.ID, User: acct.user}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneTasks(f.tasks), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, text string) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.newTaskID(), Text: text}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// newTaskID returns the next "tN" id not taken by a task added with
// AddTask. Callers hold f.mu.
func (f *FakeService) newTaskID() string {
	for {
		f.nextID++
		id := "t" + strconv.Itoa(f.nextID)
		if !slices.ContainsFunc(f.tasks, func(t service.Task) bool { return t.ID == id }) {
			return id
		}
	}
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		applyUpdate(&f.tasks[i], upd)
		return cloneTask(f.tasks[i]), nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func applyUpdate(t *service.Task, upd service.TaskUpdate) {
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.Text != nil {
		t.Text = *upd.Text
	}
	if upd.EstimatedMinutes != nil {
		t.EstimatedMinutes = service.Minutes(*upd.EstimatedMinutes)
	}
}

func cloneTask(t service.Task) service.Task {
	if t.EstimatedMinutes != nil {
		t.EstimatedMinutes = service.Minutes(*t.EstimatedMinutes)
	}
	return t
}

func cloneTasks(in []service.Task) []service.Task {
	out := make([]service.Task, len(in))
	for i, t := range in {
		out[i] = cloneTask(t)
	}
	return out
}

var _ service.Service = (*FakeService)(nil)
