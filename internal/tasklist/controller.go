// Package tasklist mirrors the authenticated user's tasks in memory and
// applies each change through the backend, keeping the server's version
// of every task it touches.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"todoctl/internal/notify"
	"todoctl/internal/service"
)

var (
	// ErrInvalidInput is returned when an action is rejected before any
	// request is sent.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned for an id that is not in the local collection.
	ErrNotFound = errors.New("task not found")
)

// Fallback messages used when the server supplies none.
const (
	MsgLoadFailed   = "could not load tasks"
	MsgCreateFailed = "could not create task"
	MsgUpdateFailed = "could not update task"
	MsgDeleteFailed = "could not delete task"
)

// ErrorTimeout keeps error notifications up longer than the default.
const ErrorTimeout = 4 * time.Second

// Stats summarizes the collection.
type Stats struct {
	Total            int
	Completed        int
	Pending          int
	EstimatedMinutes int
}

// Controller owns the local task collection. It is safe for concurrent use;
// requests are made without holding the lock.
type Controller struct {
	svc   service.Service
	notes notify.Notifier
	log   *slog.Logger

	mu     sync.RWMutex
	tasks  []service.Task
	loaded bool
}

// New creates a controller with an empty collection.
func New(svc service.Service, notes notify.Notifier, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{svc: svc, notes: notes, log: log}
}

// Load replaces the collection with the server's list. On failure the
// previous collection is kept.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		return c.fail(err, MsgLoadFailed)
	}

	c.mu.Lock()
	c.tasks = cloneAll(tasks)
	c.loaded = true
	c.mu.Unlock()
	c.log.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// Create adds a task with the trimmed text.
func (c *Controller) Create(ctx context.Context, text string) (service.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, c.invalid("task text must not be empty")
	}

	task, err := c.svc.CreateTask(ctx, text)
	if err != nil {
		return service.Task{}, c.fail(err, MsgCreateFailed)
	}

	c.mu.Lock()
	if i := c.indexOf(task.ID); i >= 0 {
		c.tasks[i] = clone(task)
	} else {
		c.tasks = append(c.tasks, clone(task))
	}
	c.mu.Unlock()
	c.notes.Push("task added", notify.Success, 0)
	return task, nil
}

// Toggle flips the completed flag of the task with id.
func (c *Controller) Toggle(ctx context.Context, id string) (service.Task, error) {
	current, ok := c.Find(id)
	if !ok {
		return service.Task{}, c.missing(id)
	}
	task, err := c.update(ctx, id, service.TaskUpdate{Completed: service.Bool(!current.Completed)})
	if err != nil {
		return service.Task{}, err
	}
	if task.Completed {
		c.notes.Push("task completed", notify.Success, 0)
	} else {
		c.notes.Push("task reopened", notify.Success, 0)
	}
	return task, nil
}

// Rename replaces the text of the task with id.
func (c *Controller) Rename(ctx context.Context, id, text string) (service.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, c.invalid("task text must not be empty")
	}
	if _, ok := c.Find(id); !ok {
		return service.Task{}, c.missing(id)
	}
	task, err := c.update(ctx, id, service.TaskUpdate{Text: service.String(text)})
	if err != nil {
		return service.Task{}, err
	}
	c.notes.Push("task updated", notify.Success, 0)
	return task, nil
}

// SetEstimate sets the estimated duration of the task with id.
func (c *Controller) SetEstimate(ctx context.Context, id string, minutes int) (service.Task, error) {
	if minutes < 0 {
		return service.Task{}, c.invalid("estimate must not be negative")
	}
	if _, ok := c.Find(id); !ok {
		return service.Task{}, c.missing(id)
	}
	task, err := c.update(ctx, id, service.TaskUpdate{EstimatedMinutes: service.Minutes(minutes)})
	if err != nil {
		return service.Task{}, err
	}
	c.notes.Push("estimate set to "+FormatMinutes(minutes), notify.Success, 0)
	return task, nil
}

// Remove deletes the task with id.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if _, ok := c.Find(id); !ok {
		return c.missing(id)
	}
	if err := c.svc.DeleteTask(ctx, id); err != nil {
		return c.fail(err, MsgDeleteFailed)
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	}
	c.mu.Unlock()
	c.notes.Push("task deleted", notify.Success, 0)
	return nil
}

func (c *Controller) update(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	task, err := c.svc.UpdateTask(ctx, id, upd)
	if err != nil {
		return service.Task{}, c.fail(err, MsgUpdateFailed)
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.tasks[i] = clone(task)
	}
	c.mu.Unlock()
	return task, nil
}

// Tasks returns a copy of the collection in server order.
func (c *Controller) Tasks() []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.tasks)
}

// Loaded reports whether a Load has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Filter returns the tasks whose text contains query, ignoring case. An
// empty query returns every task.
func (c *Controller) Filter(query string) []service.Task {
	return Match(c.Tasks(), query)
}

// Match is Filter over an arbitrary slice.
func Match(tasks []service.Task, query string) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether the task text contains query, ignoring case.
func Matches(t service.Task, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return q == "" || strings.Contains(strings.ToLower(t.Text), q)
}

// Find returns the task with id.
func (c *Controller) Find(id string) (service.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return clone(c.tasks[i]), true
	}
	return service.Task{}, false
}

// Stats counts the collection.
func (c *Controller) Stats() Stats {
	return Summarize(c.Tasks())
}

// Summarize counts tasks.
func Summarize(tasks []service.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if t.EstimatedMinutes != nil {
			s.EstimatedMinutes += *t.EstimatedMinutes
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) invalid(msg string) error {
	c.notes.Push(msg, notify.Warning, 0)
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func (c *Controller) missing(id string) error {
	c.notes.Push("task not found", notify.Warning, 0)
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (c *Controller) fail(err error, fallback string) error {
	msg := service.MessageOf(err, fallback)
	c.log.Debug("task request failed", "op", fallback, "err", err)
	c.notes.Push(msg, notify.Error, ErrorTimeout)
	return fmt.Errorf("%s: %w", fallback, err)
}

func clone(t service.Task) service.Task {
	if t.EstimatedMinutes != nil {
		t.EstimatedMinutes = service.Minutes(*t.EstimatedMinutes)
	}
	return t
}

func cloneAll(in []service.Task) []service.Task {
	out := make([]service.Task, len(in))
	for i, t := range in {
		out[i] = clone(t)
	}
	return out
}
