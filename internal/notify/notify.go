// Package notify is a queue of short-lived user-facing messages. Each
// message removes itself after its own timeout.
package notify

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// DefaultTimeout applies when Push is given a non-positive timeout.
const DefaultTimeout = 3 * time.Second

// Notification is a single message.
type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Timeout   time.Duration
}

// Notifier is the push side of a Channel. The task list controller depends
// on this instead of the concrete type.
type Notifier interface {
	Push(message string, kind Kind, timeout time.Duration) Notification
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// Channel holds outstanding notifications in insertion order.
type Channel struct {
	mu        sync.Mutex
	items     []Notification
	stops     map[string]func() bool
	listeners []func(Notification)

	now      func() time.Time
	schedule Scheduler
	log      *slog.Logger
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock overrides the creation-time clock.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// WithScheduler overrides how expiry is scheduled.
func WithScheduler(s Scheduler) Option {
	return func(c *Channel) { c.schedule = s }
}

// WithLogger logs every push at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(c *Channel) { c.log = log }
}

// New creates an empty Channel.
func New(opts ...Option) *Channel {
	c := &Channel{
		stops: make(map[string]func() bool),
		now:   time.Now,
		schedule: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push appends a notification and schedules its removal after timeout.
func (c *Channel) Push(message string, kind Kind, timeout time.Duration) Notification {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: c.now(),
		Timeout:   timeout,
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.stops[n.ID] = c.schedule(timeout, func() { c.expire(n.ID) })
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debug("notify", "kind", kind, "message", message, "timeout", timeout)
	}
	for _, fn := range listeners {
		fn(n)
	}
	return n
}

// Dismiss removes a notification before its timeout. Unknown ids are ignored.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	stop := c.stops[id]
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
	c.expire(id)
}

func (c *Channel) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stops, id)
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Active returns the outstanding notifications in insertion order.
func (c *Channel) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Subscribe registers fn to be called with every pushed notification.
func (c *Channel) Subscribe(fn func(Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

var _ Notifier = (*Channel)(nil)
