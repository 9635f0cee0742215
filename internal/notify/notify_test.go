package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler records scheduled callbacks so tests can fire them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	after   time.Duration
	fn      func()
	stopped bool
}

func (m *manualScheduler) schedule(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, scheduled{after: d, fn: f})
	i := len(m.pending) - 1
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.pending[i].stopped = true
		return true
	}
}

func (m *manualScheduler) fire(i int) {
	m.mu.Lock()
	s := m.pending[i]
	m.mu.Unlock()
	if !s.stopped {
		s.fn()
	}
}

func messages(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func TestPush_InsertionOrderAndIndependentExpiry(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched.schedule))

	c.Push("first", Info, time.Second)
	c.Push("second", Success, 5*time.Second)
	c.Push("third", Error, 2*time.Second)
	assert.Equal(t, []string{"first", "second", "third"}, messages(c.Active()))

	// Expire the middle one first: the others stay in order.
	sched.fire(1)
	assert.Equal(t, []string{"first", "third"}, messages(c.Active()))

	sched.fire(0)
	assert.Equal(t, []string{"third"}, messages(c.Active()))

	assert.Equal(t, time.Second, sched.pending[0].after)
	assert.Equal(t, 5*time.Second, sched.pending[1].after)
}

func TestPush_DefaultTimeoutAndFields(t *testing.T) {
	sched := &manualScheduler{}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(WithScheduler(sched.schedule), WithClock(func() time.Time { return at }))

	n := c.Push("saved", Success, 0)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, Success, n.Kind)
	assert.Equal(t, at, n.CreatedAt)
	assert.Equal(t, DefaultTimeout, n.Timeout)
	assert.Equal(t, DefaultTimeout, sched.pending[0].after)
}

func TestPush_UniqueIDsForSameMessage(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched.schedule))
	a := c.Push("same", Info, time.Second)
	b := c.Push("same", Info, time.Second)
	assert.NotEqual(t, a.ID, b.ID)

	sched.fire(0)
	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
}

func TestDismiss(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched.schedule))
	n := c.Push("bye", Warning, time.Second)

	c.Dismiss(n.ID)
	assert.Empty(t, c.Active())
	assert.True(t, sched.pending[0].stopped)

	c.Dismiss("unknown")
	assert.Empty(t, c.Active())
}

func TestSubscribe(t *testing.T) {
	c := New(WithScheduler((&manualScheduler{}).schedule))
	var got []Kind
	c.Subscribe(func(n Notification) { got = append(got, n.Kind) })

	c.Push("a", Info, 0)
	c.Push("b", Error, 0)
	assert.Equal(t, []Kind{Info, Error}, got)
}

func TestSubscribe_ListenerMaySubscribeDuringPush(t *testing.T) {
	c := New(WithScheduler((&manualScheduler{}).schedule))
	var first, second int
	c.Subscribe(func(n Notification) {
		first++
		if first == 1 {
			c.Subscribe(func(Notification) { second++ })
		}
	})

	c.Push("a", Info, 0)
	assert.Equal(t, 0, second, "listener added during a push sees only later pushes")
	c.Push("b", Info, 0)
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestPush_RealTimerExpires(t *testing.T) {
	c := New()
	c.Push("short", Info, 10*time.Millisecond)
	require.Len(t, c.Active(), 1)

	assert.Eventually(t, func() bool { return len(c.Active()) == 0 }, time.Second, 5*time.Millisecond)
}
