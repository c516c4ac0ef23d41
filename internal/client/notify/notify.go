// Package notify holds the single transient error message shown to the user.
package notify

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a message stays visible when no TTL is configured.
const DefaultTTL = 5 * time.Second

// Notifier keeps at most one message. A new message replaces the old one and
// restarts the expiry timer; an expired or cancelled timer never clears a newer message.
type Notifier struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.Mutex
	msg      string
	deadline time.Time
	gen      uint64
	timer    clockwork.Timer
	onChange func(msg string)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock replaces the real clock (tests use clockwork.NewFakeClock).
func WithClock(c clockwork.Clock) Option { return func(n *Notifier) { n.clock = c } }

// WithTTL sets the message lifetime; non-positive values keep DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.ttl = d
		}
	}
}

// New constructs a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{clock: clockwork.NewRealClock(), ttl: DefaultTTL}
	for _, o := range opts {
		o(n)
	}
	return n
}

// OnChange registers the single listener called after every change, outside the lock.
func (n *Notifier) OnChange(fn func(msg string)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Show replaces the current message and schedules its removal after the TTL.
// An empty message is the same as Clear.
func (n *Notifier) Show(msg string) {
	if msg == "" {
		n.Clear()
		return
	}
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	gen := n.gen
	n.msg = msg
	n.deadline = n.clock.Now().Add(n.ttl)
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.expire(gen) })
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}

// Clear removes the current message and cancels its timer.
func (n *Notifier) Clear() {
	n.mu.Lock()
	if n.msg == "" && n.timer == nil {
		n.mu.Unlock()
		return
	}
	n.stopLocked()
	n.gen++
	n.msg = ""
	n.deadline = time.Time{}
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

// Message returns the current message, empty when none.
func (n *Notifier) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

// Deadline returns when the current message expires (zero when none).
func (n *Notifier) Deadline() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.deadline
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		// superseded by a later Show/Clear
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.msg = ""
	n.deadline = time.Time{}
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
