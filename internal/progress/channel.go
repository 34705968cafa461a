package progress

import "sync"

// Channel is the push abstraction between one prune run and one
// observer. Events are delivered in emission order, never reordered or
// batched. One Channel instance is scoped to exactly one run; the
// pipeline calls Close on completion or fatal error, after which the
// Events channel is closed and further Emit calls are dropped.
type Channel struct {
	events chan Event

	mu     sync.Mutex
	closed bool
}

// DefaultBuffer is the default event buffer size. The buffer only
// smooths bursts; ordering comes from the single underlying channel.
const DefaultBuffer = 64

// NewChannel creates a channel with the given buffer size.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Channel{events: make(chan Event, buffer)}
}

// Emit delivers one event. It blocks when the buffer is full, which is
// the backpressure: the pipeline cannot outrun a slow consumer without
// bound. Emit on a closed channel is a silent no-op so a cancelled run
// cannot panic the pipeline.
func (c *Channel) Emit(ev Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	// Hold the lock across the send so Close cannot race the send and
	// close the channel under us.
	defer c.mu.Unlock()
	c.events <- ev
}

// Events returns the receive side for the transport to drain.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close terminates the stream. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
