// Package inbox hands events from the receive goroutine to the interactive
// goroutine.
package inbox

import (
	"sync"
	"time"

	"github.com/omochice/typing-chat/pkg/protocol"
)

// Event is an entry posted to the Inbox.
type Event interface {
	event()
}

// Received carries a decoded message and the time it was read.
type Received struct {
	Message protocol.Message
	At      time.Time
}

// ConnectionLost is posted once when the receive loop terminates.
// Local is set when the connection was closed by this process.
type ConnectionLost struct {
	Err   error
	Local bool
}

func (Received) event()       {}
func (ConnectionLost) event() {}

// Inbox is an unbounded, mutex-protected FIFO queue. Any goroutine may Post;
// a single consumer drains it.
type Inbox struct {
	mu     sync.Mutex
	events []Event
	ready  chan struct{}
}

// New creates an empty Inbox.
func New() *Inbox {
	return &Inbox{ready: make(chan struct{}, 1)}
}

// Post appends ev and signals Ready. It never blocks.
func (b *Inbox) Post(ev Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Drain removes and returns all pending events in arrival order.
func (b *Inbox) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Len returns the number of pending events.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Ready receives a value after one or more Posts since it was last read.
// A signal may be stale if the events were already drained.
func (b *Inbox) Ready() <-chan struct{} {
	return b.ready
}
