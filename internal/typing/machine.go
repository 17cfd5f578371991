// Package typing derives typing-start and typing-stop notifications from
// local keystrokes.
package typing

import (
	"time"

	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long after the last keystroke the user is
// considered to have stopped typing.
const DefaultIdleTimeout = 2 * time.Second

// State is the local typing state.
type State int

const (
	Idle State = iota
	Typing
)

func (s State) String() string {
	if s == Typing {
		return "typing"
	}
	return "idle"
}

// Transition reports what a call to the machine did.
type Transition int

const (
	None Transition = iota
	Started
	Stopped
)

// Notifier delivers a presence message to the peer.
type Notifier func(protocol.Message) error

// Machine tracks local typing activity.
//
// A Machine is not safe for concurrent use; it belongs to the interactive
// goroutine. Notifications are best effort: a Notifier error is logged,
// counted in Dropped and otherwise discarded, and never affects the state.
type Machine struct {
	sender string
	notify Notifier
	now    func() time.Time
	idle   time.Duration
	log    *zap.Logger

	state        State
	lastActivity time.Time
	dropped      int
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIdleTimeout sets the inactivity period after which typing stops.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Machine) { m.idle = d }
}

// WithLogger sets the logger used for dropped notifications.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// New creates an idle Machine for sender.
func New(sender string, notify Notifier, opts ...Option) *Machine {
	m := &Machine{
		sender: sender,
		notify: notify,
		now:    time.Now,
		idle:   DefaultIdleTimeout,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastActivity = m.now()
	return m
}

// OnKeystroke records activity and announces typing if the machine was idle.
func (m *Machine) OnKeystroke() Transition {
	m.lastActivity = m.now()
	if m.state == Typing {
		return None
	}
	m.state = Typing
	m.send(protocol.TypingStart(m.sender))
	return Started
}

// OnTimeoutCheck announces that typing stopped once more than the idle
// timeout has passed since the last keystroke.
func (m *Machine) OnTimeoutCheck(now time.Time) Transition {
	if m.state != Typing || now.Sub(m.lastActivity) <= m.idle {
		return None
	}
	m.state = Idle
	m.send(protocol.TypingStop(m.sender))
	return Stopped
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// LastActivity returns the time of the last keystroke.
func (m *Machine) LastActivity() time.Time { return m.lastActivity }

// Dropped returns how many notifications failed to send.
func (m *Machine) Dropped() int { return m.dropped }

func (m *Machine) send(msg protocol.Message) {
	if m.notify == nil {
		return
	}
	if err := m.notify(msg); err != nil {
		m.dropped++
		m.log.Debug("typing notification dropped",
			zap.Stringer("kind", msg.Kind),
			zap.Error(err))
	}
}
