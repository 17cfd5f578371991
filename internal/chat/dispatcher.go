package chat

import (
	"github.com/omochice/typing-chat/internal/inbox"
	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// Drainer yields pending inbox events.
type Drainer interface {
	Drain() []inbox.Event
}

// Dispatcher applies inbox events to the UI on the interactive goroutine.
type Dispatcher struct {
	source Drainer
	ui     UI
	self   string
	log    *zap.Logger
}

// NewDispatcher creates a Dispatcher that tags messages from self as own.
func NewDispatcher(source Drainer, ui UI, self string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{source: source, ui: ui, self: self, log: log}
}

// Dispatch drains every pending event in arrival order. It returns
// ErrSessionEnded after applying a ConnectionLost; any events queued behind
// it are dropped.
func (d *Dispatcher) Dispatch() error {
	for _, ev := range d.source.Drain() {
		switch ev := ev.(type) {
		case inbox.Received:
			d.apply(ev)
		case inbox.ConnectionLost:
			if !ev.Local {
				d.ui.ShowError(TitleReceiveError, "Connection lost.")
			}
			return ErrSessionEnded
		}
	}
	return nil
}

func (d *Dispatcher) apply(ev inbox.Received) {
	msg := ev.Message
	switch msg.Kind {
	case protocol.KindChat:
		isSelf := msg.Sender == d.self
		d.ui.AppendChatLine(ev.At, msg.Sender, msg.Body, isSelf)
		if !isSelf {
			d.ui.RingAlert()
		}
	case protocol.KindTypingStart:
		d.ui.SetTypingIndicator(msg.Label())
	case protocol.KindTypingStop:
		d.ui.SetTypingIndicator("")
	default:
		d.log.Warn("ignoring message of unknown kind", zap.Stringer("kind", msg.Kind))
	}
}
