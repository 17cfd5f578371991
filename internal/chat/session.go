package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omochice/typing-chat/internal/inbox"
	"github.com/omochice/typing-chat/internal/typing"
	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// Session is one connected chat session. It owns the local identity, the
// connection's write side, the typing state machine and the dispatcher.
//
// Apart from Close, a Session is driven from the interactive goroutine only.
type Session struct {
	id       string
	username string
	conn     Conn
	inbox    *inbox.Inbox
	typing   *typing.Machine
	dispatch *Dispatcher
	log      *zap.Logger
	receiver <-chan struct{}

	closeOnce sync.Once
	closeErr  error
}

type sessionOptions struct {
	log      *zap.Logger
	now      func() time.Time
	idle     time.Duration
	receiver <-chan struct{}
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithLogger sets the session logger. The session ID is added to it.
func WithLogger(log *zap.Logger) Option {
	return func(o *sessionOptions) { o.log = log }
}

// WithClock replaces time.Now for typing activity.
func WithClock(now func() time.Time) Option {
	return func(o *sessionOptions) { o.now = now }
}

// WithIdleTimeout sets how long after the last keystroke typing stops.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *sessionOptions) { o.idle = d }
}

// WithReceiver registers the receive goroutine's done channel; Close waits
// for it.
func WithReceiver(done <-chan struct{}) Option {
	return func(o *sessionOptions) { o.receiver = done }
}

// NewSession creates a session for username over conn. Inbound events are
// read from box and applied to ui.
func NewSession(username string, conn Conn, ui UI, box *inbox.Inbox, opts ...Option) (*Session, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, err
	}

	o := sessionOptions{
		log:  zap.NewNop(),
		now:  time.Now,
		idle: typing.DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	log := o.log.With(zap.String("session", id), zap.String("user", username))

	s := &Session{
		id:       id,
		username: username,
		conn:     conn,
		inbox:    box,
		dispatch: NewDispatcher(box, ui, username, log),
		log:      log,
		receiver: o.receiver,
	}
	s.typing = typing.New(username, s.notifyTyping,
		typing.WithClock(o.now),
		typing.WithIdleTimeout(o.idle),
		typing.WithLogger(log))

	log.Info("session started")
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Username returns the local identity.
func (s *Session) Username() string { return s.username }

// TypingState returns the local typing state.
func (s *Session) TypingState() typing.State { return s.typing.State() }

// SendChat sends text as a chat message. Input that is blank after trimming
// is ignored. An error is fatal for the session.
func (s *Session) SendChat(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	payload, err := protocol.EncodeChat(s.username, text)
	if err != nil {
		return err
	}
	if err := s.conn.Send(payload); err != nil {
		s.log.Error("chat send failed", zap.Error(err))
		return fmt.Errorf("failed to send chat message: %w", err)
	}
	s.log.Debug("chat sent", zap.Int("bytes", len(payload)))
	return nil
}

// Keystroke records local typing activity.
func (s *Session) Keystroke() {
	s.typing.OnKeystroke()
}

// Tick runs the periodic typing timeout check and drains the inbox.
func (s *Session) Tick(now time.Time) error {
	s.typing.OnTimeoutCheck(now)
	return s.Drain()
}

// Drain applies pending inbound events to the UI. It returns
// ErrSessionEnded once the connection is lost.
func (s *Session) Drain() error {
	return s.dispatch.Dispatch()
}

// Ready signals that inbound events are waiting.
func (s *Session) Ready() <-chan struct{} {
	return s.inbox.Ready()
}

// Close closes the connection and waits for the receive goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
		if s.receiver != nil {
			<-s.receiver
		}
		s.log.Info("session closed")
	})
	return s.closeErr
}

func (s *Session) notifyTyping(msg protocol.Message) error {
	payload, err := msg.Encode()
	if err != nil {
		return err
	}
	return s.conn.Send(payload)
}
