package client

import (
	"io"
	"sync"
	"time"

	"github.com/omochice/typing-chat/internal/inbox"
	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// DefaultBufferSize is the size of a single blocking read.
const DefaultBufferSize = 1024

// Reader is the read side of a connection as seen by the receive loop.
type Reader interface {
	Read(buf []byte) (int, error)
	Close() error
	Closed() bool
}

// Poster accepts events for the interactive goroutine.
type Poster interface {
	Post(inbox.Event)
}

// ReceiveLoop reads from a connection on a dedicated goroutine and posts
// decoded messages to an inbox. It never touches UI state.
type ReceiveLoop struct {
	conn    Reader
	frames  *protocol.FrameReader
	inbox   Poster
	bufSize int
	now     func() time.Time
	log     *zap.Logger

	once sync.Once
	done chan struct{}
}

// LoopOption configures a ReceiveLoop.
type LoopOption func(*ReceiveLoop)

// WithBufferSize sets the size of each read.
func WithBufferSize(n int) LoopOption {
	return func(l *ReceiveLoop) {
		if n > 0 {
			l.bufSize = n
		}
	}
}

// WithLogger sets the loop logger.
func WithLogger(log *zap.Logger) LoopOption {
	return func(l *ReceiveLoop) { l.log = log }
}

// WithClock replaces time.Now for capture timestamps.
func WithClock(now func() time.Time) LoopOption {
	return func(l *ReceiveLoop) { l.now = now }
}

// NewReceiveLoop creates a loop that reads conn, splits the stream with
// framing and posts to box.
func NewReceiveLoop(conn Reader, framing protocol.Framing, box Poster, opts ...LoopOption) *ReceiveLoop {
	l := &ReceiveLoop{
		conn:    conn,
		frames:  protocol.NewFrameReader(framing),
		inbox:   box,
		bufSize: DefaultBufferSize,
		now:     time.Now,
		log:     zap.NewNop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reads until the connection fails or the peer closes it, then closes
// the connection and posts a single inbox.ConnectionLost. Only the first
// call does anything.
func (l *ReceiveLoop) Run() {
	l.once.Do(l.run)
}

// Done is closed when Run has returned.
func (l *ReceiveLoop) Done() <-chan struct{} {
	return l.done
}

func (l *ReceiveLoop) run() {
	defer close(l.done)

	buf := make([]byte, l.bufSize)
	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			l.handle(buf[:n])
		}
		if err == nil && n == 0 {
			err = io.EOF
		}
		if err != nil {
			l.terminate(err)
			return
		}
	}
}

func (l *ReceiveLoop) handle(chunk []byte) {
	at := l.now()

	frames, err := l.frames.Feed(chunk)
	if err != nil {
		l.log.Warn("discarding unframed input", zap.Int("bytes", len(chunk)), zap.Error(err))
	}

	for _, frame := range frames {
		if len(frame) == 0 {
			continue
		}
		msg, err := protocol.Decode(frame)
		if err != nil {
			l.log.Warn("discarding malformed message", zap.Error(err))
			continue
		}
		l.inbox.Post(inbox.Received{Message: msg, At: at})
	}
}

func (l *ReceiveLoop) terminate(err error) {
	local := l.conn.Closed()
	_ = l.conn.Close()

	if local {
		l.log.Debug("receive loop stopped after local close", zap.Error(err))
	} else {
		l.log.Warn("connection lost", zap.Error(err))
	}
	l.inbox.Post(inbox.ConnectionLost{Err: err, Local: local})
}
