// Package client owns the stream connection to the chat server: dialing,
// framed sends, teardown and the background receive loop.
package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// Transports understood by Manager.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// State is the connection state owned by a Manager.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures how a Manager reaches the server.
type Options struct {
	// Transport is TransportTCP or TransportWebSocket. Empty means TCP.
	Transport string

	// Framing delimits payloads on the stream. Nil means line framing.
	Framing protocol.Framing

	// WSPath is the request path of the WebSocket endpoint.
	WSPath string
}

// Manager establishes connections and tracks their state.
// No timeouts are applied beyond the OS defaults; wrap ctx to add one.
type Manager struct {
	opts Options
	log  *zap.Logger

	mu    sync.Mutex
	state State
}

// NewManager creates a Manager in the disconnected state.
func NewManager(opts Options, log *zap.Logger) *Manager {
	if opts.Framing == nil {
		opts.Framing = protocol.LineFraming{}
	}
	if opts.Transport == "" {
		opts.Transport = TransportTCP
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{opts: opts, log: log}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens a stream to host:port. It never retries.
func (m *Manager) Connect(ctx context.Context, host string, port int) (*Connection, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	stream, err := m.dial(ctx, address)
	if err != nil {
		m.setState(StateFailed)
		m.log.Error("connect failed", zap.String("address", address), zap.Error(err))
		return nil, &ConnectError{Address: address, Err: err}
	}

	m.setState(StateConnected)
	m.log.Info("connected",
		zap.String("address", address),
		zap.String("transport", m.opts.Transport),
		zap.String("framing", m.opts.Framing.Name()))

	return &Connection{m: m, stream: stream, framing: m.opts.Framing}, nil
}

func (m *Manager) dial(ctx context.Context, address string) (Stream, error) {
	switch m.opts.Transport {
	case TransportTCP:
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, err
		}
		return newTCPStream(conn), nil
	case TransportWebSocket:
		url := "ws://" + address + m.opts.WSPath
		conn, br, _, err := ws.Dial(ctx, url)
		if err != nil {
			return nil, err
		}
		return newWSStream(conn, br), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", m.opts.Transport)
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateConnected {
		m.state = StateFailed
		m.log.Warn("connection failed", zap.Error(err))
	}
}

func (m *Manager) released() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateConnected {
		m.state = StateDisconnected
	}
}

// Connection is an established stream. Send is called from the interactive
// goroutine and Read from the receive loop. Close may come from either and
// is serialized with Send.
type Connection struct {
	m       *Manager
	stream  Stream
	framing protocol.Framing

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// Send frames payload and writes all of it.
func (c *Connection) Send(payload []byte) error {
	if c.closed.Load() {
		return ErrNotConnected
	}

	framed, err := c.framing.Frame(payload)
	if err != nil {
		return fmt.Errorf("failed to frame message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.stream.Write(framed); err != nil {
		c.m.fail(err)
		return &SendError{Err: err}
	}
	return nil
}

// Read performs one blocking read from the stream.
func (c *Connection) Read(buf []byte) (int, error) {
	n, err := c.stream.Read(buf)
	if err != nil && !c.closed.Load() {
		c.m.fail(err)
	}
	return n, err
}

// Close releases the stream. It waits for a write in progress so a
// closing frame never lands inside another frame. Subsequent calls return
// the first result.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.writeMu.Lock()
		c.closeErr = c.stream.Close()
		c.writeMu.Unlock()

		c.m.released()
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// RemoteAddr returns the server address.
func (c *Connection) RemoteAddr() string {
	return c.stream.RemoteAddr().String()
}
