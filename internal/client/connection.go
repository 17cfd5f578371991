package client

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Stream is a raw bidirectional byte stream to the server.
type Stream interface {
	// Read receives data from the server
	Read(buf []byte) (int, error)

	// Write sends data to the server
	Write(data []byte) (int, error)

	// Close closes the stream
	Close() error

	// RemoteAddr returns the server address
	RemoteAddr() net.Addr
}

// tcpStream wraps net.Conn for TCP connections
type tcpStream struct {
	conn net.Conn
}

func newTCPStream(conn net.Conn) *tcpStream {
	return &tcpStream{conn: conn}
}

func (s *tcpStream) Read(buf []byte) (int, error)   { return s.conn.Read(buf) }
func (s *tcpStream) Write(data []byte) (int, error) { return s.conn.Write(data) }
func (s *tcpStream) Close() error                   { return s.conn.Close() }
func (s *tcpStream) RemoteAddr() net.Addr           { return s.conn.RemoteAddr() }

// wsStream carries the byte stream over WebSocket text frames using
// gobwas/ws. A frame larger than the caller's buffer is handed out over
// several reads.
type wsStream struct {
	conn   net.Conn
	rw     io.ReadWriter
	mu     sync.Mutex
	buffer []byte
}

func newWSStream(conn net.Conn, br *bufio.Reader) *wsStream {
	var r io.Reader = conn
	if br != nil {
		r = br
	}
	return &wsStream{
		conn: conn,
		rw: struct {
			io.Reader
			io.Writer
		}{r, conn},
	}
}

func (s *wsStream) Read(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buffer) == 0 {
		data, _, err := wsutil.ReadServerData(s.rw)
		if err != nil {
			return 0, err
		}
		s.buffer = data
	}

	n := copy(buf, s.buffer)
	s.buffer = s.buffer[n:]
	if len(s.buffer) == 0 {
		s.buffer = nil
	}
	return n, nil
}

func (s *wsStream) Write(data []byte) (int, error) {
	if err := wsutil.WriteClientText(s.conn, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (s *wsStream) Close() error {
	_ = wsutil.WriteClientMessage(s.conn, ws.OpClose, nil)
	return s.conn.Close()
}

func (s *wsStream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
