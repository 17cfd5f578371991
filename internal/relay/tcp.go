package relay

import (
	"bytes"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

const readBufferSize = 4096

type tcpConn struct {
	conn net.Conn
}

func (c tcpConn) Write(data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

func (c tcpConn) Close() error       { return c.conn.Close() }
func (c tcpConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// TCPServer accepts raw TCP peers.
type TCPServer struct {
	address  string
	listener net.Listener
	hub      *Hub
	peers    peerSet
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewTCPServer creates a TCP listener for hub.
func NewTCPServer(address string, hub *Hub) *TCPServer {
	return &TCPServer{
		address: address,
		hub:     hub,
		quit:    make(chan struct{}),
	}
}

// Start binds the address and accepts peers in the background.
func (s *TCPServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP relay: %w", err)
	}
	s.listener = listener
	s.hub.log.Info("TCP relay started", zap.String("address", listener.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener, disconnects the peers this server accepted and
// waits for their goroutines to finish.
func (s *TCPServer) Stop() {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.peers.closeAll()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *TCPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *TCPServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.hub.log.Warn("failed to accept TCP connection", zap.Error(err))
				continue
			}
		}

		peer := newPeer(tcpConn{conn: conn})
		if !s.peers.add(peer) {
			_ = conn.Close()
			continue
		}
		s.hub.Register(peer)

		s.wg.Add(2)
		go s.handlePeer(peer, conn)
		go func() {
			defer s.wg.Done()
			s.hub.writeLoop(peer)
		}()
	}
}

func (s *TCPServer) handlePeer(p *Peer, conn net.Conn) {
	defer s.wg.Done()
	defer s.peers.remove(p)
	defer s.hub.Unregister(p)
	defer conn.Close()

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.hub.Broadcast(bytes.Clone(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
