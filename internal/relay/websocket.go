package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

type wsConn struct {
	conn       *websocket.Conn
	remoteAddr string
}

func (c wsConn) Write(data []byte) error {
	return c.conn.Write(context.Background(), websocket.MessageText, data)
}

func (c wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

func (c wsConn) RemoteAddr() string { return c.remoteAddr }

// WebSocketServer accepts WebSocket peers on a single path.
type WebSocketServer struct {
	address  string
	path     string
	listener net.Listener
	hub      *Hub
	peers    peerSet
	server   *http.Server
	wg       sync.WaitGroup
}

// NewWebSocketServer creates a WebSocket listener for hub serving path.
func NewWebSocketServer(address, path string, hub *Hub) *WebSocketServer {
	return &WebSocketServer{address: address, path: path, hub: hub}
}

// Start binds the address and serves in the background.
func (s *WebSocketServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start WebSocket relay: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebSocket)
	s.server = &http.Server{Handler: mux}

	s.hub.log.Info("WebSocket relay started",
		zap.String("address", listener.Addr().String()),
		zap.String("path", s.path))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.hub.log.Warn("WebSocket relay stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the HTTP server down, disconnects the peers this server
// accepted and waits for their goroutines to finish.
func (s *WebSocketServer) Stop() {
	if s.server != nil {
		_ = s.server.Shutdown(context.Background())
	}
	s.peers.closeAll()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *WebSocketServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.hub.log.Warn("failed to accept WebSocket connection", zap.Error(err))
		return
	}

	peer := newPeer(wsConn{conn: conn, remoteAddr: r.RemoteAddr})
	if !s.peers.add(peer) {
		_ = conn.Close(websocket.StatusGoingAway, "relay stopping")
		return
	}
	s.hub.Register(peer)

	s.wg.Add(2)
	go s.handlePeer(peer, conn)
	go func() {
		defer s.wg.Done()
		s.hub.writeLoop(peer)
	}()
}

func (s *WebSocketServer) handlePeer(p *Peer, conn *websocket.Conn) {
	defer s.wg.Done()
	defer s.peers.remove(p)
	defer s.hub.Unregister(p)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		s.hub.Broadcast(data)
	}
}
