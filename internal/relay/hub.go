// Package relay is the minimal broadcast server chat clients connect to.
// Every byte a peer sends is forwarded unchanged to every connected peer,
// the sender included, across both TCP and WebSocket listeners.
package relay

import (
	"sync"

	"go.uber.org/zap"
)

const outgoingBuffer = 64

// Peer is one connected client.
type Peer struct {
	conn     peerConn
	outgoing chan []byte
}

type peerConn interface {
	Write(data []byte) error
	Close() error
	RemoteAddr() string
}

func newPeer(conn peerConn) *Peer {
	return &Peer{conn: conn, outgoing: make(chan []byte, outgoingBuffer)}
}

// peerSet tracks the peers one server accepted so that Stop can close them.
type peerSet struct {
	mu     sync.Mutex
	peers  map[*Peer]struct{}
	closed bool
}

// add reports false once closeAll has run; the caller must drop the peer.
func (s *peerSet) add(p *Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.peers == nil {
		s.peers = make(map[*Peer]struct{})
	}
	s.peers[p] = struct{}{}
	return true
}

func (s *peerSet) remove(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, p)
}

func (s *peerSet) closeAll() {
	s.mu.Lock()
	s.closed = true
	peers := make([]*Peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		_ = p.conn.Close()
	}
}

// Hub tracks connected peers and fans data out to them. Both listeners
// share a single Hub.
type Hub struct {
	log   *zap.Logger
	peers map[*Peer]bool
	mu    sync.RWMutex
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log, peers: make(map[*Peer]bool)}
}

// Register adds a peer.
func (h *Hub) Register(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = true
	h.log.Debug("peer joined", zap.String("remote", p.conn.RemoteAddr()))
}

// Unregister removes a peer and closes its outgoing queue.
func (h *Hub) Unregister(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.peers[p] {
		return
	}
	delete(h.peers, p)
	close(p.outgoing)
	h.log.Debug("peer left", zap.String("remote", p.conn.RemoteAddr()))
}

// ClientCount returns the number of connected peers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast queues data for every peer. A peer whose queue is full misses
// the data.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		select {
		case p.outgoing <- data:
		default:
			h.log.Warn("peer queue full", zap.String("remote", p.conn.RemoteAddr()))
		}
	}
}

// DisconnectAll closes every peer connection.
func (h *Hub) DisconnectAll() {
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		_ = p.conn.Close()
	}
}

func (h *Hub) writeLoop(p *Peer) {
	for data := range p.outgoing {
		if err := p.conn.Write(data); err != nil {
			h.log.Debug("write to peer failed", zap.Error(err))
			_ = p.conn.Close()
			// drain so Broadcast never blocks on this peer
			for range p.outgoing {
			}
			return
		}
	}
}
