package client_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omochice/typing-chat/internal/client"
	"github.com/omochice/typing-chat/internal/inbox"
	"github.com/omochice/typing-chat/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// startWebSocketServer echoes every message it receives on /ws.
func startWebSocketServer(t *testing.T, received chan<- string) (string, int) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")

		for {
			typ, data, err := c.Read(r.Context())
			if err != nil {
				return
			}
			received <- string(data)
			if err := c.Write(r.Context(), typ, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	addr := server.Listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestWebSocket_SendAndReceive(t *testing.T) {
	received := make(chan string, 4)
	host, port := startWebSocketServer(t, received)

	m := client.NewManager(client.Options{
		Transport: client.TransportWebSocket,
		Framing:   protocol.LineFraming{},
		WSPath:    "/ws",
	}, nil)
	conn, err := m.Connect(context.Background(), host, port)
	require.NoError(t, err)
	assert.Equal(t, client.StateConnected, m.State())

	box := inbox.New()
	loop := client.NewReceiveLoop(conn, protocol.LineFraming{}, box)
	go loop.Run()

	payload, _ := protocol.EncodeChat("alice", "over websocket")
	require.NoError(t, conn.Send(payload))

	select {
	case got := <-received:
		assert.Equal(t, "alice: over websocket\n", got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for server to receive message")
	}

	events := waitEvents(t, box, 1)
	assert.Equal(t, protocol.Chat("alice", "over websocket"), events[0].(inbox.Received).Message)

	require.NoError(t, conn.Close())
	<-loop.Done()
	assert.Equal(t, client.StateDisconnected, m.State())
}

func TestWebSocket_ConnectWrongPath(t *testing.T) {
	host, port := startWebSocketServer(t, make(chan string, 1))

	m := client.NewManager(client.Options{Transport: client.TransportWebSocket, WSPath: "/nope"}, nil)
	_, err := m.Connect(context.Background(), host, port)
	assert.ErrorIs(t, err, client.ErrConnect)
	assert.Equal(t, client.StateFailed, m.State())
}
