// Package chat holds the session core: the UI collaborator contract, the
// dispatcher that applies inbound events to it and the Session that ties a
// connection, the typing state machine and the inbox together.
package chat

//go:generate go run go.uber.org/mock/mockgen -source=conn.go -destination=mocks/mock_conn.go -package=mocks

// Conn is the write side of a server connection as used by a Session.
// *client.Connection satisfies it.
type Conn interface {
	// Send writes one payload. The payload is framed by the implementation.
	Send(payload []byte) error

	// Close releases the connection. It must be idempotent.
	Close() error
}
