package client

import (
	"errors"
	"fmt"
)

var (
	// ErrConnect matches every *ConnectError.
	ErrConnect = errors.New("connect failed")

	// ErrSend matches every *SendError.
	ErrSend = errors.New("send failed")

	// ErrNotConnected is returned when sending on a closed connection.
	ErrNotConnected = errors.New("not connected to server")
)

// ConnectError reports that the stream could not be established.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() []error { return []error{ErrConnect, e.Err} }

// SendError reports a failed write on an established stream.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send message: %v", e.Err)
}

func (e *SendError) Unwrap() []error { return []error{ErrSend, e.Err} }
