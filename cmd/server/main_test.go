package main

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeAddr returns a loopback address that was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun_RelaysUntilCancelled(t *testing.T) {
	chdir(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tcpAddr, wsAddr := freeAddr(t), freeAddr(t)
	addrs := make(chan [2]string, 1)
	done := make(chan int, 1)
	go func() {
		code, _ := run(ctx, []string{
			"--tcp", tcpAddr,
			"--ws", wsAddr,
			"--log-file", "",
		}, func(tcpAddr, wsAddr string) { addrs <- [2]string{tcpAddr, wsAddr} })
		done <- code
	}()

	var got [2]string
	select {
	case got = <-addrs:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not start")
	}
	assert.Equal(t, [2]string{tcpAddr, wsAddr}, got)

	conn, err := net.Dial("tcp", got[0])
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("alice: hello\n"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "alice: hello\n", line)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want int
	}{
		{name: "invalid address flag", args: []string{"--tcp", "no-port"}, want: exitConfig},
		{name: "invalid path flag", args: []string{"--ws-path", "ws"}, want: exitConfig},
		{name: "unknown flag", args: []string{"--port", "1"}, want: exitConfig},
		{name: "invalid log level", env: map[string]string{"LOG_LEVEL": "loud"}, want: exitConfig},
		{name: "help", args: []string{"--help"}, want: exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			code, _ := run(context.Background(), tt.args, nil)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRun_ListenFailure(t *testing.T) {
	chdir(t, t.TempDir())

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	code, err := run(context.Background(), []string{
		"--tcp", busy.Addr().String(),
		"--ws", "",
		"--log-file", "",
	}, nil)
	assert.Equal(t, exitRuntime, code)
	assert.Error(t, err)
}
