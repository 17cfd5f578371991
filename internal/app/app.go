// Package app wires configuration, connection, receive loop and session
// into a running chat client.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omochice/typing-chat/internal/chat"
	"github.com/omochice/typing-chat/internal/client"
	"github.com/omochice/typing-chat/internal/config"
	"github.com/omochice/typing-chat/internal/inbox"
	"github.com/omochice/typing-chat/pkg/protocol"
	"go.uber.org/zap"
)

// Start connects to the server, resolves the username and starts the
// receive loop. Fatal conditions are reported through ui before returning.
// The caller owns the returned session and must Close it.
func Start(ctx context.Context, cfg config.Config, ui chat.UI, log *zap.Logger) (*chat.Session, error) {
	framing, err := protocol.FramingByName(cfg.Framing)
	if err != nil {
		return nil, err
	}

	manager := client.NewManager(client.Options{
		Transport: cfg.Transport,
		Framing:   framing,
		WSPath:    cfg.WSPath,
	}, log)

	conn, err := manager.Connect(ctx, cfg.Host, cfg.Port)
	if err != nil {
		ui.ShowError(chat.TitleConnectError, "Could not connect to server.")
		return nil, err
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = ui.PromptUsername()
	}
	username, err = chat.ValidateUsername(username)
	switch {
	case errors.Is(err, chat.ErrEmptyUsername):
		_ = conn.Close()
		ui.ShowError(chat.TitleUsernameError, "Username cannot be empty.")
		return nil, err
	case err != nil:
		_ = conn.Close()
		ui.ShowError(chat.TitleUsernameError, "Username cannot contain ':' or '<TYPING>'.")
		return nil, err
	}

	box := inbox.New()
	loop := client.NewReceiveLoop(conn, framing, box,
		client.WithBufferSize(cfg.ReadBufferSize),
		client.WithLogger(log))

	session, err := chat.NewSession(username, conn, ui, box,
		chat.WithLogger(log),
		chat.WithIdleTimeout(cfg.TypingIdle),
		chat.WithReceiver(loop.Done()))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	go loop.Run()
	return session, nil
}
