// Command server runs the broadcast relay that chat clients connect to.
// Every message a client sends is forwarded to all connected clients over
// both TCP and WebSocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/typing-chat/internal/config"
	"github.com/omochice/typing-chat/internal/logging"
	"github.com/omochice/typing-chat/internal/relay"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var errConfig = errors.New("configuration error")

// readyFunc is told the bound addresses once the relay accepts clients.
// wsAddr is empty when the WebSocket listener is disabled.
type readyFunc func(tcpAddr, wsAddr string)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, os.Args[1:], nil)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, ready readyFunc) (int, error) {
	root := newRootCmd(ready)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errConfig) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

func newRootCmd(ready readyFunc) *cobra.Command {
	flags := config.RelayDefaults()

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Relay chat messages between every connected client",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadRelay()
			if err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}

			f := cmd.Flags()
			if f.Changed("tcp") {
				cfg.TCPAddr = flags.TCPAddr
			}
			if f.Changed("ws") {
				cfg.WSAddr = flags.WSAddr
			}
			if f.Changed("ws-path") {
				cfg.WSPath = flags.WSPath
			}
			if f.Changed("log-level") {
				cfg.LogLevel = flags.LogLevel
			}
			if f.Changed("log-file") {
				cfg.LogFile = flags.LogFile
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}
			defer func() { _ = log.Sync() }()

			return serve(cmd.Context(), cfg, log, ready)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errConfig, err)
	})

	f := cmd.Flags()
	f.StringVar(&flags.TCPAddr, "tcp", flags.TCPAddr, "TCP listen address (RELAY_TCP_ADDR)")
	f.StringVar(&flags.WSAddr, "ws", flags.WSAddr, "WebSocket listen address, empty to disable (RELAY_WS_ADDR)")
	f.StringVar(&flags.WSPath, "ws-path", flags.WSPath, "WebSocket endpoint path (RELAY_WS_PATH)")
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level: debug, info, warn or error (LOG_LEVEL)")
	f.StringVar(&flags.LogFile, "log-file", flags.LogFile, "log destination, stderr by default (RELAY_LOG_FILE)")

	return cmd
}

// serve runs the relay until ctx is done.
func serve(ctx context.Context, cfg config.RelayConfig, log *zap.Logger, ready readyFunc) error {
	hub := relay.NewHub(log)

	tcpSrv := relay.NewTCPServer(cfg.TCPAddr, hub)
	if err := tcpSrv.Start(); err != nil {
		return err
	}
	defer tcpSrv.Stop()

	var wsAddr string
	if cfg.WSAddr != "" {
		wsSrv := relay.NewWebSocketServer(cfg.WSAddr, cfg.WSPath, hub)
		if err := wsSrv.Start(); err != nil {
			return err
		}
		defer wsSrv.Stop()
		wsAddr = wsSrv.Addr()
	}

	if ready != nil {
		ready(tcpSrv.Addr(), wsAddr)
	}

	<-ctx.Done()
	log.Info("relay shutting down", zap.Int("clients", hub.ClientCount()))
	return nil
}
