// Command client is a terminal chat client with typing notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/omochice/typing-chat/internal/app"
	"github.com/omochice/typing-chat/internal/chat"
	"github.com/omochice/typing-chat/internal/config"
	"github.com/omochice/typing-chat/internal/logging"
	"github.com/omochice/typing-chat/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var (
	// errConfig marks failures that happen before a connection is attempted.
	errConfig = errors.New("configuration error")

	// errShown marks failures the user has already seen in an error dialog.
	errShown = errors.New("error shown")
)

func main() {
	code, err := run(os.Args[1:])
	if err != nil && !errors.Is(err, errShown) && !errors.Is(err, chat.ErrSessionEnded) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// startFunc runs a chat session with a validated config.
type startFunc func(ctx context.Context, cfg config.Config) error

func run(args []string) (int, error) {
	return execute(context.Background(), args, chatCmd)
}

func execute(ctx context.Context, args []string, start startFunc) (int, error) {
	root := newRootCmd(start)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errConfig) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

// override copies one flag's value from the parsed flags into the
// environment config.
type override func(dst *config.Config, flags config.Config)

// newRootCmd reads the environment only once the command runs, so --help
// works with a broken environment. Flags given on the command line win
// over the environment.
func newRootCmd(start startFunc) *cobra.Command {
	flags := config.Defaults()
	overrides := map[string]override{}

	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Chat with everyone connected to a relay server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}
			for name, apply := range overrides {
				if cmd.Flags().Changed(name) {
					apply(&cfg, flags)
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}
			return start(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errConfig, err)
	})

	f := cmd.Flags()
	f.StringVar(&flags.Host, "host", flags.Host, "server host (CHAT_HOST)")
	overrides["host"] = func(dst *config.Config, src config.Config) { dst.Host = src.Host }
	f.IntVar(&flags.Port, "port", flags.Port, "server port (CHAT_PORT)")
	overrides["port"] = func(dst *config.Config, src config.Config) { dst.Port = src.Port }
	f.StringVar(&flags.Transport, "transport", flags.Transport, "transport: tcp or ws (CHAT_TRANSPORT)")
	overrides["transport"] = func(dst *config.Config, src config.Config) { dst.Transport = src.Transport }
	f.StringVar(&flags.WSPath, "ws-path", flags.WSPath, "websocket endpoint path (CHAT_WS_PATH)")
	overrides["ws-path"] = func(dst *config.Config, src config.Config) { dst.WSPath = src.WSPath }
	f.StringVar(&flags.Framing, "framing", flags.Framing, "framing: line, varint or raw (CHAT_FRAMING)")
	overrides["framing"] = func(dst *config.Config, src config.Config) { dst.Framing = src.Framing }
	f.StringVar(&flags.Username, "username", flags.Username, "username, prompted when empty (CHAT_USERNAME)")
	overrides["username"] = func(dst *config.Config, src config.Config) { dst.Username = src.Username }
	f.DurationVar(&flags.TickInterval, "tick", flags.TickInterval, "typing timeout check interval (CHAT_TICK_INTERVAL)")
	overrides["tick"] = func(dst *config.Config, src config.Config) { dst.TickInterval = src.TickInterval }
	f.DurationVar(&flags.TypingIdle, "typing-idle", flags.TypingIdle, "idle time before typing stops (CHAT_TYPING_IDLE)")
	overrides["typing-idle"] = func(dst *config.Config, src config.Config) { dst.TypingIdle = src.TypingIdle }
	f.IntVar(&flags.ReadBufferSize, "read-buffer", flags.ReadBufferSize, "socket read size in bytes (CHAT_READ_BUFFER)")
	overrides["read-buffer"] = func(dst *config.Config, src config.Config) { dst.ReadBufferSize = src.ReadBufferSize }
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level: debug, info, warn or error (LOG_LEVEL)")
	overrides["log-level"] = func(dst *config.Config, src config.Config) { dst.LogLevel = src.LogLevel }
	f.StringVar(&flags.LogFile, "log-file", flags.LogFile, "log file, empty to disable logging (LOG_FILE)")
	overrides["log-file"] = func(dst *config.Config, src config.Config) { dst.LogFile = src.LogFile }

	return cmd
}

func chatCmd(ctx context.Context, cfg config.Config) (err error) {
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	defer func() { _ = log.Sync() }()

	screen := tui.NewScreen(os.Stdin, os.Stdout, os.Stderr)
	defer func() {
		if err != nil && screen.Fatal() != "" {
			err = fmt.Errorf("%w: %w", errShown, err)
		}
	}()

	session, err := app.Start(ctx, cfg, screen, log)
	if err != nil {
		return err
	}
	defer session.Close()

	log.Info("chat started", zap.String("address", cfg.Address()))
	err = tui.Run(session, screen, cfg.TickInterval)
	log.Info("chat finished", zap.Error(err))
	return err
}
