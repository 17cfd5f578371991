// Package config loads client settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the session parameters.
type Config struct {
	Host      string `env:"CHAT_HOST,default=127.0.0.1" validate:"required"`
	Port      int    `env:"CHAT_PORT,default=65432" validate:"min=1,max=65535"`
	Transport string `env:"CHAT_TRANSPORT,default=tcp" validate:"oneof=tcp ws"`
	WSPath    string `env:"CHAT_WS_PATH,default=/ws" validate:"startswith=/"`
	Framing   string `env:"CHAT_FRAMING,default=line" validate:"oneof=line varint raw"`

	// Username skips the interactive prompt when set.
	Username string `env:"CHAT_USERNAME"`

	TickInterval   time.Duration `env:"CHAT_TICK_INTERVAL,default=500ms" validate:"gt=0"`
	TypingIdle     time.Duration `env:"CHAT_TYPING_IDLE,default=2s" validate:"gt=0"`
	ReadBufferSize int           `env:"CHAT_READ_BUFFER,default=1024" validate:"min=1"`

	LogLevel string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFile  string `env:"LOG_FILE,default=chat-client.log"`
}

// RelayConfig holds the settings of the broadcast relay.
type RelayConfig struct {
	TCPAddr string `env:"RELAY_TCP_ADDR,default=127.0.0.1:65432" validate:"required,hostname_port"`

	// WSAddr disables the WebSocket listener when empty.
	WSAddr string `env:"RELAY_WS_ADDR,default=127.0.0.1:8080" validate:"omitempty,hostname_port"`
	WSPath string `env:"RELAY_WS_PATH,default=/ws" validate:"startswith=/"`

	LogLevel string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFile  string `env:"RELAY_LOG_FILE,default=stderr"`
}

// Defaults returns the client settings with no environment applied.
func Defaults() Config {
	var cfg Config
	_ = env.Unmarshal(env.EnvSet{}, &cfg)
	return cfg
}

// RelayDefaults returns the relay settings with no environment applied.
func RelayDefaults() RelayConfig {
	var cfg RelayConfig
	_ = env.Unmarshal(env.EnvSet{}, &cfg)
	return cfg
}

// Load reads an optional .env file, then the environment, and validates
// the result.
func Load() (Config, error) {
	cfg, err := Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply overrides first.
func Read() (Config, error) {
	var cfg Config
	if err := read(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadRelay reads the relay settings from an optional .env file and the
// environment. The result is not validated.
func ReadRelay() (RelayConfig, error) {
	var cfg RelayConfig
	if err := read(&cfg); err != nil {
		return RelayConfig{}, err
	}
	return cfg, nil
}

func read(v any) error {
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(v); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c RelayConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid relay config: %w", err)
	}
	return nil
}

// Address returns host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
