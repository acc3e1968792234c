package config

import (
	"time"

	"github.com/fastreact/console/internal/retry"
)

// Config is the console configuration (~/.fastreact/config.yaml or .toml).
type Config struct {
	Gateway GatewayConfig `yaml:"gateway" toml:"gateway"`
	Demo    DemoConfig    `yaml:"demo" toml:"demo"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// GatewayConfig contains agent gateway connection settings.
type GatewayConfig struct {
	// URL is the base WebSocket endpoint. The session id is appended as
	// the last path segment.
	URL              string        `yaml:"url" toml:"url" env:"FASTREACT_GATEWAY_URL"`
	AutoReconnect    bool          `yaml:"auto_reconnect" toml:"auto_reconnect" env:"FASTREACT_AUTO_RECONNECT"`
	ReconnectDelays  retry.Table   `yaml:"reconnect_delays" toml:"reconnect_delays" env:"FASTREACT_RECONNECT_DELAYS"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" toml:"handshake_timeout" env:"FASTREACT_HANDSHAKE_TIMEOUT"`
	WriteTimeout     time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"FASTREACT_WRITE_TIMEOUT"`
}

// DemoConfig contains scripted demo mode settings.
type DemoConfig struct {
	Enabled    bool          `yaml:"enabled" toml:"enabled" env:"FASTREACT_DEMO"`
	MinDelay   time.Duration `yaml:"min_delay" toml:"min_delay" env:"FASTREACT_DEMO_MIN_DELAY"`
	MaxDelay   time.Duration `yaml:"max_delay" toml:"max_delay" env:"FASTREACT_DEMO_MAX_DELAY"`
	FinalDelay time.Duration `yaml:"final_delay" toml:"final_delay" env:"FASTREACT_DEMO_FINAL_DELAY"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" env:"FASTREACT_LOG_LEVEL"`
	// File receives log output. Empty means the command default: the TUI
	// logs to ~/.fastreact/fastreact.log, other commands to stderr.
	File   string `yaml:"file,omitempty" toml:"file,omitempty" env:"FASTREACT_LOG_FILE"`
	Pretty bool   `yaml:"pretty" toml:"pretty" env:"FASTREACT_LOG_PRETTY"`
}
