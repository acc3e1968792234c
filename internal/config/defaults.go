package config

import (
	"slices"

	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/retry"
)

// DefaultConfig returns the configuration used when no file, environment
// variable or flag overrides a value.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:              constants.DefaultGatewayURL,
			AutoReconnect:    true,
			ReconnectDelays:  retry.Table(slices.Clone(constants.DefaultReconnectDelays)),
			HandshakeTimeout: constants.DefaultHandshakeTimeout,
			WriteTimeout:     constants.DefaultWriteTimeout,
		},
		Demo: DemoConfig{
			Enabled:    false,
			MinDelay:   constants.DefaultDemoMinDelay,
			MaxDelay:   constants.DefaultDemoMaxDelay,
			FinalDelay: constants.DefaultDemoFinalDelay,
		},
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Pretty: true,
		},
	}
}
