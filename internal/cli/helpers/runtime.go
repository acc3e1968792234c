package helpers

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fastreact/console/internal/config"
	"github.com/fastreact/console/internal/logging"
	"github.com/fastreact/console/internal/session"
)

// FlagConfig names the persistent flag selecting a config file.
const FlagConfig = "config"

// RegisterGlobalFlags adds --config and the config override flags to fs.
func RegisterGlobalFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Config file (default ~/.fastreact/config.yaml)")
	config.RegisterFlags(fs)
}

// NewLoader returns the config loader for cmd, honoring --config.
func NewLoader(cmd *cobra.Command) *config.Loader {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString(FlagConfig); path != "" {
		loader = loader.WithPath(path)
	}
	return loader
}

// LoadConfig resolves the layered configuration for cmd, including the
// --config override and any config flags the user set, and validates it.
func LoadConfig(cmd *cobra.Command) (*config.Config, *config.Loader, error) {
	loader := NewLoader(cmd)
	cfg, err := loader.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader, nil
}

// NewLogger builds the command logger. When no log file is configured,
// defaultFile is used if set, and stderr otherwise. The returned closer
// releases the log file and is never nil.
func NewLogger(cfg *config.Config, defaultFile, component string) (zerolog.Logger, io.Closer, error) {
	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	}

	path := cfg.Logging.File
	if path == "" {
		path = defaultFile
	}

	var closer io.Closer = nopCloser{}
	if path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logCfg.Output = f
		logCfg.Pretty = false
		closer = f
	}

	return logging.NewWithComponent(logCfg, component), closer, nil
}

// SessionConfig maps the console configuration onto a session.
func SessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		GatewayURL:       cfg.Gateway.URL,
		Demo:             cfg.Demo.Enabled,
		AutoReconnect:    cfg.Gateway.AutoReconnect,
		ReconnectDelays:  cfg.Gateway.ReconnectDelays,
		HandshakeTimeout: cfg.Gateway.HandshakeTimeout,
		WriteTimeout:     cfg.Gateway.WriteTimeout,
		DemoMinDelay:     cfg.Demo.MinDelay,
		DemoMaxDelay:     cfg.Demo.MaxDelay,
		DemoFinalDelay:   cfg.Demo.FinalDelay,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
