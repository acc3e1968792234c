package config

import (
	"github.com/spf13/pflag"

	"github.com/fastreact/console/internal/retry"
)

// Flag names bound to configuration keys.
const (
	FlagGatewayURL      = "gateway-url"
	FlagDemo            = "demo"
	FlagAutoReconnect   = "auto-reconnect"
	FlagReconnectDelays = "reconnect-delays"
	FlagLogLevel        = "log-level"
	FlagLogFile         = "log-file"
)

// RegisterFlags adds the configuration override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := DefaultConfig()
	fs.String(FlagGatewayURL, "", "Gateway WebSocket base URL (default "+defaults.Gateway.URL+")")
	fs.Bool(FlagDemo, false, "Replay a scripted agent run instead of connecting to a gateway")
	fs.Bool(FlagAutoReconnect, true, "Reconnect automatically after the connection drops")
	fs.String(FlagReconnectDelays, "", "Comma-separated reconnect backoff table (default "+defaults.Gateway.ReconnectDelays.String()+")")
	fs.String(FlagLogLevel, "", "Log level: trace, debug, info, warn, error, disabled")
	fs.String(FlagLogFile, "", "Write logs to this file")
}

// ApplyFlags copies explicitly set flags into cfg. Flags absent from fs
// or left at their defaults are ignored.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagGatewayURL:
			cfg.Gateway.URL = f.Value.String()
		case FlagDemo:
			cfg.Demo.Enabled, err = fs.GetBool(FlagDemo)
		case FlagAutoReconnect:
			cfg.Gateway.AutoReconnect, err = fs.GetBool(FlagAutoReconnect)
		case FlagReconnectDelays:
			var table retry.Table
			table, err = retry.ParseTable(f.Value.String())
			if err == nil {
				cfg.Gateway.ReconnectDelays = table
			}
		case FlagLogLevel:
			cfg.Logging.Level = f.Value.String()
		case FlagLogFile:
			cfg.Logging.File = f.Value.String()
		}
	})
	return err
}
