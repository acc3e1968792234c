// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	// ConfigFileTOML is checked when ConfigFile does not exist.
	ConfigFileTOML = "config.toml"

	DefaultDir = ".fastreact"

	LogFile = "fastreact.log"

	// DefaultGatewayURL is the base WebSocket address of the agent gateway.
	// The session identifier is appended as the last path segment.
	DefaultGatewayURL = "ws://localhost:8080/ws"

	// DemoSessionID is the fixed session identifier used in demo mode.
	DemoSessionID = "demo-session"

	DefaultMockGatewayAddr = "localhost:8080"
)
