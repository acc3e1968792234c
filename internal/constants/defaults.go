// Package constants defines shared configuration constants and defaults.
package constants

import "time"

// Reconnection - Connection manager defaults.
var (
	// DefaultReconnectDelays is the backoff table used between reconnect
	// attempts. Attempts beyond the table reuse the last entry.
	DefaultReconnectDelays = []time.Duration{
		1 * time.Second,
		2 * time.Second,
		5 * time.Second,
		10 * time.Second,
	}
)

// Frames - WebSocket frame limits.
const (
	// DefaultMaxFrameSize caps one inbound gateway frame.
	DefaultMaxFrameSize = 1 << 20

	// DefaultSendQueueSize is how many outbound messages may wait for the
	// socket writer before new ones are dropped.
	DefaultSendQueueSize = 16
)

// Timeouts - Default timeout values.
const (
	// DefaultHandshakeTimeout bounds the WebSocket opening handshake.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a single outbound frame write.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultCloseGracePeriod is how long Close waits for the peer's close frame.
	DefaultCloseGracePeriod = 1 * time.Second
)

// Demo - Scripted replay pacing.
const (
	DefaultDemoMinDelay   = 600 * time.Millisecond
	DefaultDemoMaxDelay   = 900 * time.Millisecond
	DefaultDemoFinalDelay = 400 * time.Millisecond
)

// Logging - Logger defaults.
const (
	DefaultLogLevel = "info"
)
