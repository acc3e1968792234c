package connection

import (
	"fmt"
	"time"

	"github.com/fastreact/console/internal/event"
)

// Phase represents the current state of the gateway connection.
type Phase int

const (
	// PhaseDisconnected indicates no connection is open or being opened.
	PhaseDisconnected Phase = iota
	// PhaseConnecting indicates the opening handshake is in flight.
	PhaseConnecting
	// PhaseConnected indicates the connection is open and frames flow.
	PhaseConnected
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase by name in JSON and YAML output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Kind classifies a Notification.
type Kind int

const (
	// KindConnected is published on every transition into PhaseConnected.
	KindConnected Kind = iota + 1
	// KindDisconnected is published on every transition out of PhaseConnected,
	// whether caused by an error, a remote close or Close.
	KindDisconnected
	// KindConnectFailed is published when an opening attempt fails,
	// including malformed endpoint addresses.
	KindConnectFailed
	// KindReconnectScheduled is published when a retry timer is armed.
	KindReconnectScheduled
	// KindEvent carries a normalized inbound agent event.
	KindEvent
	// KindConnecting is published when an opening attempt starts.
	KindConnecting
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	case KindConnectFailed:
		return "connect_failed"
	case KindReconnectScheduled:
		return "reconnect_scheduled"
	case KindEvent:
		return "event"
	case KindConnecting:
		return "connecting"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is a single item on the manager's ordered output channel.
type Notification struct {
	Kind  Kind
	Phase Phase

	// Event is set for KindEvent.
	Event event.AgentEvent

	// Err is the transport error behind KindDisconnected or KindConnectFailed, if any.
	Err error

	// Attempt and RetryIn are set for KindReconnectScheduled. Attempt is
	// the counter value after scheduling.
	Attempt int
	RetryIn time.Duration
}
