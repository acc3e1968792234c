// Package session folds gateway notifications, demo events and user intents
// into a single conversation state.
package session

import (
	"slices"
	"time"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is the delivery status of a transcript message.
type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Status    Status    `json:"status" yaml:"status"`
}

// State is the session as seen by the presentation layer.
type State struct {
	ID       string             `json:"session_id" yaml:"session_id"`
	Phase    connection.Phase   `json:"phase" yaml:"phase"`
	Messages []Message          `json:"messages" yaml:"messages"`
	Events   []event.AgentEvent `json:"events" yaml:"events"`
	Thinking bool               `json:"thinking" yaml:"thinking"`
	Demo     bool               `json:"demo" yaml:"demo"`

	// Most recent reconnect schedule, for display.
	Attempt int           `json:"attempt" yaml:"attempt"`
	RetryIn time.Duration `json:"retry_in" yaml:"retry_in"`
}

// Clone returns a copy that shares no slices with s. Event metadata maps
// are shared; events are never mutated after normalization.
func (s State) Clone() State {
	s.Messages = slices.Clone(s.Messages)
	s.Events = slices.Clone(s.Events)
	return s
}

// Connected reports whether the session can reach an agent.
func (s State) Connected() bool {
	return s.Demo || s.Phase == connection.PhaseConnected
}

// CanSend reports whether the presentation layer should accept input.
func (s State) CanSend() bool {
	return s.Connected() && !s.Thinking
}
