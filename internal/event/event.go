// Package event turns raw gateway frames into canonical agent events.
package event

import (
	"time"

	"github.com/fastreact/console/internal/protocol"
)

// AgentEvent is a normalized agent reasoning step. Every event carries an
// identifier and a timestamp, whatever the wire frame omitted.
type AgentEvent struct {
	ID       string             `json:"id" yaml:"id"`
	Type     protocol.EventType `json:"type" yaml:"type"`
	Content  string             `json:"content" yaml:"content"`
	Metadata Metadata           `json:"metadata" yaml:"metadata"`
	// Stats is the run summary some gateways attach to final events.
	Stats any `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Metadata holds per-event details. Only Timestamp is guaranteed.
type Metadata struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// Iteration is non-decreasing within a turn by convention only.
	Iteration  *int           `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	ToolName   string         `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	Duration   *float64       `json:"duration,omitempty" yaml:"duration,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Extra holds metadata keys the console does not interpret.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// IsTerminal reports whether the event closes the current turn.
func (e AgentEvent) IsTerminal() bool {
	return e.Type.IsTerminal()
}

// DurationValue returns the duration in seconds, or zero when absent.
func (m Metadata) DurationValue() float64 {
	if m.Duration == nil {
		return 0
	}
	return *m.Duration
}

// ToFrame converts an event back to its wire representation.
func (e AgentEvent) ToFrame() protocol.InboundFrame {
	content := e.Content
	meta := &protocol.InboundMetadata{
		Iteration:  e.Metadata.Iteration,
		ToolName:   e.Metadata.ToolName,
		Duration:   e.Metadata.Duration,
		Parameters: e.Metadata.Parameters,
		Extra:      e.Metadata.Extra,
	}
	if !e.Metadata.Timestamp.IsZero() {
		meta.Timestamp = e.Metadata.Timestamp.UTC().Format(protocol.TimeFormat)
	}
	return protocol.InboundFrame{
		Type:     e.Type,
		Content:  &content,
		Metadata: meta,
		Stats:    e.Stats,
	}
}

// Int returns a pointer to v, for building optional iteration values.
func Int(v int) *int {
	return &v
}

// Seconds returns a pointer to v, for building optional durations.
func Seconds(v float64) *float64 {
	return &v
}
