// Package protocol defines the JSON frames exchanged with the agent gateway.
//
// The client sends one frame type:
//
//	{"type": "message", "content": "...", "timestamp": "2025-01-01T00:00:00Z"}
//
// The gateway streams agent events:
//
//	{"type": "action", "content": "...", "metadata": {"tool_name": "Calculator", ...}}
//
// Everything except the inbound "type" is optional on the wire.
package protocol

import (
	"encoding/json"
	"maps"
	"math"
	"sort"
	"time"
)

// EventType classifies an inbound agent frame.
type EventType string

const (
	EventThought     EventType = "thought"
	EventAction      EventType = "action"
	EventObservation EventType = "observation"
	EventAnswer      EventType = "answer"
	EventFinal       EventType = "final"
	EventError       EventType = "error"
)

// EventTypes lists every known event type in display order.
var EventTypes = []EventType{
	EventThought,
	EventAction,
	EventObservation,
	EventAnswer,
	EventFinal,
	EventError,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether t closes a turn (answer, final or error).
func (t EventType) IsTerminal() bool {
	return t == EventAnswer || t == EventFinal || t == EventError
}

// IsWorking reports whether t signals the agent is still busy (thought or action).
func (t EventType) IsWorking() bool {
	return t == EventThought || t == EventAction
}

// MessageType is the only outbound frame type.
const MessageType = "message"

// TimeFormat is the ISO-8601 layout used for every timestamp on the wire.
const TimeFormat = time.RFC3339Nano

// OutboundMessage is a user message sent to the agent.
type OutboundMessage struct {
	Type      string `json:"type" jsonschema:"enum=message"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp" jsonschema:"format=date-time"`
}

// NewOutboundMessage builds a message frame stamped with now.
func NewOutboundMessage(content string, now time.Time) OutboundMessage {
	return OutboundMessage{
		Type:      MessageType,
		Content:   content,
		Timestamp: now.UTC().Format(TimeFormat),
	}
}

// InboundFrame is an agent event as it appears on the wire. Stats is only
// sent on final frames and is kept as-is.
type InboundFrame struct {
	Type     EventType        `json:"type" jsonschema:"enum=thought,enum=action,enum=observation,enum=answer,enum=final,enum=error"`
	Content  *string          `json:"content,omitempty"`
	Metadata *InboundMetadata `json:"metadata,omitempty"`
	Stats    any              `json:"stats,omitempty"`
}

// InboundMetadata carries optional per-event details. Unknown keys are kept
// in Extra. A known key with an unusable value is left unset and named in
// Dropped; it never fails the frame.
type InboundMetadata struct {
	Timestamp  string         `json:"timestamp,omitempty" jsonschema:"format=date-time"`
	Iteration  *int           `json:"iteration,omitempty" jsonschema:"minimum=0"`
	ToolName   string         `json:"tool_name,omitempty"`
	Duration   *float64       `json:"duration,omitempty" jsonschema:"minimum=0"`
	Parameters map[string]any `json:"parameters,omitempty"`

	Extra   map[string]any `json:"-"`
	Dropped []string       `json:"-"`
}

// maxExactFloat is the largest integer a float64 holds exactly.
const maxExactFloat = 1 << 53

// UnmarshalJSON decodes metadata leniently. Iteration accepts any integral
// JSON number, so 1.0 reads as 1.
func (m *InboundMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = InboundMetadata{}
	for key, value := range raw {
		if string(value) == "null" {
			continue
		}

		ok := true
		switch key {
		case "timestamp":
			ok = json.Unmarshal(value, &m.Timestamp) == nil
		case "iteration":
			m.Iteration, ok = decodeIteration(value)
		case "tool_name":
			ok = json.Unmarshal(value, &m.ToolName) == nil
		case "duration":
			var d float64
			if ok = json.Unmarshal(value, &d) == nil; ok {
				m.Duration = &d
			}
		case "parameters":
			ok = json.Unmarshal(value, &m.Parameters) == nil
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = v
		}
		if !ok {
			m.Dropped = append(m.Dropped, key)
		}
	}
	sort.Strings(m.Dropped)
	return nil
}

func decodeIteration(value json.RawMessage) (*int, bool) {
	var f float64
	if err := json.Unmarshal(value, &f); err != nil {
		return nil, false
	}
	if f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return nil, false
	}
	n := int(f)
	return &n, true
}

// MarshalJSON writes the known fields over Extra.
func (m InboundMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+5)
	maps.Copy(out, m.Extra)
	if m.Timestamp != "" {
		out["timestamp"] = m.Timestamp
	}
	if m.Iteration != nil {
		out["iteration"] = *m.Iteration
	}
	if m.ToolName != "" {
		out["tool_name"] = m.ToolName
	}
	if m.Duration != nil {
		out["duration"] = *m.Duration
	}
	if m.Parameters != nil {
		out["parameters"] = m.Parameters
	}
	return json.Marshal(out)
}
