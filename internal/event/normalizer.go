package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/protocol"
)

// ErrMalformedFrame is returned for frames that cannot become an AgentEvent.
var ErrMalformedFrame = errors.New("malformed frame")

// Normalizer converts raw inbound frames into AgentEvents.
type Normalizer struct {
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used for defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithIDGenerator overrides the event identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(n *Normalizer) {
		n.newID = newID
	}
}

// WithLogger sets the logger used to trace normalized events.
func WithLogger(logger zerolog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a Normalizer with a wall clock and uuid identifiers.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:    time.Now,
		newID:  NewID,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewID returns a fresh event identifier.
func NewID() string {
	return "evt-" + uuid.NewString()
}

// Normalize parses a raw frame. Content defaults to the empty string and
// metadata.timestamp to the receipt time; all other metadata passes through.
// Metadata values of the wrong type are logged and dropped without losing
// the frame. Failures wrap ErrMalformedFrame and never panic.
func (n *Normalizer) Normalize(raw []byte) (AgentEvent, error) {
	var frame protocol.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return AgentEvent{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if frame.Type == "" {
		return AgentEvent{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	if !frame.Type.Valid() {
		return AgentEvent{}, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, frame.Type)
	}

	evt := AgentEvent{
		ID:    n.newID(),
		Type:  frame.Type,
		Stats: frame.Stats,
	}
	if frame.Content != nil {
		evt.Content = *frame.Content
	}

	if meta := frame.Metadata; meta != nil {
		evt.Metadata = Metadata{
			Iteration:  meta.Iteration,
			ToolName:   meta.ToolName,
			Duration:   meta.Duration,
			Parameters: meta.Parameters,
			Extra:      meta.Extra,
		}
		if len(meta.Dropped) > 0 {
			n.logger.Debug().
				Str("type", string(frame.Type)).
				Strs("fields", meta.Dropped).
				Msg("Ignoring unusable event metadata")
		}
		if meta.Timestamp != "" {
			ts, err := time.Parse(protocol.TimeFormat, meta.Timestamp)
			if err != nil {
				n.logger.Debug().
					Str("timestamp", meta.Timestamp).
					Msg("Unparseable event timestamp, using receipt time")
			} else {
				evt.Metadata.Timestamp = ts
			}
		}
	}
	if evt.Metadata.Timestamp.IsZero() {
		evt.Metadata.Timestamp = n.now()
	}

	n.logger.Trace().
		Str("event_id", evt.ID).
		Str("type", string(evt.Type)).
		Msg("Normalized event")

	return evt, nil
}

// Stamp copies a template event with a fresh identifier and the current
// time. Parameters are cloned so replays never share maps.
func (n *Normalizer) Stamp(tpl AgentEvent) AgentEvent {
	evt := tpl
	evt.ID = n.newID()
	evt.Metadata.Timestamp = n.now()
	if tpl.Metadata.Parameters != nil {
		evt.Metadata.Parameters = maps.Clone(tpl.Metadata.Parameters)
	}
	if tpl.Metadata.Extra != nil {
		evt.Metadata.Extra = maps.Clone(tpl.Metadata.Extra)
	}
	return evt
}
