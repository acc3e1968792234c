package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastreact/console/internal/protocol"
)

func TestNormalize_ActionFrameDefaults(t *testing.T) {
	n := NewNormalizer()

	before := time.Now()
	evt, err := n.Normalize([]byte(`{"type":"action","content":"x","metadata":{"tool_name":"Calc"}}`))
	after := time.Now()

	require.NoError(t, err)
	assert.Equal(t, protocol.EventAction, evt.Type)
	assert.Equal(t, "x", evt.Content)
	assert.Equal(t, "Calc", evt.Metadata.ToolName)
	assert.NotEmpty(t, evt.ID)
	assert.False(t, evt.Metadata.Timestamp.Before(before), "timestamp should not precede the call")
	assert.False(t, evt.Metadata.Timestamp.After(after), "timestamp should not follow the call")
	assert.Nil(t, evt.Metadata.Iteration)
	assert.Nil(t, evt.Metadata.Duration)
}

func TestNormalize_UniqueIDs(t *testing.T) {
	n := NewNormalizer()
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		evt, err := n.Normalize([]byte(`{"type":"thought"}`))
		require.NoError(t, err)
		require.False(t, seen[evt.ID], "duplicate id %s", evt.ID)
		seen[evt.ID] = true
	}
}

func TestNormalize_MetadataPassThrough(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NewNormalizer(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "evt-1" }),
	)

	raw := `{
		"type": "action",
		"content": "Searching",
		"metadata": {
			"timestamp": "2024-12-31T23:59:59.500Z",
			"iteration": 2,
			"tool_name": "WebSearch",
			"duration": 1.2,
			"parameters": {"query": "go", "max_results": 5}
		}
	}`

	evt, err := n.Normalize([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "evt-1", evt.ID)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 500_000_000, time.UTC), evt.Metadata.Timestamp.UTC())
	require.NotNil(t, evt.Metadata.Iteration)
	assert.Equal(t, 2, *evt.Metadata.Iteration)
	assert.InDelta(t, 1.2, evt.Metadata.DurationValue(), 1e-9)
	assert.Equal(t, "go", evt.Metadata.Parameters["query"])
	assert.EqualValues(t, 5, evt.Metadata.Parameters["max_results"])
}

func TestNormalize_FloatIterationOnTerminalFrame(t *testing.T) {
	n := NewNormalizer()

	evt, err := n.Normalize([]byte(`{"type":"answer","content":"done","metadata":{"iteration":1.0}}`))
	require.NoError(t, err)

	assert.True(t, evt.IsTerminal())
	assert.Equal(t, "done", evt.Content)
	require.NotNil(t, evt.Metadata.Iteration)
	assert.Equal(t, 1, *evt.Metadata.Iteration)
}

func TestNormalize_UnusableMetadataKeepsFrame(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NewNormalizer(WithClock(func() time.Time { return fixed }))

	raw := `{
		"type": "final",
		"content": "done",
		"metadata": {
			"timestamp": 17,
			"iteration": 1.5,
			"tool_name": ["x"],
			"duration": "fast",
			"parameters": "none"
		}
	}`

	evt, err := n.Normalize([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, protocol.EventFinal, evt.Type)
	assert.Equal(t, fixed, evt.Metadata.Timestamp)
	assert.Nil(t, evt.Metadata.Iteration)
	assert.Empty(t, evt.Metadata.ToolName)
	assert.Nil(t, evt.Metadata.Duration)
	assert.Nil(t, evt.Metadata.Parameters)
}

func TestNormalize_UnknownMetadataAndStats(t *testing.T) {
	n := NewNormalizer()

	raw := `{
		"type": "final",
		"content": "done",
		"metadata": {"iteration": 2, "model": "gpt", "tokens": {"in": 10, "out": 4}},
		"stats": {"steps": 3}
	}`

	evt, err := n.Normalize([]byte(raw))
	require.NoError(t, err)

	require.NotNil(t, evt.Metadata.Iteration)
	assert.Equal(t, 2, *evt.Metadata.Iteration)
	assert.Equal(t, "gpt", evt.Metadata.Extra["model"])
	assert.Equal(t, map[string]any{"in": float64(10), "out": float64(4)}, evt.Metadata.Extra["tokens"])
	assert.NotContains(t, evt.Metadata.Extra, "iteration")
	assert.Equal(t, map[string]any{"steps": float64(3)}, evt.Stats)
}

func TestNormalize_MissingContentAndMetadata(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NewNormalizer(WithClock(func() time.Time { return fixed }))

	evt, err := n.Normalize([]byte(`{"type":"answer"}`))
	require.NoError(t, err)

	assert.Equal(t, "", evt.Content)
	assert.Equal(t, fixed, evt.Metadata.Timestamp)
	assert.True(t, evt.IsTerminal())
}

func TestNormalize_UnparseableTimestampFallsBack(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NewNormalizer(WithClock(func() time.Time { return fixed }))

	evt, err := n.Normalize([]byte(`{"type":"thought","metadata":{"timestamp":"yesterday"}}`))
	require.NoError(t, err)
	assert.Equal(t, fixed, evt.Metadata.Timestamp)
}

func TestNormalize_MalformedFrames(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `hello`},
		{name: "truncated", raw: `{"type":"thought"`},
		{name: "missing type", raw: `{"content":"x"}`},
		{name: "unknown type", raw: `{"type":"tool_use"}`},
		{name: "wrong content type", raw: `{"type":"thought","content":42}`},
		{name: "array", raw: `[1,2,3]`},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedFrame))
		})
	}
}

func TestStamp_FreshIdentityAndTime(t *testing.T) {
	seq := 0
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := NewNormalizer(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("evt-%d", seq)
		}),
	)

	tpl := AgentEvent{
		Type:    protocol.EventAction,
		Content: "Using the calculator",
		Metadata: Metadata{
			Iteration:  Int(2),
			ToolName:   "Calculator",
			Parameters: map[string]any{"expression": "42 * 2 + 16"},
		},
	}

	first := n.Stamp(tpl)
	second := n.Stamp(tpl)

	assert.Equal(t, "evt-1", first.ID)
	assert.Equal(t, "evt-2", second.ID)
	assert.Equal(t, fixed, first.Metadata.Timestamp)
	assert.Equal(t, "Calculator", first.Metadata.ToolName)

	first.Metadata.Parameters["expression"] = "changed"
	assert.Equal(t, "42 * 2 + 16", second.Metadata.Parameters["expression"])
	assert.Equal(t, "42 * 2 + 16", tpl.Metadata.Parameters["expression"])
}

func TestToFrame_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	original := AgentEvent{
		ID:      "evt-1",
		Type:    protocol.EventObservation,
		Content: "Result: 100",
		Metadata: Metadata{
			Timestamp: ts,
			Iteration: Int(2),
			Duration:  Seconds(0.01),
			Extra:     map[string]any{"model": "gpt"},
		},
		Stats: map[string]any{"steps": float64(3)},
	}

	data, err := json.Marshal(original.ToFrame())
	require.NoError(t, err)

	n := NewNormalizer(WithIDGenerator(func() string { return "evt-2" }))
	got, err := n.Normalize(data)
	require.NoError(t, err)

	assert.Equal(t, original.Type, got.Type)
	assert.Equal(t, original.Content, got.Content)
	assert.Equal(t, ts, got.Metadata.Timestamp.UTC())
	assert.Equal(t, 2, *got.Metadata.Iteration)
	assert.Equal(t, original.Metadata.Extra, got.Metadata.Extra)
	assert.Equal(t, original.Stats, got.Stats)
	assert.Equal(t, "evt-2", got.ID)
}
