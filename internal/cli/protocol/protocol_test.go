package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewProtocolCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSchema(t *testing.T) {
	t.Run("single direction", func(t *testing.T) {
		out, err := run(t, "schema", "outbound")
		require.NoError(t, err)

		var schema map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &schema))
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "content")
		assert.Contains(t, props, "timestamp")
	})

	t.Run("both directions", func(t *testing.T) {
		out, err := run(t, "schema")
		require.NoError(t, err)
		assert.Contains(t, out, "# inbound")
		assert.Contains(t, out, "# outbound")
	})

	t.Run("unknown direction", func(t *testing.T) {
		_, err := run(t, "schema", "sideways")
		assert.Error(t, err)
	})
}

func TestTypes(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := run(t, "types")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 7)
		assert.Contains(t, lines[0], "TYPE")
		assert.Contains(t, lines[1], "thought")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "types", "-o", "json")
		require.NoError(t, err)

		var rows []eventTypeRow
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 6)
		assert.Equal(t, eventTypeRow{Type: "answer", Label: "Answer", Terminal: true}, rows[3])
		assert.True(t, rows[1].Working)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := run(t, "types", "-o", "xml")
		assert.Error(t, err)
	})
}
