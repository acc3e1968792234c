package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastreact/console/internal/cli/helpers"
)

// execute runs the config command under a root carrying the global flags,
// with the config directory pointed at a temp dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FASTREACT_CONFIG", dir)

	root := &cobra.Command{Use: "fastreact", SilenceUsage: true, SilenceErrors: true}
	helpers.RegisterGlobalFlags(root.PersistentFlags())
	root.AddCommand(NewConfigCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"config"}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd()
	assert.Equal(t, "config", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"view", "validate", "init", "path"}, names)
}

func TestView(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults as yaml", func(t *testing.T) {
		out, err := execute(t, dir, "view")
		require.NoError(t, err)
		assert.Contains(t, out, "url: ws://localhost:8080/ws")
		assert.Contains(t, out, "auto_reconnect: true")
	})

	t.Run("flag override", func(t *testing.T) {
		out, err := execute(t, dir, "view", "--gateway-url", "wss://agents.example.com/ws")
		require.NoError(t, err)
		assert.Contains(t, out, "wss://agents.example.com/ws")
	})

	t.Run("toml", func(t *testing.T) {
		out, err := execute(t, dir, "view", "-o", "toml")
		require.NoError(t, err)
		assert.Contains(t, out, "[gateway]")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := execute(t, dir, "view", "-o", "xml")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults are valid", func(t *testing.T) {
		out, err := execute(t, dir, "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
	})

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("gateway:\n  url: http://localhost:8080/ws\nlogging:\n  level: loud\n"), 0o600))

	t.Run("reports every error", func(t *testing.T) {
		out, err := execute(t, dir, "--config", bad, "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 errors")
		assert.Contains(t, out, "gateway.url")
		assert.Contains(t, out, "logging.level")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, dir, "--config", bad, "validate", "-o", "json")
		require.Error(t, err)

		var result struct {
			Path   string `json:"path"`
			Valid  bool   `json:"valid"`
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, bad, result.Path)
		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("demo skips url check", func(t *testing.T) {
		_, err := execute(t, dir, "--config", bad, "--demo", "--log-level", "debug", "validate")
		assert.NoError(t, err)
	})
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fastreact", "config.yaml")

	out, err := execute(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, dir, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, dir, "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, dir, "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestInit_TOML(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "init", "--toml")
	require.NoError(t, err)

	path := filepath.Join(dir, ".fastreact", "config.toml")
	assert.FileExists(t, path)

	out, err := execute(t, dir, "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}
