package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader_ConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTREACT_CONFIG", dir)

	l := NewLoader()
	assert.Equal(t, filepath.Join(dir, ".fastreact"), l.Dir())
	assert.Equal(t, filepath.Join(dir, ".fastreact", "config.yaml"), l.ConfigPath())
	assert.Equal(t, filepath.Join(dir, ".fastreact", "fastreact.log"), l.LogPath())
}

func TestLoader_PrefersYAMLThenTOML(t *testing.T) {
	t.Setenv("FASTREACT_CONFIG", t.TempDir())
	l := NewLoader()
	require.NoError(t, os.MkdirAll(l.Dir(), 0700))

	tomlPath := filepath.Join(l.Dir(), "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[logging]\nlevel = \"error\"\n"), 0600))
	assert.Equal(t, tomlPath, l.ConfigPath())

	cfg, err := l.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)

	yamlPath := filepath.Join(l.Dir(), "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("logging:\n  level: warn\n"), 0600))
	assert.Equal(t, yamlPath, l.ConfigPath())

	explicit := l.WithPath(tomlPath)
	assert.Equal(t, tomlPath, explicit.ConfigPath())
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	t.Setenv("FASTREACT_CONFIG", t.TempDir())
	l := NewLoader()

	cfg := DefaultConfig()
	cfg.Gateway.URL = "wss://saved.example.com/ws"
	cfg.Demo.FinalDelay = 250 * time.Millisecond

	for _, name := range []string{"", "custom.toml"} {
		t.Run("path="+name, func(t *testing.T) {
			target := name
			if target != "" {
				target = filepath.Join(l.Dir(), name)
			}

			path, err := l.Save(cfg, target)
			require.NoError(t, err)

			loaded, err := l.WithPath(path).Load(nil)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}
