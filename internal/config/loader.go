// Package config provides configuration loading and management.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/safe"
)

// Loader resolves configuration file locations and loads them.
type Loader struct {
	homeDir string
	// explicitPath overrides the discovered config file (--config).
	explicitPath string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. FASTREACT_CONFIG environment variable.
//  2. User home directory (~/).
//  3. The OS temp directory, for environments without a home directory.
func NewLoader() *Loader {
	if baseDir := os.Getenv("FASTREACT_CONFIG"); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return &Loader{homeDir: homeDir}
	}

	return &Loader{homeDir: filepath.Join(os.TempDir(), "fastreact-fallback")}
}

// WithPath returns a loader that reads path instead of the discovered file.
func (l *Loader) WithPath(path string) *Loader {
	return &Loader{homeDir: l.homeDir, explicitPath: path}
}

// Dir returns the configuration directory.
func (l *Loader) Dir() string {
	return filepath.Join(l.homeDir, constants.DefaultDir)
}

// ConfigPath returns the config file to read: the explicit path if set,
// otherwise config.yaml, falling back to config.toml when only that exists.
func (l *Loader) ConfigPath() string {
	if l.explicitPath != "" {
		return l.explicitPath
	}
	yamlPath := filepath.Join(l.Dir(), constants.ConfigFile)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	tomlPath := filepath.Join(l.Dir(), constants.ConfigFileTOML)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return yamlPath
}

// LogPath returns the default log file for the interactive UI.
func (l *Loader) LogPath() string {
	return filepath.Join(l.Dir(), constants.LogFile)
}

// Load applies defaults, the config file, environment and flags.
func (l *Loader) Load(flags *pflag.FlagSet) (*Config, error) {
	return NewLayeredLoader().Load(l.ConfigPath(), flags)
}

// Save writes cfg to path, as TOML when path ends in .toml and YAML
// otherwise. An empty path writes the default config.yaml.
func (l *Loader) Save(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(l.Dir(), constants.ConfigFile)
	}

	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg, isTOML(path))
	if err != nil {
		return "", err
	}

	if err := safe.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}

// Marshal encodes cfg as YAML, or TOML when asTOML is set.
func Marshal(cfg *Config, asTOML bool) ([]byte, error) {
	if asTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return buf.Bytes(), nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
