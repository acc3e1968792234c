// Package config provides the CLI commands for inspecting console configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/config"
	"github.com/fastreact/console/internal/constants"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage console configuration",
		Long: `Manage console configuration.

Configuration Priority:
  1. Command line flags (highest)
  2. FASTREACT_* environment variables
  3. Config file (~/.fastreact/config.yaml or config.toml, or --config)
  4. Built-in defaults

Environment Variables:
  FASTREACT_CONFIG  Override config directory (default: ~)`,
	}

	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newPathCmd())

	return cmd
}

func newViewCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults, the config file, environment
variables and flags have been merged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "toml" {
				return fmt.Errorf("unsupported format %q, must be one of: yaml, toml", format)
			}

			cfg, err := helpers.NewLoader(cmd).Load(cmd.Flags())
			if err != nil {
				return err
			}

			data, err := config.Marshal(cfg, format == "toml")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "Output format (yaml, toml)")

	return cmd
}

type validationResult struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validate the merged configuration and report every problem found.

Checks:
- Gateway URL uses the ws or wss scheme (unless demo mode is enabled)
- Reconnect delays are positive
- Timeouts are positive
- Demo delays are non-negative and ordered
- Log level is known`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, format)
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, []helpers.OutputFormat{
		helpers.FormatTable,
		helpers.FormatJSON,
		helpers.FormatYAML,
	})

	return cmd
}

func runValidate(cmd *cobra.Command, format string) error {
	loader := helpers.NewLoader(cmd)
	cfg, err := loader.Load(cmd.Flags())
	if err != nil {
		return err
	}

	results := []validationResult{}
	if err := cfg.Validate(); err != nil {
		var multi *config.MultiValidationError
		if !errors.As(err, &multi) {
			return err
		}
		for _, ve := range multi.Errors {
			results = append(results, validationResult{Field: ve.Field, Message: ve.Message})
		}
	}

	if format != string(helpers.FormatTable) {
		output := struct {
			Path   string             `json:"path" yaml:"path"`
			Valid  bool               `json:"valid" yaml:"valid"`
			Errors []validationResult `json:"errors" yaml:"errors"`
		}{
			Path:   loader.ConfigPath(),
			Valid:  len(results) == 0,
			Errors: results,
		}
		if err := helpers.Render(cmd, format, []helpers.OutputFormat{helpers.FormatJSON, helpers.FormatYAML}, output); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Config: %s\n", loader.ConfigPath())
		for _, r := range results {
			_, _ = fmt.Fprintf(out, "  %s: %s\n", r.Field, r.Message)
		}
		if len(results) == 0 {
			_, _ = fmt.Fprintln(out, "Configuration is valid")
		}
	}

	if len(results) > 0 {
		return fmt.Errorf("validation failed with %d errors", len(results))
	}
	return nil
}

func newInitCmd() *cobra.Command {
	var (
		force  bool
		asTOML bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := helpers.NewLoader(cmd)

			path, _ := cmd.Flags().GetString(helpers.FlagConfig)
			if path == "" && asTOML {
				path = filepath.Join(loader.Dir(), constants.ConfigFileTOML)
			}
			target := path
			if target == "" {
				target = filepath.Join(loader.Dir(), constants.ConfigFile)
			}

			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", target)
			}

			written, err := loader.Save(config.DefaultConfig(), path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "Write TOML instead of YAML")

	return cmd
}

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), helpers.NewLoader(cmd).ConfigPath())
			return err
		},
	}
}
