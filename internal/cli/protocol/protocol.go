// Package protocol provides the CLI commands describing the gateway wire format.
package protocol

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/chat/ui"
	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/protocol"
)

// NewProtocolCmd creates the protocol command and its subcommands.
func NewProtocolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocol",
		Short: "Describe the gateway wire protocol",
	}

	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newTypesCmd())

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [inbound|outbound]",
		Short:     "Print the JSON Schema of gateway frames",
		Long:      `Print the JSON Schema of inbound agent events, outbound user messages, or both.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"inbound", "outbound"},
		RunE: func(cmd *cobra.Command, args []string) error {
			directions := []string{"inbound", "outbound"}
			if len(args) == 1 {
				directions = args
			}

			out := cmd.OutOrStdout()
			for _, direction := range directions {
				data, err := protocol.SchemaJSON(direction)
				if err != nil {
					return err
				}
				if len(directions) > 1 {
					if _, err := fmt.Fprintf(out, "# %s\n", direction); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(out, "%s\n", data); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type eventTypeRow struct {
	Type     string `header:"TYPE" json:"type" yaml:"type"`
	Label    string `header:"LABEL" json:"label" yaml:"label"`
	Working  bool   `header:"WORKING" json:"working" yaml:"working"`
	Terminal bool   `header:"TERMINAL" json:"terminal" yaml:"terminal"`
}

func newTypesCmd() *cobra.Command {
	var format string

	supported := []helpers.OutputFormat{
		helpers.FormatTable,
		helpers.FormatJSON,
		helpers.FormatYAML,
		helpers.FormatCSV,
	}

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List agent event types",
		Long: `List the agent event types the console understands.

Working events (thought, action) mark the agent as thinking. Terminal events
(answer, final, error) close the turn and produce an assistant message.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]eventTypeRow, 0, len(protocol.EventTypes))
			for _, t := range protocol.EventTypes {
				rows = append(rows, eventTypeRow{
					Type:     string(t),
					Label:    ui.Label(t),
					Working:  t.IsWorking(),
					Terminal: t.IsTerminal(),
				})
			}
			return helpers.Render(cmd, format, supported, rows)
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, supported)

	return cmd
}
