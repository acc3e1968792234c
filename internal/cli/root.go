// Package cli wires the fastreact commands together.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/chat"
	configcmd "github.com/fastreact/console/internal/cli/config"
	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/cli/mockgateway"
	"github.com/fastreact/console/internal/cli/protocol"
	"github.com/fastreact/console/internal/cli/stream"
	"github.com/fastreact/console/pkg/version"
)

// NewRootCmd builds the fastreact command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fastreact",
		Short: "Fastreact - live console for ReAct agents",
		Long: `Chat with a ReAct-style agent and watch its reasoning as it happens.

The console connects to an agent gateway over WebSocket, sends your
messages, and renders the stream of thoughts, tool calls, observations and
answers the agent produces. Demo mode replays a scripted run without a
gateway.

Running fastreact without a subcommand opens the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	helpers.RegisterGlobalFlags(rootCmd.PersistentFlags())

	chatCmd := chat.NewChatCmd()
	rootCmd.RunE = chatCmd.RunE

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(stream.NewStreamCmd())
	rootCmd.AddCommand(mockgateway.NewMockGatewayCmd())
	rootCmd.AddCommand(configcmd.NewConfigCmd())
	rootCmd.AddCommand(protocol.NewProtocolCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

var versionFormats = []helpers.OutputFormat{
	helpers.FormatTable,
	helpers.FormatJSON,
	helpers.FormatYAML,
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Render(cmd, format, versionFormats, version.Get())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, versionFormats)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
