// Package chat provides the interactive console command.
package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/chat/ui"
	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/errors"
	"github.com/fastreact/console/internal/session"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive agent console",
		Long: `Open a full-screen console connected to the agent gateway.

The left pane holds the conversation, the right pane the timeline of agent
events (thoughts, tool calls, observations, answers). Messages can only be
sent while connected and while the agent is not thinking.

Keys:
  enter      send message
  ctrl+r     reconnect now
  ctrl+l     clear chat
  ctrl+e     clear events
  ctrl+t     toggle timeline
  ctrl+c     quit

Examples:
  fastreact chat
  fastreact chat --demo
  fastreact chat --gateway-url wss://agents.example.com/ws`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd)
		},
	}

	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, loader, err := helpers.LoadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs always go to a file.
	logger, closer, err := helpers.NewLogger(cfg, loader.LogPath(), "chat")
	if err != nil {
		return err
	}
	defer errors.DeferClose(logger, closer, "failed to close log file")

	sess := session.New(helpers.SessionConfig(cfg), session.WithLogger(logger))
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.Close()

	logger.Info().
		Str("session_id", sess.ID()).
		Bool("demo", sess.Demo()).
		Str("gateway", cfg.Gateway.URL).
		Msg("Console started")

	model, err := ui.NewModel(sess)
	if err != nil {
		return fmt.Errorf("failed to create UI model: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}

	return nil
}
