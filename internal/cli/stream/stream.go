// Package stream provides the headless line-mode console command.
package stream

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/errors"
	"github.com/fastreact/console/internal/session"
)

// NewStreamCmd creates the stream command.
func NewStreamCmd() *cobra.Command {
	var (
		format         string
		connectTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Chat with the agent from the command line",
		Long: `Read messages line by line and print agent events as they arrive.

Each line is sent once the previous turn has finished. When stdin is a
terminal, input uses a prompt with history; otherwise lines are read from
the pipe and the command exits after the last answer.

Examples:
  fastreact stream
  echo "What is the capital of France?" | fastreact stream --demo
  fastreact stream --format json < questions.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != FormatText && format != FormatJSON {
				return fmt.Errorf("unsupported format: %s (supported: %s, %s)", format, FormatText, FormatJSON)
			}
			return runStream(cmd, format, connectTimeout)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", FormatText, "Output format (text, json)")
	cmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 15*time.Second, "How long to wait for the gateway before giving up")

	return cmd
}

func runStream(cmd *cobra.Command, format string, connectTimeout time.Duration) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, loader, err := helpers.LoadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := helpers.NewLogger(cfg, "", "stream")
	if err != nil {
		return err
	}
	defer errors.DeferClose(logger, closer, "failed to close log file")

	sess := session.New(helpers.SessionConfig(cfg), session.WithLogger(logger))
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.Close()

	input, err := NewLineReader(os.Stdin, loader.Dir())
	if err != nil {
		return err
	}
	defer errors.DeferClose(logger, input, "failed to close input")

	status := cmd.ErrOrStderr()
	if format == FormatJSON {
		status = nil
	}
	printer := NewPrinter(cmd.OutOrStdout(), status, format)

	return NewStreamer(sess, printer, logger, connectTimeout).Run(ctx, input)
}
