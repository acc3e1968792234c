// Package mockgateway provides the command running a scripted agent gateway.
package mockgateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fastreact/console/internal/cli/helpers"
	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/mockgateway"
)

// NewMockGatewayCmd creates the mock-gateway command.
func NewMockGatewayCmd() *cobra.Command {
	var (
		addr      string
		delay     time.Duration
		failFirst int
	)

	cmd := &cobra.Command{
		Use:   "mock-gateway",
		Short: "Run a local gateway that replays a scripted agent run",
		Long: `Run a WebSocket server speaking the agent gateway protocol.

Every message received on /ws/<session-id> is answered with the demo
reasoning trace (thoughts, tool calls, observations) followed by an answer
quoting the message. Use it to exercise the console without a real agent.

Examples:
  fastreact mock-gateway
  fastreact mock-gateway --addr :9000 --delay 500ms
  fastreact mock-gateway --fail-first 3   # exercise reconnect backoff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := helpers.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := helpers.NewLogger(cfg, "", "mock-gateway")
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			gw := mockgateway.New(
				mockgateway.WithDelay(delay),
				mockgateway.WithFailFirst(failFirst),
				mockgateway.WithLogger(logger),
			)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				defer signal.Stop(sigChan)
				select {
				case <-sigChan:
					cancel()
				case <-ctx.Done():
				}
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mock gateway listening on ws://%s%s<session-id>\nPress Ctrl+C to stop\n",
				ln.Addr(), mockgateway.PathPrefix)

			return Serve(ctx, ln, gw, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", constants.DefaultMockGatewayAddr, "Listen address")
	cmd.Flags().DurationVar(&delay, "delay", 700*time.Millisecond, "Pause between replayed events")
	cmd.Flags().IntVar(&failFirst, "fail-first", 0, "Reject the first N connection attempts with 503")

	return cmd
}

// Serve runs gw on ln until ctx is done, then shuts the server down.
func Serve(ctx context.Context, ln net.Listener, gw *mockgateway.Server, logger zerolog.Logger) error {
	httpServer := &http.Server{
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Msg("Mock gateway listening")
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock gateway failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down mock gateway")

	// Hijacked WebSocket connections are not tracked by Shutdown.
	gw.DropAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultCloseGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down mock gateway: %w", err)
	}
	return nil
}
