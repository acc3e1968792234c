package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/cli/chat/ui"
	"github.com/fastreact/console/internal/retry"
	"github.com/fastreact/console/internal/session"
)

// ErrNotConnected is returned when the session does not come online in time.
var ErrNotConnected = errors.New("session not connected")

// Session is the part of *session.Session the streamer drives.
type Session interface {
	Snapshot() session.State
	Updates() <-chan session.State
	SendMessage(text string) error
}

// Streamer forwards input lines to a session one turn at a time and
// prints the events it produces.
type Streamer struct {
	session     Session
	printer     *Printer
	logger      zerolog.Logger
	connectWait retry.Config

	state   session.State
	printed int
	status  string

	queue    []string
	inflight bool
	accepted bool
	base     int
	eof      bool
}

// NewStreamer creates a streamer. connectTimeout bounds the initial wait
// for the session to come online.
func NewStreamer(s Session, printer *Printer, logger zerolog.Logger, connectTimeout time.Duration) *Streamer {
	interval := 100 * time.Millisecond
	attempts := int(connectTimeout/interval) + 1
	return &Streamer{
		session: s,
		printer: printer,
		logger:  logger,
		connectWait: retry.Config{
			MaxRetries:     attempts,
			InitialBackoff: interval,
			MaxBackoff:     interval,
		},
	}
}

// Run reads lines until EOF, sends each once the previous turn has
// finished, and returns after the last turn settles. It also returns when
// ctx is done or the session closes.
func (s *Streamer) Run(ctx context.Context, input LineReader) error {
	err := retry.Do(ctx, s.connectWait, func() error {
		if !s.session.Snapshot().Connected() {
			return ErrNotConnected
		}
		return nil
	}, nil)
	if err != nil {
		return fmt.Errorf("waiting for gateway: %w", err)
	}

	s.observe(s.session.Snapshot())

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := input.ReadLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	updates := s.session.Updates()
	for {
		if s.done() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case st, ok := <-updates:
			if !ok {
				return nil
			}
			s.observe(st)

		case line, ok := <-lines:
			if !ok {
				s.eof = true
				lines = nil
				select {
				case err := <-readErr:
					return fmt.Errorf("reading input: %w", err)
				default:
				}
				break
			}
			s.queue = append(s.queue, line)
		}

		if err := s.flush(); err != nil {
			return err
		}
	}
}

func (s *Streamer) done() bool {
	return s.eof && len(s.queue) == 0 && !s.inflight
}

// observe prints events added since the last state and tracks the
// in-flight turn.
func (s *Streamer) observe(st session.State) {
	if len(st.Events) < s.printed {
		s.printed = 0
	}
	for _, evt := range st.Events[s.printed:] {
		if err := s.printer.Event(evt); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to print event")
		}
	}
	s.printed = len(st.Events)

	if status := ui.StatusText(st); status != s.status && !st.Thinking {
		s.status = status
		s.printer.Status(status)
	}

	s.state = st

	if !s.inflight {
		return
	}
	if !s.accepted {
		if userMessages(st) > s.base {
			s.accepted = true
			s.queue = s.queue[1:]
		} else if !st.Connected() {
			// The send raced a disconnect and was dropped; retry after
			// the session reconnects.
			s.inflight = false
			return
		}
	}
	if s.accepted && !st.Thinking {
		s.inflight = false
	}
}

// flush sends the next queued line when the session can take it.
func (s *Streamer) flush() error {
	for !s.inflight && len(s.queue) > 0 {
		if !s.state.CanSend() {
			return nil
		}
		if strings.TrimSpace(s.queue[0]) == "" {
			s.queue = s.queue[1:]
			continue
		}

		s.base = userMessages(s.state)
		s.inflight = true
		s.accepted = false
		if err := s.session.SendMessage(s.queue[0]); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		s.logger.Debug().Int("queued", len(s.queue)-1).Msg("Message submitted")
	}
	return nil
}

func userMessages(st session.State) int {
	n := 0
	for _, m := range st.Messages {
		if m.Role == session.RoleUser {
			n++
		}
	}
	return n
}
