package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/demo"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/retry"
)

// ErrNotStarted is returned by intents issued before Start or after Close.
var ErrNotStarted = errors.New("session not running")

// Config describes one session.
type Config struct {
	// GatewayURL is the base endpoint; the session id is appended as the
	// last path segment.
	GatewayURL       string
	Demo             bool
	AutoReconnect    bool
	ReconnectDelays  retry.Table
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	DemoMinDelay   time.Duration
	DemoMaxDelay   time.Duration
	DemoFinalDelay time.Duration
}

// DefaultConfig returns a live session against the default gateway.
func DefaultConfig() Config {
	return Config{
		GatewayURL:       constants.DefaultGatewayURL,
		AutoReconnect:    true,
		ReconnectDelays:  retry.Table(constants.DefaultReconnectDelays),
		HandshakeTimeout: constants.DefaultHandshakeTimeout,
		WriteTimeout:     constants.DefaultWriteTimeout,
		DemoMinDelay:     constants.DefaultDemoMinDelay,
		DemoMaxDelay:     constants.DefaultDemoMaxDelay,
		DemoFinalDelay:   constants.DefaultDemoFinalDelay,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger shared with the connection manager.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the clock used for message timestamps and identity.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithPlayer replaces the demo player.
func WithPlayer(p *demo.Player) Option {
	return func(s *Session) {
		s.player = p
	}
}

// WithConnectionOptions appends options for the connection manager.
func WithConnectionOptions(opts ...connection.Option) Option {
	return func(s *Session) {
		s.connOpts = append(s.connOpts, opts...)
	}
}

// Session is the composition root of one conversation. All state changes
// happen on its run goroutine.
type Session struct {
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
	identity *Identity
	player   *demo.Player
	connOpts []connection.Option

	reducer *Reducer
	manager *connection.Manager

	intents    chan Action
	reconnect  chan struct{}
	demoEvents chan event.AgentEvent
	updates    chan State

	mu       sync.RWMutex
	snapshot State

	startOnce sync.Once
	startErr  error
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	running   chan struct{}
	loopDone  chan struct{}
	demoWG    sync.WaitGroup
}

// New creates a session. Nothing is connected and no identity is assigned
// until Start.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:        cfg,
		logger:     zerolog.Nop(),
		now:        time.Now,
		intents:    make(chan Action, 16),
		reconnect:  make(chan struct{}, 1),
		demoEvents: make(chan event.AgentEvent),
		updates:    make(chan State, 1),
		running:    make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.identity = NewIdentity(cfg.Demo, s.now)
	if s.player == nil {
		s.player = demo.NewPlayer(
			demo.WithDelays(cfg.DemoMinDelay, cfg.DemoMaxDelay, cfg.DemoFinalDelay),
			demo.WithLogger(s.logger),
		)
	}
	s.snapshot = NewReducer("", cfg.Demo, s.now).State()
	return s
}

// Start assigns the session identity, opens the gateway connection in live
// mode and starts the run loop. It fails without starting anything when ctx
// is already done or the gateway URL cannot be dialed. Calls after the
// first return the first result.
func (s *Session) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		if err := ctx.Err(); err != nil {
			s.startErr = fmt.Errorf("start session: %w", err)
			return
		}
		if !s.cfg.Demo {
			if err := ValidateGatewayURL(s.cfg.GatewayURL); err != nil {
				s.startErr = err
				return
			}
		}

		id := s.identity.Assign()
		s.logger = s.logger.With().Str("session_id", id).Logger()
		s.reducer = NewReducer(id, s.cfg.Demo, s.now)
		s.ctx, s.cancel = context.WithCancel(ctx)

		var notifications <-chan connection.Notification
		if !s.cfg.Demo {
			endpoint := Endpoint(s.cfg.GatewayURL, id)
			opts := []connection.Option{
				connection.WithLogger(s.logger),
				connection.WithAutoReconnect(s.cfg.AutoReconnect),
				connection.WithBackoff(s.cfg.ReconnectDelays),
				connection.WithHandshakeTimeout(s.cfg.HandshakeTimeout),
				connection.WithWriteTimeout(s.cfg.WriteTimeout),
			}
			s.manager = connection.NewManager(endpoint, append(opts, s.connOpts...)...)
			notifications = s.manager.Notifications()

			s.logger.Info().Str("endpoint", endpoint).Msg("Starting live session")
		} else {
			s.logger.Info().Msg("Starting demo session")
		}

		s.publish()
		close(s.running)
		go s.run(notifications)

		if s.manager != nil {
			s.manager.Open()
		}
	})
	return s.startErr
}

// ID returns the session identifier, or "" before Start.
func (s *Session) ID() string {
	return s.identity.ID()
}

// Demo reports whether the session replays scripted events.
func (s *Session) Demo() bool {
	return s.cfg.Demo
}

// Snapshot returns a copy of the latest state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Updates delivers states as they change. Intermediate states may be
// skipped when the consumer falls behind; the latest one always arrives.
// The channel is closed by Close.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// SendMessage submits user text.
func (s *Session) SendMessage(text string) error {
	return s.dispatch(UserSend{Text: text})
}

// ClearChat empties the transcript.
func (s *Session) ClearChat() error {
	return s.dispatch(ClearChat{})
}

// ClearEvents empties the timeline.
func (s *Session) ClearEvents() error {
	return s.dispatch(ClearEvents{})
}

// Reconnect forces a fresh connection with a reset backoff. It is a no-op
// in demo mode.
func (s *Session) Reconnect() error {
	if err := s.checkRunning(); err != nil {
		return err
	}
	if s.cfg.Demo {
		return nil
	}
	select {
	case s.reconnect <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the run loop, cancels demo runs and shuts the connection down.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		select {
		case <-s.running:
		default:
			close(s.updates)
			return
		}

		s.cancel()
		if s.manager != nil {
			s.manager.Shutdown()
		}
		<-s.loopDone
		s.demoWG.Wait()
		close(s.updates)

		s.logger.Info().Msg("Session closed")
	})
}

func (s *Session) checkRunning() error {
	select {
	case <-s.running:
	default:
		return ErrNotStarted
	}
	if s.ctx.Err() != nil {
		return ErrNotStarted
	}
	return nil
}

func (s *Session) dispatch(a Action) error {
	if err := s.checkRunning(); err != nil {
		return err
	}
	select {
	case s.intents <- a:
		return nil
	case <-s.ctx.Done():
		return ErrNotStarted
	}
}

func (s *Session) run(notifications <-chan connection.Notification) {
	defer close(s.loopDone)

	for {
		select {
		case <-s.ctx.Done():
			return

		case a := <-s.intents:
			s.apply(a)

		case <-s.reconnect:
			s.logger.Info().Msg("Reconnect requested")
			s.manager.ForceReconnect()

		case n := <-notifications:
			s.handleNotification(n)

		case evt := <-s.demoEvents:
			s.apply(EventArrived{Event: evt})
		}
	}
}

func (s *Session) handleNotification(n connection.Notification) {
	switch n.Kind {
	case connection.KindConnecting:
		s.apply(PhaseChanged{Phase: connection.PhaseConnecting, Attempt: n.Attempt})
	case connection.KindConnected:
		s.apply(PhaseChanged{Phase: connection.PhaseConnected})
		s.apply(ConnectionRestored{})
	case connection.KindDisconnected:
		s.apply(PhaseChanged{Phase: connection.PhaseDisconnected})
		s.apply(ConnectionLost{})
	case connection.KindConnectFailed:
		s.apply(PhaseChanged{Phase: connection.PhaseDisconnected, Attempt: s.manager.Attempt()})
	case connection.KindReconnectScheduled:
		s.apply(PhaseChanged{Phase: n.Phase, Attempt: n.Attempt, RetryIn: n.RetryIn})
	case connection.KindEvent:
		s.apply(EventArrived{Event: n.Event})
	}
}

func (s *Session) apply(a Action) {
	for _, effect := range s.reducer.Apply(a) {
		switch e := effect.(type) {
		case SendEffect:
			if !s.manager.Send(e.Content) {
				s.logger.Warn().Str("message_id", e.MessageID).Msg("Message not delivered")
			}
		case DemoEffect:
			s.startDemo(e.Text)
		}
	}
	s.publish()
}

func (s *Session) startDemo(text string) {
	s.demoWG.Add(1)
	go func() {
		defer s.demoWG.Done()
		err := s.player.Run(s.ctx, text, func(evt event.AgentEvent) {
			select {
			case s.demoEvents <- evt:
			case <-s.ctx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Msg("Demo run failed")
		}
	}()
}

// publish stores the snapshot and offers it on the updates channel,
// replacing any state the consumer has not read yet.
func (s *Session) publish() {
	st := s.reducer.State()

	s.mu.Lock()
	s.snapshot = st
	s.mu.Unlock()

	select {
	case s.updates <- st:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- st:
	default:
	}
}
