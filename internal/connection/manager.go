// Package connection maintains the WebSocket connection to the agent gateway.
//
// A Manager owns at most one live connection. It reconnects after unsolicited
// drops using a backoff table, normalizes inbound frames, and publishes
// everything it observes as Notifications on a single ordered channel.
package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/errors"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
	"github.com/fastreact/console/internal/retry"
)

// maxLoggedFrame bounds how much of a dropped frame is written to the log.
const maxLoggedFrame = 512

// Dialer opens WebSocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Timer is a pending scheduled function. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler arms reconnect timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClockScheduler struct{}

func (wallClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manager manages one logical connection to the gateway endpoint.
type Manager struct {
	// Configuration
	url              string
	autoReconnect    bool
	backoff          retry.Table
	dialer           Dialer
	normalizer       *event.Normalizer
	scheduler        Scheduler
	logger           zerolog.Logger
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	maxFrameSize     int64
	now              func() time.Time

	// State tracking, guarded by mu.
	mu         sync.Mutex
	phase      Phase
	conn       *websocket.Conn
	outbound   chan []byte
	attempt    int
	generation uint64
	retryTimer Timer
	cancelDial context.CancelFunc
	stopped    bool
	queue      []Notification

	dropped atomic.Uint64

	notifications chan Notification
	wake          chan struct{}
	done          chan struct{}
	dispatchWG    sync.WaitGroup
	shutdownOnce  sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutoReconnect enables or disables reconnecting after unsolicited drops.
func WithAutoReconnect(enabled bool) Option {
	return func(m *Manager) {
		m.autoReconnect = enabled
	}
}

// WithBackoff sets the reconnect delay table.
func WithBackoff(table retry.Table) Option {
	return func(m *Manager) {
		if len(table) > 0 {
			m.backoff = table
		}
	}
}

// WithDialer replaces the gorilla dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithNormalizer sets the normalizer applied to inbound frames.
func WithNormalizer(n *event.Normalizer) Option {
	return func(m *Manager) {
		m.normalizer = n
	}
}

// WithScheduler replaces the wall-clock reconnect timer.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

// WithLogger sets the logger. Dropped frames are reported here.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHandshakeTimeout bounds each opening handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.handshakeTimeout = d
		}
	}
}

// WithWriteTimeout bounds each outbound write.
func WithWriteTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.writeTimeout = d
		}
	}
}

// WithMaxFrameSize caps the size of one inbound frame. A larger frame
// closes the connection like any other read failure.
func WithMaxFrameSize(n int64) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxFrameSize = n
		}
	}
}

// NewManager creates a manager for the given endpoint. The manager starts
// disconnected; call Open to connect and Shutdown to release it.
func NewManager(url string, opts ...Option) *Manager {
	m := &Manager{
		url:              url,
		autoReconnect:    true,
		backoff:          retry.Table(constants.DefaultReconnectDelays),
		dialer:           websocket.DefaultDialer,
		scheduler:        wallClockScheduler{},
		logger:           zerolog.Nop(),
		handshakeTimeout: constants.DefaultHandshakeTimeout,
		writeTimeout:     constants.DefaultWriteTimeout,
		maxFrameSize:     constants.DefaultMaxFrameSize,
		now:              time.Now,
		phase:            PhaseDisconnected,
		notifications:    make(chan Notification),
		wake:             make(chan struct{}, 1),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.normalizer == nil {
		m.normalizer = event.NewNormalizer(event.WithLogger(m.logger))
	}

	m.dispatchWG.Add(1)
	go m.dispatch()

	return m
}

// Notifications returns the ordered notification channel. The channel is
// unbuffered and nothing is delivered once Shutdown has returned.
func (m *Manager) Notifications() <-chan Notification {
	return m.notifications
}

// URL returns the endpoint address.
func (m *Manager) URL() string {
	return m.url
}

// Phase returns the current connection phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Attempt returns the consecutive reconnect attempt counter.
func (m *Manager) Attempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// DroppedFrames returns how many inbound frames failed normalization.
func (m *Manager) DroppedFrames() uint64 {
	return m.dropped.Load()
}

// Open starts connecting. It is a no-op while a connection is open or
// being opened, and after Shutdown.
func (m *Manager) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openLocked()
}

// Close cancels any pending reconnect and closes the active connection.
// No automatic reconnect follows an explicit Close.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// ForceReconnect resets the attempt counter, closes and reopens.
func (m *Manager) ForceReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info().
		Int("previous_attempt", m.attempt).
		Msg("Manual reconnect requested")

	m.attempt = 0
	m.closeLocked()
	m.openLocked()
}

// Shutdown closes the connection and detaches the manager. After it
// returns no further notification is delivered.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		m.closeLocked()
		m.queue = nil
		m.mu.Unlock()

		close(m.done)
		m.dispatchWG.Wait()

		m.logger.Debug().Msg("Connection manager shut down")
	})
}

// Send queues a user message for the connection's writer and returns
// without waiting for the socket. It only accepts while connected and drops
// otherwise, or when the send queue is full: delivery is at-most-once and
// nothing is carried over to the next connection.
func (m *Manager) Send(content string) bool {
	data, err := json.Marshal(protocol.NewOutboundMessage(content, m.now()))
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to encode outbound message")
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseConnected || m.outbound == nil {
		m.logger.Debug().Msg("Dropping outbound message while not connected")
		return false
	}

	select {
	case m.outbound <- data:
		return true
	default:
		m.logger.Warn().Int("queue", cap(m.outbound)).Msg("Send queue full - dropping message")
		return false
	}
}

// writePump writes queued frames to one connection until its queue is
// closed. A failed write closes the socket so the read pump runs the drop
// path.
func (m *Manager) writePump(conn *websocket.Conn, outbound <-chan []byte) {
	for data := range outbound {
		if err := conn.SetWriteDeadline(m.now().Add(m.writeTimeout)); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to set write deadline")
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to send message - closing connection")
			_ = conn.Close()
			return
		}
		m.logger.Debug().Int("bytes", len(data)).Msg("Sent message")
	}
}

// releaseConnLocked detaches the active connection and stops its writer.
func (m *Manager) releaseConnLocked() {
	m.conn = nil
	if m.outbound != nil {
		close(m.outbound)
		m.outbound = nil
	}
}

func (m *Manager) openLocked() {
	if m.stopped || m.phase != PhaseDisconnected {
		return
	}

	m.stopRetryLocked()
	m.generation++
	gen := m.generation

	ctx, cancel := context.WithTimeout(context.Background(), m.handshakeTimeout)
	m.cancelDial = cancel
	m.setPhaseLocked(PhaseConnecting)
	m.enqueueLocked(Notification{Kind: KindConnecting, Phase: PhaseConnecting, Attempt: m.attempt})

	m.logger.Info().
		Str("url", m.url).
		Int("attempt", m.attempt).
		Msg("Connecting to gateway")

	go m.dial(ctx, cancel, gen)
}

func (m *Manager) closeLocked() {
	m.stopRetryLocked()
	m.generation++

	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}

	wasConnected := m.phase == PhaseConnected
	if m.conn != nil {
		go m.closeConn(m.conn)
		m.releaseConnLocked()
	}
	m.setPhaseLocked(PhaseDisconnected)

	if wasConnected {
		m.enqueueLocked(Notification{Kind: KindDisconnected, Phase: PhaseDisconnected})
	}
}

func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// setPhaseLocked updates the phase and logs the transition.
func (m *Manager) setPhaseLocked(newPhase Phase) {
	oldPhase := m.phase
	m.phase = newPhase

	if oldPhase != newPhase {
		m.logger.Debug().
			Str("old_state", oldPhase.String()).
			Str("new_state", newPhase.String()).
			Msg("Connection state changed")
	}
}

// scheduleReconnectLocked arms a retry after an unsolicited drop or a
// failed open, then advances the attempt counter.
func (m *Manager) scheduleReconnectLocked() {
	if !m.autoReconnect || m.stopped {
		return
	}

	delay := m.backoff.Delay(m.attempt)
	m.attempt++
	gen := m.generation

	m.retryTimer = m.scheduler.AfterFunc(delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.generation || m.stopped {
			return
		}
		m.retryTimer = nil
		m.openLocked()
	})

	m.logger.Info().
		Dur("retry_in", delay).
		Int("attempt", m.attempt).
		Msg("Reconnect scheduled")

	m.enqueueLocked(Notification{
		Kind:    KindReconnectScheduled,
		Phase:   m.phase,
		Attempt: m.attempt,
		RetryIn: delay,
	})
}

func (m *Manager) dial(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer cancel()

	conn, _, err := m.dialer.DialContext(ctx, m.url, nil)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	m.cancelDial = nil

	if err != nil {
		m.setPhaseLocked(PhaseDisconnected)
		m.logger.Warn().
			Err(err).
			Str("url", m.url).
			Msg("Failed to connect to gateway")
		m.enqueueLocked(Notification{Kind: KindConnectFailed, Phase: PhaseDisconnected, Err: err})
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return
	}

	conn.SetReadLimit(m.maxFrameSize)
	outbound := make(chan []byte, constants.DefaultSendQueueSize)
	m.conn = conn
	m.outbound = outbound
	m.attempt = 0
	m.setPhaseLocked(PhaseConnected)
	m.enqueueLocked(Notification{Kind: KindConnected, Phase: PhaseConnected})
	m.mu.Unlock()

	m.logger.Info().Str("url", m.url).Msg("Connected to gateway")

	go m.writePump(conn, outbound)
	m.readPump(conn, gen)
}

// readPump reads frames until the connection fails. Malformed frames are
// logged and skipped; they never end the loop.
func (m *Manager) readPump(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleDrop(conn, gen, err)
			return
		}

		evt, err := m.normalizer.Normalize(data)
		if err != nil {
			m.dropped.Add(1)
			frame := data
			if len(frame) > maxLoggedFrame {
				frame = frame[:maxLoggedFrame]
			}
			m.logger.Warn().
				Err(err).
				Bytes("frame", frame).
				Msg("Dropping malformed frame")
			continue
		}

		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return
		}
		m.enqueueLocked(Notification{Kind: KindEvent, Phase: PhaseConnected, Event: evt})
		m.mu.Unlock()
	}
}

func (m *Manager) handleDrop(conn *websocket.Conn, gen uint64, err error) {
	m.mu.Lock()
	if gen != m.generation {
		// Closed on purpose; Close already published the transition.
		m.mu.Unlock()
		return
	}

	m.releaseConnLocked()
	m.setPhaseLocked(PhaseDisconnected)

	if errors.IsClosed(err) {
		m.logger.Info().Err(err).Str("url", m.url).Msg("Gateway closed the connection")
	} else {
		m.logger.Warn().Err(err).Str("url", m.url).Msg("Connection to gateway lost")
	}

	m.enqueueLocked(Notification{Kind: KindDisconnected, Phase: PhaseDisconnected, Err: err})
	m.scheduleReconnectLocked()
	m.mu.Unlock()

	errors.DeferClose(m.logger, conn, "Failed to close dropped connection")
}

func (m *Manager) closeConn(conn *websocket.Conn) {
	deadline := time.Now().Add(constants.DefaultCloseGracePeriod)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to send close frame")
	}
	errors.DeferClose(m.logger, conn, "Failed to close connection")
}

// enqueueLocked appends a notification for the dispatcher. It never blocks,
// so state transitions and their notifications stay in one critical section.
func (m *Manager) enqueueLocked(n Notification) {
	if m.stopped {
		return
	}
	m.queue = append(m.queue, n)
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// dispatch forwards queued notifications in order until Shutdown.
func (m *Manager) dispatch() {
	defer m.dispatchWG.Done()

	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}

		for {
			select {
			case <-m.done:
				return
			default:
			}

			m.mu.Lock()
			if len(m.queue) == 0 {
				m.mu.Unlock()
				break
			}
			n := m.queue[0]
			m.queue = m.queue[1:]
			m.mu.Unlock()

			select {
			case m.notifications <- n:
			case <-m.done:
				return
			}
		}
	}
}
