// Package mockgateway serves the agent gateway wire contract over WebSocket,
// replaying a scripted reasoning trace for every user message.
package mockgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/demo"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
)

// PathPrefix is the route under which sessions are served.
const PathPrefix = "/ws/"

// Server is a scripted gateway.
type Server struct {
	script     demo.Script
	delay      time.Duration
	normalizer *event.Normalizer
	logger     zerolog.Logger
	upgrader   websocket.Upgrader

	failRemaining atomic.Int64
	accepted      atomic.Int64
	received      atomic.Int64

	mu    sync.Mutex
	conns map[*websocket.Conn]context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithScript replaces the replayed script.
func WithScript(s demo.Script) Option {
	return func(srv *Server) {
		srv.script = s
	}
}

// WithDelay sets the pause between replayed frames.
func WithDelay(d time.Duration) Option {
	return func(srv *Server) {
		srv.delay = d
	}
}

// WithFailFirst rejects the first n upgrade requests with 503.
func WithFailFirst(n int) Option {
	return func(srv *Server) {
		srv.failRemaining.Store(int64(n))
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// New creates a server replaying demo.DefaultScript.
func New(opts ...Option) *Server {
	srv := &Server{
		script: demo.DefaultScript(),
		logger: zerolog.Nop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.normalizer = event.NewNormalizer(event.WithLogger(srv.logger))
	return srv
}

// Handler returns the HTTP handler serving PathPrefix + "{session}".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PathPrefix, s.serveSession)
	return mux
}

// Connections returns the number of open sessions.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Accepted returns the number of upgrades served.
func (s *Server) Accepted() int64 {
	return s.accepted.Load()
}

// Received returns the number of user messages handled.
func (s *Server) Received() int64 {
	return s.received.Load()
}

// DropAll closes every open connection without a close handshake.
func (s *Server) DropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, cancel := range s.conns {
		cancel()
		_ = conn.Close()
	}
}

func (s *Server) serveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, PathPrefix)
	if sessionID == "" || strings.Contains(sessionID, "/") {
		http.NotFound(w, r)
		return
	}

	if s.failRemaining.Add(-1) >= 0 {
		s.logger.Info().Str("session_id", sessionID).Msg("Rejecting upgrade")
		http.Error(w, "gateway warming up", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Upgrade failed")
		return
	}

	s.accepted.Add(1)

	// Hijacked connections outlive the request context.
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.conns[conn] = cancel
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sessionID).Msg("Session connected")

	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
		s.logger.Info().Str("session_id", sessionID).Msg("Session disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg protocol.OutboundMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != protocol.MessageType {
			s.logger.Warn().Bytes("frame", data).Msg("Ignoring unexpected frame")
			continue
		}
		s.received.Add(1)

		if err := s.replay(ctx, conn, msg.Content); err != nil {
			s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("Replay aborted")
			return
		}
	}
}

// replay writes the script followed by the answer for content.
func (s *Server) replay(ctx context.Context, conn *websocket.Conn, content string) error {
	templates := make([]event.AgentEvent, 0, len(s.script)+1)
	templates = append(templates, s.script...)
	templates = append(templates, demo.AnswerTemplate(content))

	for _, tpl := range templates {
		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}

		data, err := json.Marshal(s.normalizer.Stamp(tpl).ToFrame())
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}
