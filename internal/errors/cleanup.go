// Package errors provides small error handling helpers shared by the console.
package errors

import (
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// DeferClose properly closes an io.Closer with logging.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil && !IsClosed(err) {
		logger.Warn().Err(err).Msg(msg)
	}
}

// IsClosed reports whether err means the peer ended the WebSocket
// session cleanly or the socket was already closed locally.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
