package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestLogger returns a logger for tests. Output is discarded unless
// FASTREACT_TEST_LOG is set, in which case it goes to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	if os.Getenv("FASTREACT_TEST_LOG") != "" {
		return NewTestLoggerWithOutput(t)
	}
	return zerolog.New(io.Discard)
}

// NewTestLoggerWithOutput returns a debug-level logger writing to t.Log.
func NewTestLoggerWithOutput(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.ConsoleWriter{Out: testWriter{t}, NoColor: true}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
