package mockgateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastreact/console/internal/demo"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
)

func wsURL(srv *httptest.Server, session string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + PathPrefix + session
}

func TestServer_ReplaysScriptAndAnswer(t *testing.T) {
	gw := New(WithScript(demo.DefaultScript()[:2]))
	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "session-1"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	out, err := json.Marshal(protocol.NewOutboundMessage("hello", time.Now()))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))

	normalizer := event.NewNormalizer()
	var got []event.AgentEvent
	for len(got) < 3 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		evt, err := normalizer.Normalize(data)
		require.NoError(t, err)
		got = append(got, evt)
	}

	assert.Equal(t, protocol.EventThought, got[0].Type)
	assert.Equal(t, protocol.EventAction, got[1].Type)
	assert.Equal(t, "WebSearch", got[1].Metadata.ToolName)
	assert.Equal(t, protocol.EventAnswer, got[2].Type)
	assert.Contains(t, got[2].Content, `"hello"`)
	assert.EqualValues(t, 1, gw.Received())
}

func TestServer_FailFirst(t *testing.T) {
	gw := New(WithFailFirst(2))
	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()

	for i := 0; i < 2; i++ {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "s"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "s"), nil)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestServer_RejectsMissingSession(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + PathPrefix)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_IgnoresUnexpectedFrames(t *testing.T) {
	gw := New(WithScript(nil))
	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "s"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	out, err := json.Marshal(protocol.NewOutboundMessage("x", time.Now()))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"answer"`)
	assert.EqualValues(t, 1, gw.Received())
}
