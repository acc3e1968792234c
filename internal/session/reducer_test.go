package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func evt(typ protocol.EventType, content string) EventArrived {
	return EventArrived{Event: event.AgentEvent{ID: "evt-" + content, Type: typ, Content: content}}
}

func connectedReducer() *Reducer {
	r := NewReducer("session-test", false, fixedClock())
	r.Apply(PhaseChanged{Phase: connection.PhaseConnected})
	return r
}

func TestReducer_ThinkingFollowsLastEvent(t *testing.T) {
	tests := []struct {
		name   string
		events []protocol.EventType
		want   bool
	}{
		{"empty", nil, false},
		{"thought", []protocol.EventType{protocol.EventThought}, true},
		{"action", []protocol.EventType{protocol.EventAction}, true},
		{"observation keeps thinking", []protocol.EventType{protocol.EventAction, protocol.EventObservation}, true},
		{"answer ends", []protocol.EventType{protocol.EventThought, protocol.EventAnswer}, false},
		{"final ends", []protocol.EventType{protocol.EventThought, protocol.EventFinal}, false},
		{"error ends", []protocol.EventType{protocol.EventAction, protocol.EventError}, false},
		{"observation after answer", []protocol.EventType{protocol.EventAnswer, protocol.EventObservation}, false},
		{"new turn", []protocol.EventType{protocol.EventAnswer, protocol.EventThought, protocol.EventObservation}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := connectedReducer()
			for i, typ := range tt.events {
				r.Apply(evt(typ, string(rune('a'+i))))
			}
			assert.Equal(t, tt.want, r.State().Thinking)
			assert.Len(t, r.State().Events, len(tt.events))
		})
	}
}

func TestReducer_UserSendLive(t *testing.T) {
	r := connectedReducer()

	effects := r.Apply(UserSend{Text: "  hello  "})
	require.Len(t, effects, 1)

	st := r.State()
	require.Len(t, st.Messages, 1)
	msg := st.Messages[0]
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, StatusSending, msg.Status)
	assert.Regexp(t, `^msg-\d+-1$`, msg.ID)
	assert.True(t, st.Thinking)

	send, ok := effects[0].(SendEffect)
	require.True(t, ok)
	assert.Equal(t, SendEffect{MessageID: msg.ID, Content: "hello"}, send)
	assert.Equal(t, 1, r.Pending())
}

func TestReducer_UserSendIgnored(t *testing.T) {
	t.Run("blank text", func(t *testing.T) {
		r := connectedReducer()
		assert.Empty(t, r.Apply(UserSend{Text: " \n\t "}))
		assert.Empty(t, r.State().Messages)
		assert.False(t, r.State().Thinking)
	})

	for _, phase := range []connection.Phase{connection.PhaseDisconnected, connection.PhaseConnecting} {
		t.Run(phase.String(), func(t *testing.T) {
			r := NewReducer("s", false, fixedClock())
			r.Apply(PhaseChanged{Phase: phase})
			assert.Empty(t, r.Apply(UserSend{Text: "hello"}))
			assert.Empty(t, r.State().Messages)
			assert.False(t, r.State().Thinking)
		})
	}
}

func TestReducer_UserSendDemo(t *testing.T) {
	r := NewReducer("demo-session", true, fixedClock())
	assert.Equal(t, connection.PhaseConnected, r.State().Phase)

	effects := r.Apply(UserSend{Text: "foo"})
	assert.Equal(t, []Effect{DemoEffect{Text: "foo"}}, effects)

	st := r.State()
	require.Len(t, st.Messages, 1)
	assert.Equal(t, StatusSent, st.Messages[0].Status)
	assert.True(t, st.Thinking)
	assert.Zero(t, r.Pending())

	// Demo sessions stay connected whatever the transport reports.
	r.Apply(PhaseChanged{Phase: connection.PhaseDisconnected})
	assert.Equal(t, connection.PhaseConnected, r.State().Phase)
}

func TestReducer_TerminalEventResolvesPending(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "first"})
	r.Apply(UserSend{Text: "second"})
	require.Equal(t, 2, r.Pending())

	r.Apply(evt(protocol.EventThought, "hmm"))
	assert.Equal(t, StatusSending, r.State().Messages[0].Status)

	r.Apply(evt(protocol.EventAnswer, "done"))

	st := r.State()
	require.Len(t, st.Messages, 3)
	assert.Equal(t, StatusSent, st.Messages[0].Status)
	assert.Equal(t, StatusSent, st.Messages[1].Status)
	assert.Equal(t, Message{
		ID:        st.Messages[2].ID,
		Role:      RoleAssistant,
		Content:   "done",
		Timestamp: st.Messages[2].Timestamp,
		Status:    StatusSent,
	}, st.Messages[2])
	assert.Zero(t, r.Pending())

	// Resolution happens once: a later loss does not touch settled messages.
	r.Apply(ConnectionLost{})
	assert.Equal(t, StatusSent, r.State().Messages[0].Status)
}

func TestReducer_ErrorEvent(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "boom"})
	r.Apply(evt(protocol.EventError, "tool crashed"))

	st := r.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, StatusSent, st.Messages[0].Status)
	assert.Equal(t, RoleAssistant, st.Messages[1].Role)
	assert.Equal(t, StatusError, st.Messages[1].Status)
	assert.Equal(t, "tool crashed", st.Messages[1].Content)
	assert.False(t, st.Thinking)
}

func TestReducer_ConnectionLost(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "hello"})
	r.Apply(evt(protocol.EventThought, "hmm"))
	require.True(t, r.State().Thinking)

	r.Apply(ConnectionLost{})

	st := r.State()
	assert.False(t, st.Thinking)
	require.Len(t, st.Messages, 1)
	assert.Equal(t, StatusError, st.Messages[0].Status)
	assert.Len(t, st.Events, 1)

	// A late answer does not resurrect the failed message.
	r.Apply(evt(protocol.EventAnswer, "late"))
	assert.Equal(t, StatusError, r.State().Messages[0].Status)
}

func TestReducer_ConnectionRestored(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "hello"})
	r.Apply(ConnectionRestored{})

	st := r.State()
	assert.False(t, st.Thinking)
	assert.Equal(t, StatusSending, st.Messages[0].Status)
}

func TestReducer_ClearsAreIndependent(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "hello"})
	r.Apply(evt(protocol.EventThought, "hmm"))
	r.Apply(evt(protocol.EventAnswer, "done"))

	r.Apply(ClearChat{})
	st := r.State()
	assert.Empty(t, st.Messages)
	assert.Len(t, st.Events, 2)

	r.Apply(UserSend{Text: "again"})
	r.Apply(ClearEvents{})
	st = r.State()
	assert.Empty(t, st.Events)
	assert.Len(t, st.Messages, 1)
}

func TestReducer_ClearChatDropsPending(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "hello"})
	r.Apply(ClearChat{})
	assert.Zero(t, r.Pending())

	require.NotPanics(t, func() { r.Apply(evt(protocol.EventAnswer, "done")) })
	st := r.State()
	require.Len(t, st.Messages, 1)
	assert.Equal(t, RoleAssistant, st.Messages[0].Role)
}

func TestReducer_PhaseChangedRecordsRetry(t *testing.T) {
	r := NewReducer("s", false, fixedClock())
	r.Apply(PhaseChanged{Phase: connection.PhaseDisconnected, Attempt: 2, RetryIn: 2 * time.Second})

	st := r.State()
	assert.Equal(t, 2, st.Attempt)
	assert.Equal(t, 2*time.Second, st.RetryIn)
	assert.False(t, st.CanSend())
}

func TestReducer_StateIsACopy(t *testing.T) {
	r := connectedReducer()
	r.Apply(UserSend{Text: "hello"})

	st := r.State()
	st.Messages[0].Content = "mutated"
	assert.Equal(t, "hello", r.State().Messages[0].Content)
}
