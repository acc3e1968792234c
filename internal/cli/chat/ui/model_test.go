package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
	"github.com/fastreact/console/internal/session"
)

type fakeSession struct {
	state   session.State
	updates chan session.State

	sent        []string
	clearChat   int
	clearEvents int
	reconnects  int
	sendErr     error
}

func newFakeSession(st session.State) *fakeSession {
	return &fakeSession{state: st, updates: make(chan session.State, 1)}
}

func (f *fakeSession) Snapshot() session.State        { return f.state }
func (f *fakeSession) Updates() <-chan session.State  { return f.updates }
func (f *fakeSession) ClearChat() error               { f.clearChat++; return nil }
func (f *fakeSession) ClearEvents() error             { f.clearEvents++; return nil }
func (f *fakeSession) Reconnect() error               { f.reconnects++; return nil }
func (f *fakeSession) SendMessage(text string) error {
	f.sent = append(f.sent, text)
	return f.sendErr
}

func connectedState() session.State {
	return session.State{ID: "session-1-abc", Phase: connection.PhaseConnected}
}

func newTestModel(t *testing.T, st session.State) (Model, *fakeSession) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	fake := newFakeSession(st)
	m, err := NewModel(fake)
	require.NoError(t, err)
	return m, fake
}

func typeText(m Model, text string) Model {
	m.input.SetValue(text)
	return m
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key)
	return updated.(Model), cmd
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestModel_EnterSendsWhenConnected(t *testing.T) {
	m, fake := newTestModel(t, connectedState())

	m = typeText(m, "  hello  ")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Nil(t, run(cmd))

	assert.Equal(t, []string{"hello"}, fake.sent)
	assert.Empty(t, m.input.Value())
}

func TestModel_EnterIgnoredUnlessSendable(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
	}{
		{"disconnected", session.State{Phase: connection.PhaseDisconnected}},
		{"connecting", session.State{Phase: connection.PhaseConnecting}},
		{"thinking", session.State{Phase: connection.PhaseConnected, Thinking: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake := newTestModel(t, tt.state)
			m = typeText(m, "hello")
			m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			assert.Nil(t, cmd)
			assert.Empty(t, fake.sent)
			assert.Equal(t, "hello", m.input.Value())
		})
	}
}

func TestModel_SendErrorShown(t *testing.T) {
	m, fake := newTestModel(t, connectedState())
	fake.sendErr = errors.New("session not running")

	m = typeText(m, "hello")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	msg := run(cmd)
	require.IsType(t, errorMsg{}, msg)

	updated, _ := m.Update(msg)
	assert.Contains(t, updated.(Model).View(), "session not running")
}

func TestModel_InlineCommands(t *testing.T) {
	m, fake := newTestModel(t, connectedState())

	m = typeText(m, "/clear")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	assert.Equal(t, 1, fake.clearChat)

	m = typeText(m, "/clear-events")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	assert.Equal(t, 1, fake.clearEvents)

	m = typeText(m, "/reconnect")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	assert.Equal(t, 1, fake.reconnects)

	m = typeText(m, "/help")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, helpText, m.notice)

	m = typeText(m, "/bogus")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.ErrorContains(t, m.lastError, "unknown command")

	assert.Empty(t, fake.sent)

	m = typeText(m, "/quit")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, run(cmd))
}

func TestModel_Shortcuts(t *testing.T) {
	m, fake := newTestModel(t, connectedState())

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	run(cmd)
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	run(cmd)
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	run(cmd)

	assert.Equal(t, 1, fake.clearChat)
	assert.Equal(t, 1, fake.clearEvents)
	assert.Equal(t, 1, fake.reconnects)

	toggled, _ := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.False(t, toggled.showTimeline)
}

func TestModel_ReconnectInDemoMode(t *testing.T) {
	m, fake := newTestModel(t, session.State{ID: "demo-session", Phase: connection.PhaseConnected, Demo: true})

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
	assert.Zero(t, fake.reconnects)
	assert.NotEmpty(t, m.notice)
}

func TestModel_StateUpdates(t *testing.T) {
	m, fake := newTestModel(t, session.State{ID: "session-1-abc", Phase: connection.PhaseConnecting})
	assert.Contains(t, m.View(), "Connecting...")

	iteration := 1
	st := connectedState()
	st.Thinking = true
	st.Messages = []session.Message{{
		ID: "msg-1-1", Role: session.RoleUser, Content: "hello",
		Timestamp: time.Now(), Status: session.StatusSending,
	}}
	st.Events = []event.AgentEvent{{
		ID: "evt-1", Type: protocol.EventAction, Content: "Searching",
		Metadata: event.Metadata{
			Timestamp:  time.Now(),
			Iteration:  &iteration,
			ToolName:   "WebSearch",
			Duration:   event.Seconds(1.2),
			Parameters: map[string]any{"query": "go"},
		},
	}}

	updated, cmd := m.Update(stateMsg{state: st})
	m = updated.(Model)
	require.NotNil(t, cmd, "state wait must be re-armed")

	view := m.View()
	assert.Contains(t, view, "Thinking...")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "WebSearch")
	assert.Contains(t, view, "1.20s")
	assert.Contains(t, view, "query=go")

	fake.updates <- connectedState()
	assert.IsType(t, stateMsg{}, run(cmd))

	close(fake.updates)
	assert.IsType(t, sessionClosedMsg{}, run(waitForStateCmd(fake.updates)))
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		m, _ := newTestModel(t, connectedState())
		m, cmd := press(t, m, tea.KeyMsg{Type: key})
		assert.True(t, m.quitting)
		assert.Equal(t, "Goodbye!\n", m.View())
		assert.IsType(t, tea.QuitMsg{}, run(cmd))
	}
}
