package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		m.state = msg.state
		if m.state.Connected() {
			m.lastError = nil
		}
		m.timeline.SetContent(m.renderTimeline())
		m.timeline.GotoBottom()
		m.updatePlaceholder()
		return m, waitForStateCmd(m.session.Updates())

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case errorMsg:
		m.lastError = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+r":
		return m.reconnect()

	case "ctrl+l":
		m.notice = ""
		return m, intentCmd(m.session.ClearChat)

	case "ctrl+e":
		return m, intentCmd(m.session.ClearEvents)

	case "ctrl+t":
		m.showTimeline = !m.showTimeline
		m.layout()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}

		if strings.HasPrefix(text, "/") {
			return m.handleInlineCommand(text)
		}

		// Input is accepted only while connected and idle.
		if !m.state.CanSend() {
			return m, nil
		}

		m.input.Reset()
		m.notice = ""
		return m, intentCmd(func() error { return m.session.SendMessage(text) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleInlineCommand processes inline commands like /help and /clear.
func (m Model) handleInlineCommand(cmd string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	switch strings.ToLower(cmd) {
	case "/help":
		m.notice = helpText
		return m, nil

	case "/clear":
		m.notice = ""
		return m, intentCmd(m.session.ClearChat)

	case "/clear-events":
		return m, intentCmd(m.session.ClearEvents)

	case "/reconnect":
		return m.reconnect()

	case "/exit", "/quit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.lastError = fmt.Errorf("unknown command: %s (try /help)", cmd)
		return m, nil
	}
}

func (m Model) reconnect() (tea.Model, tea.Cmd) {
	if m.state.Demo {
		m.notice = "Demo mode has no gateway connection."
		return m, nil
	}
	m.lastError = nil
	return m, intentCmd(m.session.Reconnect)
}

func (m *Model) updatePlaceholder() {
	switch {
	case !m.state.Connected():
		m.input.Placeholder = "Waiting for the gateway..."
	case m.state.Thinking:
		m.input.Placeholder = "Agent is working..."
	default:
		m.input.Placeholder = "Ask the agent..."
	}
}

const helpText = `## FastReAct Console

**Commands:**
- /help          - Show this help message
- /clear         - Clear the conversation
- /clear-events  - Clear the reasoning timeline
- /reconnect     - Reconnect to the gateway
- /quit          - Exit

**Keyboard shortcuts:**
- Enter          - Send message
- Ctrl+R         - Reconnect
- Ctrl+L         - Clear the conversation
- Ctrl+E         - Clear the timeline
- Ctrl+T         - Toggle the timeline panel
- PgUp/PgDown    - Scroll the timeline
- Ctrl+C, Ctrl+D - Exit`
