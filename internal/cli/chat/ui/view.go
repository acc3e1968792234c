package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
	"github.com/fastreact/console/internal/session"
)

// maxMessages bounds how much of the transcript is rendered.
const maxMessages = 20

var (
	// Styles.
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 1)

	demoBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	sessionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	statusColors = map[string]lipgloss.Color{
		"Connected":     lipgloss.Color("42"),
		"Thinking...":   lipgloss.Color("220"),
		"Connecting...": lipgloss.Color("220"),
	}

	eventColors = map[protocol.EventType]lipgloss.Color{
		protocol.EventThought:     lipgloss.Color("141"),
		protocol.EventAction:      lipgloss.Color("39"),
		protocol.EventObservation: lipgloss.Color("214"),
		protocol.EventAnswer:      lipgloss.Color("42"),
		protocol.EventFinal:       lipgloss.Color("42"),
		protocol.EventError:       lipgloss.Color("9"),
	}
)

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteString("\n")

	chat := m.renderChat()
	if m.showTimeline {
		chatWidth := m.width - m.timeline.Width - 1
		left := lipgloss.NewStyle().Width(chatWidth).Render(chat)
		right := panelStyle.Render(m.timeline.View())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(chat)
	}

	return b.String()
}

// renderHeader renders the title, demo badge, session id and status.
func (m Model) renderHeader() string {
	status := StatusText(m.state)
	color, ok := statusColors[status]
	if !ok {
		color = lipgloss.Color("9")
	}
	statusStyle := lipgloss.NewStyle().Foreground(color)

	parts := []string{titleStyle.Render("FastReAct")}
	if m.state.Demo {
		parts = append(parts, demoBadgeStyle.Render("Demo Mode"))
	}
	parts = append(parts,
		sessionStyle.Render(m.state.ID),
		statusStyle.Render("● "+status),
	)
	return strings.Join(parts, "  ")
}

// renderChat renders the transcript, state line and input.
func (m Model) renderChat() string {
	var b strings.Builder

	b.WriteString(m.renderConversation())

	if m.notice != "" {
		b.WriteString(m.renderMarkdown(m.notice))
		b.WriteString("\n")
	}

	if m.state.Thinking {
		b.WriteString(fmt.Sprintf("%s Thinking...\n", m.spinner.View()))
	} else if !m.state.Demo && m.state.Phase == connection.PhaseConnecting {
		b.WriteString(fmt.Sprintf("%s Connecting...\n", m.spinner.View()))
	}

	if m.lastError != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Error: %v", m.lastError)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())

	hint := "[Enter to send, /help for commands, Ctrl+C to quit]"
	if !m.state.Connected() {
		hint = "[Ctrl+R to reconnect, Ctrl+C to quit]"
	}
	b.WriteString(hintStyle.Render("\n" + hint))

	return b.String()
}

// renderConversation renders the most recent transcript messages.
func (m Model) renderConversation() string {
	if len(m.state.Messages) == 0 {
		return hintStyle.Render("Start a conversation with the agent.") + "\n\n"
	}

	var b strings.Builder
	startIdx := max(len(m.state.Messages)-maxMessages, 0)

	for _, msg := range m.state.Messages[startIdx:] {
		marker := StatusMarker(msg.Status)
		stamp := msg.Timestamp.Format("15:04:05")

		switch msg.Role {
		case session.RoleUser:
			b.WriteString(promptStyle.Render("> "))
			b.WriteString(msg.Content)
			b.WriteString(hintStyle.Render(fmt.Sprintf("  %s %s", stamp, marker)))
			b.WriteString("\n\n")

		case session.RoleAssistant:
			if msg.Status == session.StatusError {
				b.WriteString(errorStyle.Render(msg.Content))
				b.WriteString("\n")
			} else {
				b.WriteString(m.renderMarkdown(msg.Content))
			}
			b.WriteString(hintStyle.Render(stamp))
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// renderTimeline renders the reasoning events for the timeline panel.
func (m Model) renderTimeline() string {
	if len(m.state.Events) == 0 {
		return hintStyle.Render("No reasoning events yet.")
	}

	var b strings.Builder
	for _, evt := range m.state.Events {
		b.WriteString(renderEvent(evt))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEvent(evt event.AgentEvent) string {
	labelStyle := lipgloss.NewStyle().Foreground(eventColors[evt.Type]).Bold(true)

	head := []string{labelStyle.Render(Label(evt.Type))}
	if evt.Metadata.ToolName != "" {
		head = append(head, evt.Metadata.ToolName)
	}
	if evt.Metadata.Iteration != nil {
		head = append(head, fmt.Sprintf("iter %d", *evt.Metadata.Iteration))
	}
	if d := FormatDuration(evt.Metadata.DurationValue()); d != "" {
		head = append(head, d)
	}
	head = append(head, hintStyle.Render(evt.Metadata.Timestamp.Format("15:04:05")))

	var b strings.Builder
	b.WriteString(strings.Join(head, " · "))
	b.WriteString("\n")
	if params := FormatParameters(evt.Metadata.Parameters); params != "" {
		b.WriteString(hintStyle.Render("  " + params))
		b.WriteString("\n")
	}
	if extra := FormatExtra(evt); extra != "" {
		b.WriteString(hintStyle.Render("  " + extra))
		b.WriteString("\n")
	}
	b.WriteString(evt.Content)
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
