package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastreact/console/internal/session"
)

// Session is the part of *session.Session the UI drives.
type Session interface {
	Snapshot() session.State
	Updates() <-chan session.State
	SendMessage(text string) error
	ClearChat() error
	ClearEvents() error
	Reconnect() error
}

// waitForStateCmd blocks until the session publishes a new snapshot.
// Update re-arms it after every stateMsg.
func waitForStateCmd(updates <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return stateMsg{state: st}
	}
}

// intentCmd runs a session intent off the UI goroutine.
func intentCmd(intent func() error) tea.Cmd {
	return func() tea.Msg {
		if err := intent(); err != nil {
			return errorMsg{err: err}
		}
		return nil
	}
}
