package ui

import "github.com/fastreact/console/internal/session"

// stateMsg carries a new session snapshot.
type stateMsg struct {
	state session.State
}

// sessionClosedMsg indicates the session's update stream ended.
type sessionClosedMsg struct{}

// errorMsg represents an error returned by a session intent.
type errorMsg struct {
	err error
}
