package session

import (
	"time"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
)

// Action is an input to the Reducer.
type Action interface {
	isAction()
}

// UserSend submits user text.
type UserSend struct {
	Text string
}

// EventArrived delivers a normalized agent event.
type EventArrived struct {
	Event event.AgentEvent
}

// ConnectionLost reports a transition out of the connected phase.
type ConnectionLost struct{}

// ConnectionRestored reports a transition into the connected phase.
type ConnectionRestored struct{}

// ClearChat empties the transcript.
type ClearChat struct{}

// ClearEvents empties the timeline.
type ClearEvents struct{}

// PhaseChanged records the connection phase and retry schedule for display.
type PhaseChanged struct {
	Phase   connection.Phase
	Attempt int
	RetryIn time.Duration
}

func (UserSend) isAction()           {}
func (EventArrived) isAction()       {}
func (ConnectionLost) isAction()     {}
func (ConnectionRestored) isAction() {}
func (ClearChat) isAction()          {}
func (ClearEvents) isAction()        {}
func (PhaseChanged) isAction()       {}

// Effect is work the Reducer asks its owner to perform.
type Effect interface {
	isEffect()
}

// SendEffect transmits a user message to the gateway.
type SendEffect struct {
	MessageID string
	Content   string
}

// DemoEffect starts a scripted demo run for a user message.
type DemoEffect struct {
	Text string
}

func (SendEffect) isEffect() {}
func (DemoEffect) isEffect() {}
