package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/protocol"
)

// Reducer applies actions to a State. It is not safe for concurrent use;
// Session confines it to one goroutine.
type Reducer struct {
	state State
	// pending maps in-flight user message ids to their transcript index.
	pending map[string]int
	now     func() time.Time
	seq     uint64
}

// NewReducer creates a reducer for an empty session. Demo sessions report
// the connected phase for their whole lifetime.
func NewReducer(id string, demo bool, now func() time.Time) *Reducer {
	if now == nil {
		now = time.Now
	}
	phase := connection.PhaseDisconnected
	if demo {
		phase = connection.PhaseConnected
	}
	return &Reducer{
		state: State{
			ID:    id,
			Phase: phase,
			Demo:  demo,
		},
		pending: make(map[string]int),
		now:     now,
	}
}

// State returns a copy of the current state.
func (r *Reducer) State() State {
	return r.state.Clone()
}

// Pending returns how many user messages await a terminal event.
func (r *Reducer) Pending() int {
	return len(r.pending)
}

// Apply mutates the state and returns the effects to perform.
func (r *Reducer) Apply(action Action) []Effect {
	switch a := action.(type) {
	case UserSend:
		return r.userSend(a.Text)

	case EventArrived:
		r.state.Events = append(r.state.Events, a.Event)
		switch {
		case a.Event.Type.IsWorking():
			r.state.Thinking = true
		case a.Event.Type.IsTerminal():
			r.state.Thinking = false
			r.resolvePending(StatusSent)
			status := StatusSent
			if a.Event.Type == protocol.EventError {
				status = StatusError
			}
			r.appendMessage(RoleAssistant, a.Event.Content, status)
		}

	case ConnectionLost:
		r.state.Thinking = false
		r.resolvePending(StatusError)

	case ConnectionRestored:
		r.state.Thinking = false

	case ClearChat:
		r.state.Messages = nil
		clear(r.pending)

	case ClearEvents:
		r.state.Events = nil

	case PhaseChanged:
		if !r.state.Demo {
			r.state.Phase = a.Phase
		}
		r.state.Attempt = a.Attempt
		r.state.RetryIn = a.RetryIn
	}
	return nil
}

func (r *Reducer) userSend(text string) []Effect {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if r.state.Demo {
		r.appendMessage(RoleUser, text, StatusSent)
		r.state.Thinking = true
		return []Effect{DemoEffect{Text: text}}
	}

	if r.state.Phase != connection.PhaseConnected {
		return nil
	}

	id := r.appendMessage(RoleUser, text, StatusSending)
	r.pending[id] = len(r.state.Messages) - 1
	r.state.Thinking = true
	return []Effect{SendEffect{MessageID: id, Content: text}}
}

func (r *Reducer) appendMessage(role Role, content string, status Status) string {
	r.seq++
	now := r.now()
	msg := Message{
		ID:        fmt.Sprintf("msg-%d-%d", now.UnixNano(), r.seq),
		Role:      role,
		Content:   content,
		Timestamp: now,
		Status:    status,
	}
	r.state.Messages = append(r.state.Messages, msg)
	return msg.ID
}

// resolvePending moves every in-flight message to status. The gateway does
// not correlate answers to messages, so a terminal event settles them all.
func (r *Reducer) resolvePending(status Status) {
	for id, idx := range r.pending {
		r.state.Messages[idx].Status = status
		delete(r.pending, id)
	}
}
