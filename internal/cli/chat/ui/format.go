package ui

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/fastreact/console/internal/connection"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
	"github.com/fastreact/console/internal/session"
)

// Label returns the display label for an event type.
func Label(t protocol.EventType) string {
	switch t {
	case protocol.EventThought:
		return "Thinking"
	case protocol.EventAction:
		return "Action"
	case protocol.EventObservation:
		return "Observation"
	case protocol.EventAnswer:
		return "Answer"
	case protocol.EventFinal:
		return "Final"
	case protocol.EventError:
		return "Error"
	default:
		return string(t)
	}
}

// FormatDuration renders a duration in seconds: milliseconds below one
// second, two decimals above. Zero renders as "".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	if seconds < 1 {
		return fmt.Sprintf("%.0fms", seconds*1000)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatParameters renders tool parameters as sorted key=value pairs.
func FormatParameters(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return strings.Join(parts, " ")
}

// FormatExtra renders metadata the console does not interpret, plus any
// run stats, in the same key=value form as parameters.
func FormatExtra(evt event.AgentEvent) string {
	extra := maps.Clone(evt.Metadata.Extra)
	if evt.Stats != nil {
		if extra == nil {
			extra = make(map[string]any, 1)
		}
		extra["stats"] = evt.Stats
	}
	return FormatParameters(extra)
}

// StatusText returns the header status for a session snapshot.
func StatusText(st session.State) string {
	switch {
	case !st.Demo && st.Phase == connection.PhaseConnecting:
		return "Connecting..."
	case st.Thinking:
		return "Thinking..."
	case st.Connected():
		return "Connected"
	case st.RetryIn > 0:
		return fmt.Sprintf("Disconnected (retry %d in %s)", st.Attempt, st.RetryIn.Round(time.Millisecond))
	default:
		return "Disconnected"
	}
}

// StatusMarker returns the transcript marker for a delivery status.
func StatusMarker(s session.Status) string {
	switch s {
	case session.StatusSending:
		return "…"
	case session.StatusSent:
		return "✓"
	case session.StatusError:
		return "✗"
	default:
		return ""
	}
}
