package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fastreact/console/internal/cli/chat/ui"
	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var eventColors = map[protocol.EventType]*color.Color{
	protocol.EventThought:     color.New(color.FgCyan),
	protocol.EventAction:      color.New(color.FgYellow),
	protocol.EventObservation: color.New(color.FgBlue),
	protocol.EventAnswer:      color.New(color.FgGreen, color.Bold),
	protocol.EventFinal:       color.New(color.FgGreen, color.Bold),
	protocol.EventError:       color.New(color.FgRed, color.Bold),
}

// Printer writes agent events and connection status lines.
type Printer struct {
	out    io.Writer
	status io.Writer
	format string
	enc    *json.Encoder
}

// NewPrinter creates a printer. Events go to out, status lines to status.
func NewPrinter(out, status io.Writer, format string) *Printer {
	p := &Printer{out: out, status: status, format: format}
	if format == FormatJSON {
		p.enc = json.NewEncoder(out)
	}
	return p
}

// Event prints one agent event.
func (p *Printer) Event(evt event.AgentEvent) error {
	if p.format == FormatJSON {
		return p.enc.Encode(evt)
	}

	label := fmt.Sprintf("%-11s", ui.Label(evt.Type))
	if c, ok := eventColors[evt.Type]; ok {
		label = c.Sprint(label)
	}

	var details []string
	if evt.Metadata.ToolName != "" {
		details = append(details, evt.Metadata.ToolName)
	}
	if evt.Metadata.Iteration != nil {
		details = append(details, fmt.Sprintf("iter %d", *evt.Metadata.Iteration))
	}
	if d := ui.FormatDuration(evt.Metadata.DurationValue()); d != "" {
		details = append(details, d)
	}
	if params := ui.FormatParameters(evt.Metadata.Parameters); params != "" {
		details = append(details, params)
	}
	if extra := ui.FormatExtra(evt); extra != "" {
		details = append(details, extra)
	}

	line := fmt.Sprintf("[%s] %s %s", evt.Metadata.Timestamp.Format("15:04:05"), label, evt.Content)
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// Status prints a connection status line. JSON output stays event-only.
func (p *Printer) Status(text string) {
	if p.status == nil {
		return
	}
	_, _ = fmt.Fprintf(p.status, "-- %s\n", text)
}
