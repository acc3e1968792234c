package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/fastreact/console/internal/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// timelineRatio is the share of the width given to the timeline panel.
	timelineRatio = 0.4
)

// Model is the Bubbletea model for the chat console.
type Model struct {
	session Session

	// UI state
	input    textinput.Model
	spinner  spinner.Model
	timeline viewport.Model

	// Latest session snapshot.
	state session.State

	// Transient notice (help text, errors).
	notice    string
	lastError error

	// Rendering
	renderer     *glamour.TermRenderer
	width        int
	height       int
	showTimeline bool

	quitting bool
}

// NewModel creates a chat model over a started session.
func NewModel(s Session) (Model, error) {
	ti := textinput.New()
	ti.Placeholder = "Ask the agent..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = defaultWidth

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Markdown renderer with NO_COLOR support.
	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(defaultWidth)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		session:      s,
		input:        ti,
		spinner:      sp,
		timeline:     viewport.New(defaultWidth, defaultHeight),
		state:        s.Snapshot(),
		renderer:     renderer,
		width:        defaultWidth,
		height:       defaultHeight,
		showTimeline: true,
	}
	m.layout()
	return m, nil
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForStateCmd(m.session.Updates()),
	)
}

// layout sizes the panels for the current window.
func (m *Model) layout() {
	chatWidth := m.width
	if m.showTimeline {
		chatWidth = int(float64(m.width) * (1 - timelineRatio))
		m.timeline.Width = m.width - chatWidth - 1
	}
	m.input.Width = chatWidth - 4

	// Header, separator, input and hint lines.
	m.timeline.Height = m.height - 5
	if m.timeline.Height < 1 {
		m.timeline.Height = 1
	}
	m.timeline.SetContent(m.renderTimeline())
}
