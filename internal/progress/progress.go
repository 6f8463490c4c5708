// Package progress provides a terminal progress ticker for batch runs.
// It shows a spinning indicator with a completed/total count and the most
// recently finished job, updating in place without polluting the terminal
// buffer.
package progress

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Tracker displays batch progress while the synthesis engine runs.
// Job completions are reported through Observe, which is safe to call
// from multiple workers.
type Tracker struct {
	program *tea.Program
	eventCh chan event
	done    chan struct{}
	closed  sync.Once
	output  *os.File
	total   int
}

// event is one progress update.
type event struct {
	label  string
	failed bool
}

// New creates a Tracker for a batch of total jobs writing to output
// (typically os.Stderr). If output is nil, os.Stderr is used.
func New(total int, output *os.File) *Tracker {
	if output == nil {
		output = os.Stderr
	}
	return &Tracker{
		eventCh: make(chan event, 100), // Buffer so workers never block
		done:    make(chan struct{}),
		output:  output,
		total:   total,
	}
}

// Observe records one finished job. label names the job (for example
// "doc.md x summarize"); failed marks it as a failure in the ticker.
func (t *Tracker) Observe(label string, failed bool) {
	select {
	case t.eventCh <- event{label: label, failed: failed}:
	case <-t.done:
	}
}

// Start runs the progress display. It blocks until Stop is called, so
// call it in a goroutine alongside the batch.
func (t *Tracker) Start() error {
	width := 80
	if fd := int(t.output.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	m := newModel(t.eventCh, t.total, width)

	t.program = tea.NewProgram(m,
		tea.WithOutput(t.output),
		tea.WithoutSignalHandler(), // Let parent handle signals
	)

	_, err := t.program.Run()
	return err
}

// Stop stops the display and clears the progress line.
func (t *Tracker) Stop() {
	t.closed.Do(func() {
		close(t.done)
		close(t.eventCh)
	})
	if t.program != nil {
		t.program.Quit()
	}
}

var failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

// model is the bubbletea model for the ticker.
type model struct {
	spinner  spinner.Model
	eventCh  <-chan event
	total    int
	finished int
	failures int
	lastLine string
	width    int
	quitting bool
}

// eventMsg is sent when a job completion arrives.
type eventMsg event

func newModel(eventCh <-chan event, total, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		eventCh: eventCh,
		total:   total,
		width:   width,
	}
}

// Init implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.eventCh),
	)
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case eventMsg:
		m.finished++
		if msg.failed {
			m.failures++
			m.lastLine = failStyle.Render(msg.label)
		} else {
			m.lastLine = msg.label
		}
		return m, waitForEvent(m.eventCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return "" // Clear the line on exit
	}

	counter := fmt.Sprintf("%d/%d", m.finished, m.total)
	if m.failures > 0 {
		counter += fmt.Sprintf(" (%d failed)", m.failures)
	}

	prefix := m.spinner.View() + " " + counter + " "
	maxLineWidth := m.width - lipgloss.Width(prefix)
	if maxLineWidth < 10 {
		maxLineWidth = 10
	}

	return prefix + truncate(m.lastLine, maxLineWidth)
}

// waitForEvent returns a command that waits for the next job completion.
func waitForEvent(eventCh <-chan event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-eventCh
		if !ok {
			return tea.Quit()
		}
		return eventMsg(ev)
	}
}

// truncate shortens a string to fit within maxWidth.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
