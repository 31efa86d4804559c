package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Good    lipgloss.Color // Success color
	Bad     lipgloss.Color // Failure color
	Warn    lipgloss.Color // Cancellation color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Good:    lipgloss.Color("#3fb950"),
	Bad:     lipgloss.Color("#f85149"),
	Warn:    lipgloss.Color("#d29922"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Label lipgloss.Style
	Dim   lipgloss.Style

	state map[remotejob.State]lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Dim:   lipgloss.NewStyle().Foreground(t.Dim),
		state: map[remotejob.State]lipgloss.Style{
			remotejob.StatePending:   lipgloss.NewStyle().Foreground(t.Dim),
			remotejob.StateRunning:   lipgloss.NewStyle().Foreground(t.Primary),
			remotejob.StateSucceeded: lipgloss.NewStyle().Bold(true).Foreground(t.Good),
			remotejob.StateFailed:    lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
			remotejob.StateCanceled:  lipgloss.NewStyle().Foreground(t.Warn),
		},
	}
}

// State renders a job state in its color.
func (s Styles) State(st remotejob.State) string {
	if style, ok := s.state[st]; ok {
		return style.Render(string(st))
	}
	return string(st)
}

// Progress renders a single self-updating terminal line for a polled
// job: label, colored state, elapsed time.
type Progress struct {
	w       io.Writer
	styles  Styles
	label   string
	started time.Time
	dirty   bool
}

// NewProgress creates a progress line writing to stderr. The label
// names the provider and operation, e.g. "kling t2v".
func NewProgress(label string) *Progress {
	return &Progress{
		w:       os.Stderr,
		styles:  NewStyles(DefaultTheme),
		label:   label,
		started: time.Now(),
	}
}

// Update redraws the line with the current state.
func (p *Progress) Update(state remotejob.State) {
	elapsed := time.Since(p.started)
	fmt.Fprintf(p.w, "\r\x1b[2K%s %s %s",
		p.styles.Label.Render(p.label),
		p.styles.State(state),
		p.styles.Dim.Render(FormatDuration(elapsed)))
	p.dirty = true
}

// Transition returns a callback for remotejob.WithTransition that
// drives this progress line.
func (p *Progress) Transition() remotejob.TransitionFunc {
	return func(_ *remotejob.Job, _, to remotejob.State) {
		p.Update(to)
	}
}

// Finish terminates the progress line with a newline. Safe to call
// when nothing was drawn.
func (p *Progress) Finish() {
	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
}
