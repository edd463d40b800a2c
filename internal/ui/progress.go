package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
)

// Step is one line of a multi-step operation
type Step struct {
	Name    string
	Status  StepStatus
	Message string // Optional note, e.g. "120ms"
}

// Progress is a progress bar over a fixed list of named steps
type Progress struct {
	Steps   []Step
	Width   int
	ShowBar bool
	bar     progress.Model
}

// NewProgress creates a progress display with one pending step per name
func NewProgress(names []string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Name: name}
	}
	p := &Progress{Steps: steps, ShowBar: true}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the rendering width and resizes the bar to fit
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 24
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// Update sets the status of step n (1-based). Out-of-range steps are ignored.
func (p *Progress) Update(n int, status StepStatus, message string) {
	if n < 1 || n > len(p.Steps) {
		return
	}
	p.Steps[n-1].Status = status
	p.Steps[n-1].Message = message
}

// Start marks step n as running
func (p *Progress) Start(n int) {
	p.Update(n, StepRunning, "")
}

// Complete marks step n as complete
func (p *Progress) Complete(n int, message string) {
	p.Update(n, StepComplete, message)
}

// Fail marks step n as failed
func (p *Progress) Fail(n int, message string) {
	p.Update(n, StepFailed, message)
}

// Percent returns the completed fraction (0.0 - 1.0)
func (p *Progress) Percent() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete {
			done++
		}
	}
	return float64(done) / float64(len(p.Steps))
}

// current returns the 1-based index of the furthest started step
func (p *Progress) current() int {
	n := 0
	for i, s := range p.Steps {
		if s.Status != StepPending {
			n = i + 1
		}
	}
	return n
}

// Render returns the bar followed by the step list
func (p *Progress) Render() string {
	var b strings.Builder

	if p.ShowBar {
		pct := p.Percent()
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(
			fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(pct), pct*100, p.current(), len(p.Steps))))
		b.WriteString("\n\n")
	}

	lines := make([]string, len(p.Steps))
	for i := range p.Steps {
		lines[i] = p.RenderStep(i + 1)
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// RenderStep renders the line for step n (1-based)
func (p *Progress) RenderStep(n int) string {
	if n < 1 || n > len(p.Steps) {
		return ""
	}
	step := p.Steps[n-1]

	var (
		marker string
		style  lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, StepFailedStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", n, len(p.Steps))
	b.WriteString(style.Render(step.Name))

	pad := 30 - lipgloss.Width(step.Name)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
