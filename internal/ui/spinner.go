package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Spinner shows an animated label while a call is in flight
type Spinner struct {
	Label       string
	Output      io.Writer
	Interactive bool
}

// NewSpinner creates a spinner on stdout, animated only on a terminal
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:       label,
		Output:      os.Stdout,
		Interactive: IsTerminal(),
	}
}

// Run runs fn under the spinner
func (s *Spinner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Spin(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Spin runs fn under the spinner and returns its result. Without a terminal
// fn simply runs; the label is not printed.
func Spin[T any](ctx context.Context, s *Spinner, fn func(ctx context.Context) (T, error)) (T, error) {
	if !s.Interactive {
		return fn(ctx)
	}

	out := s.Output
	if out == nil {
		out = os.Stdout
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))
	prog := tea.NewProgram(spinnerModel{spinner: sp, label: s.Label, cancel: cancel}, tea.WithOutput(out))

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
		prog.Send(spinnerDoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		res := <-done
		if res.err != nil {
			return res.value, res.err
		}
		return res.value, fmt.Errorf("display failed: %w", err)
	}

	res := <-done
	return res.value, res.err
}

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	cancel  context.CancelFunc
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spinner.View() + " " + SpinnerLabelStyle.Render(m.label) + "\n"
}
