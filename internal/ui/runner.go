package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StepFunc reports that step n (1-based) started (done=false) or ended
// (done=true, err set on failure)
type StepFunc func(n int, done bool, err error)

// Operation is the work a Runner displays. The returned details are shown in
// the success box.
type Operation func(ctx context.Context, onStep StepFunc) ([]Detail, error)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title   string
	Command string
	Params  []Detail
	Steps   []string

	// Hints produces troubleshooting tips for a failure
	Hints func(error) []string

	// Output defaults to os.Stdout
	Output io.Writer

	// Interactive animates the steps in place; otherwise one line is
	// printed per finished step
	Interactive bool
}

// Runner drives the header -> progress -> result flow of a command
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	out      io.Writer
	width    int

	mu      sync.Mutex
	started map[int]time.Time
}

// NewRunner creates a Runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		progress: NewProgress(config.Steps).SetWidth(width),
		out:      config.Output,
		width:    width,
		started:  make(map[int]time.Time),
	}
}

// Progress returns the step display
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run prints the header, runs op while tracking its steps and prints the result
func (r *Runner) Run(ctx context.Context, op Operation) error {
	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)

	start := time.Now()

	var (
		details []Detail
		err     error
	)
	if r.config.Interactive {
		details, err = r.runInteractive(ctx, op)
	} else {
		details, err = op(ctx, r.printStep)
	}

	_, _ = fmt.Fprintln(r.out)
	if err != nil {
		var hints []string
		if r.config.Hints != nil {
			hints = r.config.Hints(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, hints).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.out, result.Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	result.AddDetail("Duration", time.Since(start).Round(time.Millisecond).String())
	_, _ = fmt.Fprintln(r.out, result.Render())
	return nil
}

// apply records a step transition
func (r *Runner) apply(n int, done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !done {
		r.started[n] = time.Now()
		r.progress.Start(n)
		return
	}

	note := ""
	if t, ok := r.started[n]; ok {
		note = time.Since(t).Round(time.Millisecond).String()
	}
	if err != nil {
		r.progress.Fail(n, note)
		return
	}
	r.progress.Complete(n, note)
}

// printStep is the non-interactive StepFunc
func (r *Runner) printStep(n int, done bool, err error) {
	r.apply(n, done, err)
	if done {
		r.mu.Lock()
		line := r.progress.RenderStep(n)
		r.mu.Unlock()
		_, _ = fmt.Fprintln(r.out, line)
	}
}

type stepMsg struct {
	n    int
	done bool
	err  error
}

type finishedMsg struct{}

type runnerModel struct {
	runner *Runner
	cancel context.CancelFunc
}

func (m runnerModel) Init() tea.Cmd {
	return nil
}

func (m runnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.runner.apply(msg.n, msg.done, msg.err)
	case finishedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
		}
	}
	return m, nil
}

func (m runnerModel) View() string {
	m.runner.mu.Lock()
	defer m.runner.mu.Unlock()
	return m.runner.progress.Render() + "\n"
}

// runInteractive runs op in the background while a Bubble Tea program
// redraws the progress on every step message
func (r *Runner) runInteractive(ctx context.Context, op Operation) ([]Detail, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(runnerModel{runner: r, cancel: cancel}, tea.WithOutput(r.out))

	type outcome struct {
		details []Detail
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		details, err := op(ctx, func(n int, finished bool, err error) {
			prog.Send(stepMsg{n: n, done: finished, err: err})
		})
		done <- outcome{details, err}
		prog.Send(finishedMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("display failed: %w", err)
	}

	res := <-done
	return res.details, res.err
}
