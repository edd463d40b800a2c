// Package ui renders the truetemp command output.
//
// Components are built on Lipgloss, Bubbles and Bubble Tea and follow a
// "run once and exit" pattern: nothing waits for user input.
//
//   - Header: command banner with the operation name and parameters
//   - Progress: progress bar with a step list
//   - Result: success, warning and failure boxes
//   - RoomsTable: go-pretty table of thermostat rooms
//   - Spinner: animated label around a single API call
//
// Runner ties Header, Progress and Result together for multi-step commands
// such as login:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:       "Netatmo login",
//	    Command:     "truetemp login",
//	    Steps:       []string{"Open session", "Fetch CSRF token", "Sign in", "Finalize"},
//	    Interactive: ui.IsTerminal(),
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepFunc) ([]ui.Detail, error) {
//	    onStep(1, false, nil)
//	    // ... do work ...
//	    onStep(1, true, nil)
//	    return nil, nil
//	})
//
// Animation is only used on a terminal. Otherwise each finished step is
// printed on its own line, which keeps piped output readable.
//
// Logging is controlled separately via TRUETEMP_LOG_LEVEL; when unset zap
// stays silent so the rendered output is not interleaved with log lines.
package ui
