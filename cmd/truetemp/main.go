// Truetemp calibrates Netatmo thermostats from the command line.
//
// It signs in through the Netatmo web login flow, caches the session cookies
// between runs and tells a thermostat what the room temperature really is,
// so that its heating schedule works from a corrected reading.
//
// Usage:
//
//	truetemp [command] [flags]
//
// Credentials are read from NETATMO_USERNAME and NETATMO_PASSWORD, either in
// the environment or in a .env file.
// See 'truetemp --help' for available commands.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}
