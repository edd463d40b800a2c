package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/muurk/truetemp/internal/config"
	"github.com/muurk/truetemp/internal/cookiestore"
	"github.com/muurk/truetemp/internal/logging"
	"github.com/muurk/truetemp/internal/netatmo"
	"github.com/muurk/truetemp/internal/thermostat"
	"github.com/muurk/truetemp/internal/ui"
	"github.com/muurk/truetemp/internal/version"
)

// globalOptions are the persistent root flags
type globalOptions struct {
	logLevel string
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "truetemp",
		Short: "Netatmo thermostat calibration utility",
		Long: `Calibrate Netatmo thermostats with the temperature a room really has.

truetemp signs in with your Netatmo account (NETATMO_USERNAME and
NETATMO_PASSWORD), keeps the session cookies in your config directory and
sends the corrected reading through the Netatmo web API.`,
		Version:       version.Version,
		SilenceErrors: true,
		Example: `  # Show rooms with a thermostat
  truetemp list-rooms

  # Tell the living room thermostat it is really 20.5°C
  truetemp set-truetemperature --room-name "Living room" --temperature 20.5

  # Sign in again from scratch
  truetemp login`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Initialize(opts.logLevel); err != nil {
				return netatmo.NewConfigurationError(err.Error())
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to "+logging.LogLevelEnvVar)
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Dotenv file(s) to load (default: ./.env)")

	cmd.AddCommand(
		newListRoomsCmd(opts),
		newSetTrueTemperatureCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// app is the wiring shared by the network commands
type app struct {
	settings *config.Settings
	registry *config.Registry
	store    *cookiestore.Store
	auth     *netatmo.AuthManager
	client   *netatmo.Client
	service  *thermostat.Service
}

// loadSettings merges the environment with the preference registry
func loadSettings(opts *globalOptions) (*config.Settings, *config.Registry, error) {
	env, err := config.LoadEnv(opts.envFiles...)
	if err != nil {
		return nil, nil, err
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, nil, netatmo.NewConfigurationError(err.Error())
	}

	settings, err := config.Resolve(env, reg)
	if err != nil {
		return nil, nil, err
	}
	return settings, reg, nil
}

// newApp builds the authenticated client stack
func newApp(opts *globalOptions, authOpts ...netatmo.AuthOption) (*app, error) {
	settings, reg, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := settings.RequireCredentials(); err != nil {
		return nil, err
	}

	store := cookiestore.New(settings.CookieFile)

	authOpts = append([]netatmo.AuthOption{
		netatmo.WithAuthURL(settings.AuthURL),
		netatmo.WithAuthHTTPClient(&http.Client{Timeout: settings.Timeout}),
	}, authOpts...)

	auth, err := netatmo.NewAuthManager(settings.Credentials, store, authOpts...)
	if err != nil {
		return nil, err
	}

	client := netatmo.NewClient(auth,
		netatmo.WithBaseURL(settings.APIURL),
		netatmo.WithTimeout(settings.Timeout),
	)

	return &app{
		settings: settings,
		registry: reg,
		store:    store,
		auth:     auth,
		client:   client,
		service:  thermostat.New(client, settings.HomeID),
	}, nil
}

// reportedError marks an error whose failure box was already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// commandError carries the failure title for an error
type commandError struct {
	title string
	err   error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func failed(title string, err error) error {
	return &commandError{title: title, err: err}
}

// reportError prints the failure box for err unless it was already shown
func reportError(w io.Writer, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}

	title := "truetemp failed"
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		title = cmdErr.title
		err = cmdErr.err
	}

	var hints []string
	var nerr *netatmo.Error
	if errors.As(err, &nerr) {
		hints = netatmo.TroubleshootingHint(err)
	} else {
		hints = []string{fmt.Sprintf("Run '%s' for usage", "truetemp --help")}
	}
	ui.NewPrinter(w).PrintError(title, err, hints)
}
