package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/truetemp/internal/cookiestore"
	"github.com/muurk/truetemp/internal/logging"
	"github.com/muurk/truetemp/internal/netatmo"
	"github.com/muurk/truetemp/internal/thermostat"
	"github.com/muurk/truetemp/internal/ui"
	"github.com/muurk/truetemp/internal/version"
)

// interactive reports whether animated output may be drawn on cmd's stdout
func interactive(cmd *cobra.Command) bool {
	return cmd.OutOrStdout() == os.Stdout && ui.IsTerminal()
}

func newSpinner(cmd *cobra.Command, label string) *ui.Spinner {
	return &ui.Spinner{
		Label:       label,
		Output:      cmd.OutOrStdout(),
		Interactive: interactive(cmd),
	}
}

// roomListing is the outcome of list-rooms
type roomListing struct {
	homeID string
	rooms  []thermostat.Room
}

func newListRoomsCmd(opts *globalOptions) *cobra.Command {
	var homeID string

	cmd := &cobra.Command{
		Use:   "list-rooms",
		Short: "List rooms that have a thermostat",
		Long: `List the rooms of a home whose thermostat reports a measured temperature.

The home defaults to NETATMO_HOME_ID, then to the first home of the account.
Room names are remembered in the config file.`,
		Example: `  truetemp list-rooms
  truetemp list-rooms --home-id 5e1f0c2d3a4b5c6d7e8f9a0b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			a, err := newApp(opts)
			if err != nil {
				return failed("Listing rooms failed", err)
			}

			listing, err := ui.Spin(cmd.Context(), newSpinner(cmd, "Fetching thermostat rooms"),
				func(ctx context.Context) (roomListing, error) {
					id := homeID
					if id == "" {
						var err error
						if id, err = a.service.Homes().DefaultHomeID(ctx); err != nil {
							return roomListing{}, err
						}
					}
					rooms, err := a.service.ListThermostatRooms(ctx, id)
					return roomListing{homeID: id, rooms: rooms}, err
				})
			if err != nil {
				return failed("Listing rooms failed", err)
			}

			names := make(map[string]string, len(listing.rooms))
			rows := make([]ui.RoomRow, 0, len(listing.rooms))
			for _, room := range listing.rooms {
				names[room.ID] = room.Name
				temp := room.MeasuredTemperature
				rows = append(rows, ui.RoomRow{ID: room.ID, Name: room.Name, Temperature: &temp})
			}
			sort.SliceStable(rows, func(i, j int) bool {
				return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
			})

			a.registry.RecordHome(listing.homeID, "", names)
			if err := a.registry.Save(); err != nil {
				logging.Warn("Failed to save config", zap.Error(err))
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.Println("Home " + listing.homeID)
			p.PrintRooms(rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&homeID, "home-id", "", "Home ID (default: NETATMO_HOME_ID or the first home)")
	return cmd
}

func newSetTrueTemperatureCmd(opts *globalOptions) *cobra.Command {
	var (
		temperature float64
		roomID      string
		roomName    string
		homeID      string
	)

	cmd := &cobra.Command{
		Use:   "set-truetemperature",
		Short: "Calibrate a room thermostat with the real temperature",
		Long: `Tell a thermostat the temperature the room really has.

Netatmo offsets the thermostat reading so that it matches the corrected value.
Nothing is sent when the room already reads within 0.1°C of it.`,
		Example: `  truetemp set-truetemperature --room-name "Living room" --temperature 20.5
  truetemp set-truetemperature --room-id 2255031728 --temperature 19`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			const title = "Calibration failed"

			if err := thermostat.ValidateTemperature(temperature, "temperature"); err != nil {
				return failed(title, err)
			}

			a, err := newApp(opts)
			if err != nil {
				return failed(title, err)
			}

			var room thermostat.Room
			result, err := ui.Spin(cmd.Context(), newSpinner(cmd, "Calibrating thermostat"),
				func(ctx context.Context) (*thermostat.Result, error) {
					resolved, err := a.service.ResolveRoom(ctx, roomID, roomName, homeID)
					if err != nil {
						return nil, err
					}
					room = resolved
					return a.service.SetRoomTemperature(ctx, room.ID, temperature, homeID)
				})
			if err != nil {
				return failed(title, err)
			}

			name := room.Name
			if name == room.ID {
				home := homeID
				if home == "" {
					home = a.settings.HomeID
				}
				if known := a.registry.RoomName(home, room.ID); known != "" {
					name = known
				}
			}

			details := []ui.Detail{
				{Key: "Room", Value: fmt.Sprintf("%s (%s)", name, room.ID)},
				{Key: "Temperature", Value: fmt.Sprintf("%.1f°C", temperature)},
				{Key: "Status", Value: result.Status},
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if result.Skipped {
				p.PrintWarning("Already calibrated, nothing sent", details...)
				return nil
			}
			p.PrintSuccess("Temperature calibrated", details...)
			return nil
		},
	}

	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Real room temperature in °C")
	cmd.Flags().StringVar(&roomID, "room-id", "", "Room ID")
	cmd.Flags().StringVar(&roomName, "room-name", "", "Room name (case-insensitive)")
	cmd.Flags().StringVar(&homeID, "home-id", "", "Home ID (default: NETATMO_HOME_ID or the first home)")
	_ = cmd.MarkFlagRequired("temperature")
	cmd.MarkFlagsOneRequired("room-id", "room-name")
	cmd.MarkFlagsMutuallyExclusive("room-id", "room-name")
	return cmd
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to Netatmo and cache the session",
		Long: `Run the Netatmo web login from scratch and store the session cookies.

Other commands sign in on demand; use login to check credentials or to
replace a session Netatmo no longer accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var onStep ui.StepFunc
			a, err := newApp(opts, netatmo.WithStageObserver(func(stage netatmo.HandshakeStage, done bool, err error) {
				if onStep != nil {
					onStep(int(stage), done, err)
				}
			}))
			if err != nil {
				return failed("Login failed", err)
			}

			steps := make([]string, len(netatmo.HandshakeStages))
			for i, stage := range netatmo.HandshakeStages {
				steps[i] = stage.Label()
			}

			runner := ui.NewRunner(ui.RunnerConfig{
				Title:       "Netatmo login",
				Command:     "truetemp login",
				Params:      []ui.Detail{{Key: "Account", Value: a.settings.Credentials.Username}},
				Steps:       steps,
				Hints:       netatmo.TroubleshootingHint,
				Output:      cmd.OutOrStdout(),
				Interactive: interactive(cmd),
			})

			err = runner.Run(cmd.Context(), func(ctx context.Context, step ui.StepFunc) ([]ui.Detail, error) {
				onStep = step
				if _, err := a.auth.Login(ctx); err != nil {
					return nil, err
				}
				return []ui.Detail{{Key: "Cookie file", Value: a.store.Path()}}, nil
			})
			if err != nil {
				return &reportedError{err: err}
			}
			return nil
		},
	}
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached Netatmo session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			settings, _, err := loadSettings(opts)
			if err != nil {
				return failed("Logout failed", err)
			}

			store := cookiestore.New(settings.CookieFile)
			if err := store.Clear(); err != nil {
				return failed("Logout failed", err)
			}

			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Logged out",
				ui.Detail{Key: "Cookie file", Value: store.Path()})
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "truetemp %s (commit: %s, %s, %s)\n",
				info.Version, info.Commit, info.GoVersion, info.Platform)
		},
	}
}
