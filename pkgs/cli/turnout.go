package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewTurnoutCommand(app *app.LocoApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "turnout",
		Short: "Get or set the position of a turnout/accessory decoder",
		RunE: func(command *cobra.Command, args []string) error {
			return command.Help()
		},
	}
	command.AddCommand(NewTurnoutSetCommand(app))
	command.AddCommand(NewTurnoutGetCommand(app))
	return command
}

func NewTurnoutSetCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		Addr    uint16
		Timeout uint16
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "set POSITION",
		Short: "Drive a turnout to POSITION (0 or 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			pos64, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil || pos64 > 1 {
				return fmt.Errorf("position must be 0 or 1, got %q", args[0])
			}
			return app.SetTurnoutAction(cmdArgs.Addr, uint8(pos64), time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.Addr, "addr", "a", 0, "Turnout address (required)")
	_ = command.MarkFlagRequired("addr")

	return command
}

func NewTurnoutGetCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		Addr    uint16
		Timeout uint16
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "get",
		Short: "Get the current position of a turnout",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.GetTurnoutAction(cmdArgs.Addr, time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.Addr, "addr", "a", 0, "Turnout address (required)")
	_ = command.MarkFlagRequired("addr")

	return command
}
