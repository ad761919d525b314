package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewDriveCommand(app *app.LocoApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "drive",
		Short: "Get or set the speed, direction and mode of a locomotive",
		RunE: func(command *cobra.Command, args []string) error {
			return command.Help()
		},
	}

	command.AddCommand(NewDriveSetCommand(app))
	command.AddCommand(NewDriveGetCommand(app))
	command.AddCommand(NewDriveModeCommand(app))
	return command
}

func NewDriveSetCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		LocoAddr   uint16
		Forward    bool
		SpeedSteps uint8
		Timeout    uint16
	}
	cmdArgs := Args{SpeedSteps: 128}

	command := &cobra.Command{
		Use:   "set SPEED",
		Short: "Set the speed and direction of a locomotive",
		Long: `Set the speed and direction of a locomotive.

SPEED is a value from 0 to the maximum for your speed steps:
  - For 14 speed steps: 0-14 (0=stop, 1=emergency stop)
  - For 28 speed steps: 0-28 (0=stop, 1=emergency stop)
  - For 128 speed steps: 0-126 (0=stop, 1=emergency stop)`,
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			speed64, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid speed value %q: %w", args[0], err)
			}

			var maxSpeed uint64
			switch cmdArgs.SpeedSteps {
			case 14:
				maxSpeed = 14
			case 28:
				maxSpeed = 28
			case 128:
				maxSpeed = 126
			default:
				return fmt.Errorf("invalid speed steps %d (must be 14, 28, or 128)", cmdArgs.SpeedSteps)
			}
			if speed64 > maxSpeed {
				return fmt.Errorf("speed %d exceeds maximum %d for %d speed steps", speed64, maxSpeed, cmdArgs.SpeedSteps)
			}

			return app.SetSpeedAction(cmdArgs.LocoAddr, uint8(speed64), cmdArgs.Forward, int(cmdArgs.SpeedSteps), time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.LocoAddr, "loco", "l", 0, "Locomotive address (required)")
	command.Flags().BoolVarP(&cmdArgs.Forward, "forward", "f", false, "Set direction to forward (default is reverse)")
	command.Flags().Uint8VarP(&cmdArgs.SpeedSteps, "steps", "s", 128, "Speed steps: 14, 28, or 128")
	_ = command.MarkFlagRequired("loco")

	return command
}

func NewDriveGetCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		LocoAddr uint16
		Timeout  uint16
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "get",
		Short: "Get the current speed, direction and busy state of a locomotive",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.GetSpeedAction(cmdArgs.LocoAddr, time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.LocoAddr, "loco", "l", 0, "Locomotive address (required)")
	_ = command.MarkFlagRequired("loco")

	return command
}

func NewDriveModeCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		LocoAddr uint16
		MM       bool
		Timeout  uint16
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "mode",
		Short: "Assign the track protocol (DCC or Maerklin Motorola) a locomotive is driven under",
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.SetModeAction(cmdArgs.LocoAddr, cmdArgs.MM, time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.LocoAddr, "loco", "l", 0, "Locomotive address (required)")
	command.Flags().BoolVarP(&cmdArgs.MM, "mm", "", false, "Use Maerklin Motorola instead of DCC")
	_ = command.MarkFlagRequired("loco")

	return command
}
