package cli

import (
	"time"

	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewPowerCommand(app *app.LocoApp) *cobra.Command {
	type Args struct{ Timeout uint16 }
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "power [on|off|status]",
		Short: "Control or query the track power output",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			timeout := time.Second * time.Duration(cmdArgs.Timeout)
			switch args[0] {
			case "on":
				return app.SetPowerAction(true, timeout)
			case "off":
				return app.SetPowerAction(false, timeout)
			case "status":
				return app.GetSystemStateAction(timeout)
			default:
				return command.Help()
			}
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.AddCommand(NewEstopCommand(app))
	return command
}

func NewEstopCommand(app *app.LocoApp) *cobra.Command {
	type Args struct{ Timeout uint16 }
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "estop",
		Short: "Emergency-stop every locomotive on the layout",
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.EmergencyStopAction(time.Second * time.Duration(cmdArgs.Timeout))
		},
	}
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	return command
}
