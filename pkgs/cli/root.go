package cli

import (
	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewRootCommand(app *app.LocoApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "z21ctl",
		Short: "Unofficial command-line client for Roco/Fleischmann z21 command stations",
		RunE: func(command *cobra.Command, args []string) error {
			return command.Help()
		},
	}

	command.PersistentFlags().BoolVarP(&app.Debug, "debug", "v", false, "Increase verbosity to the debug level")

	command.AddCommand(NewPowerCommand(app))
	command.AddCommand(NewDriveCommand(app))
	command.AddCommand(NewFnCommand(app))
	command.AddCommand(NewTurnoutCommand(app))
	command.AddCommand(NewMonitorCommand(app))
	command.AddCommand(NewDiscoverCommand(app))

	return command
}
