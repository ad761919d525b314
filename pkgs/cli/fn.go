package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewFnCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		LocoAddr uint16
		Timeout  uint16
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "fn FNNUM",
		Short: "Toggle a function on a locomotive",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			fnNum64, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid function number %q: %w", args[0], err)
			}
			return app.SetFunctionAction(cmdArgs.LocoAddr, uint8(fnNum64), time.Second*time.Duration(cmdArgs.Timeout))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.LocoAddr, "loco", "l", 0, "Locomotive address (required)")
	_ = command.MarkFlagRequired("loco")

	return command
}
