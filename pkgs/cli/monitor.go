package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/keskad/loco/pkgs/app"
	"github.com/spf13/cobra"
)

func NewMonitorCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		Categories []string
	}
	cmdArgs := Args{}

	command := &cobra.Command{
		Use:   "monitor",
		Short: "Subscribe to station events and print them until interrupted",
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return app.MonitorAction(ctx, cmdArgs.Categories)
		},
	}

	command.Flags().StringSliceVarP(&cmdArgs.Categories, "category", "c", nil,
		"Optional event categories to subscribe to beyond basic+system_state (rbus, railcom_subscribed, all_loco_info, ...)")

	return command
}

func NewDiscoverCommand(app *app.LocoApp) *cobra.Command {
	type Args struct {
		WindowSeconds uint16
	}
	cmdArgs := Args{WindowSeconds: 3}

	command := &cobra.Command{
		Use:   "discover",
		Short: "Broadcast a discovery probe and print every station that replies",
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.DiscoverAction(time.Second * time.Duration(cmdArgs.WindowSeconds))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.WindowSeconds, "window", "w", 3, "Time in seconds to wait for replies")
	return command
}
