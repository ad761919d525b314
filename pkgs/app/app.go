package app

import (
	"context"
	"fmt"
	"time"

	"github.com/keskad/loco/pkgs/config"
	"github.com/keskad/loco/pkgs/output"
	"github.com/keskad/loco/pkgs/z21"
	"github.com/sirupsen/logrus"
)

// LocoApp wires configuration, output, and a z21 session together for the
// CLI layer, mirroring the teacher's LocoApp/Station split.
type LocoApp struct {
	Config *config.Configuration
	client *z21.Client
	P      output.Printer

	Debug bool
}

// Initialize reads configuration and prepares logging. Must run before any
// action that talks to a station.
func (app *LocoApp) Initialize() error {
	if app.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if app.P == nil {
		app.P = output.ConsolePrinter{}
	}

	logrus.Debug("Reading configuration files")
	cfg, cfgErr := config.NewConfig()
	app.Config = cfg
	if cfgErr != nil {
		return fmt.Errorf("cannot initialize app: %s", cfgErr)
	}
	return nil
}

// connect dials and performs the handshake against the configured station.
func (app *LocoApp) connect(ctx context.Context) error {
	logrus.WithField("address", app.Config.Server.Address).Debug("Connecting to command station")
	app.client = z21.NewClient(app.Config.Server.Address, app.Config.Server.Port)
	return app.client.Connect(ctx)
}

// withClient connects, runs fn, and always disconnects afterwards.
func (app *LocoApp) withClient(ctx context.Context, fn func(*z21.Client) error) error {
	if err := app.connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.client.Disconnect(); err != nil {
			logrus.WithError(err).Warn("error while disconnecting")
		}
	}()
	return fn(app.client)
}

func contextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
