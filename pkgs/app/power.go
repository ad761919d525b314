package app

import (
	"time"

	"github.com/keskad/loco/pkgs/z21"
)

// SetPowerAction switches the track output on or off.
func (app *LocoApp) SetPowerAction(on bool, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		if on {
			return c.SetTrackPowerOn()
		}
		return c.SetTrackPowerOff()
	})
}

// EmergencyStopAction halts every locomotive on the layout.
func (app *LocoApp) EmergencyStopAction(timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		return c.SetEmergencyStop()
	})
}

// GetSystemStateAction prints the station's current telemetry.
func (app *LocoApp) GetSystemStateAction(timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		state, err := c.GetSystemState(ctx)
		if err != nil {
			return err
		}
		app.P.Printf("main current   : %d mA\n", state.MainCurrentMA)
		app.P.Printf("prog current   : %d mA\n", state.ProgCurrentMA)
		app.P.Printf("temperature    : %d C\n", state.TemperatureC)
		app.P.Printf("supply voltage : %d mV\n", state.SupplyVoltageMV)
		app.P.Printf("emergency stop : %v\n", state.CentralState.EmergencyStop())
		app.P.Printf("track power off: %v\n", state.CentralState.TrackVoltageOff())
		app.P.Printf("short circuit  : %v\n", state.CentralState.ShortCircuit())
		return nil
	})
}
