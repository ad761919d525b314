package app

import (
	"time"

	"github.com/keskad/loco/pkgs/z21"
)

// SetTurnoutAction drives a turnout/accessory to the given position, using
// the station's required pulse sequence.
func (app *LocoApp) SetTurnoutAction(addr uint16, position uint8, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	pos := z21.TurnoutPosition0
	if position == 1 {
		pos = z21.TurnoutPosition1
	}
	return app.withClient(ctx, func(c *z21.Client) error {
		return c.SetTurnoutPosition(z21.LocoAddr(addr), pos)
	})
}

// GetTurnoutAction prints a turnout's current position.
func (app *LocoApp) GetTurnoutAction(addr uint16, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		info, err := c.GetTurnoutInfo(ctx, z21.LocoAddr(addr))
		if err != nil {
			return err
		}
		app.P.Printf("turnout %d: position=%d\n", addr, info.Position)
		return nil
	})
}
