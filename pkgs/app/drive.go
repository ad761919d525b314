package app

import (
	"time"

	"github.com/keskad/loco/pkgs/z21"
)

// SetSpeedAction drives a locomotive at the given speed/direction in the
// caller-chosen native step resolution.
func (app *LocoApp) SetSpeedAction(locoAddr uint16, speed uint8, forward bool, nativeSteps int, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	dir := z21.Reverse
	if forward {
		dir = z21.Forward
	}
	return app.withClient(ctx, func(c *z21.Client) error {
		return c.SetLocoDrive(z21.LocoAddr(locoAddr), speed, dir, z21.NativeSpeedSteps(nativeSteps))
	})
}

// GetSpeedAction retrieves a locomotive's current speed and direction.
func (app *LocoApp) GetSpeedAction(locoAddr uint16, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		info, err := c.GetLocoInfo(ctx, z21.LocoAddr(locoAddr))
		if err != nil {
			return err
		}
		direction := "reverse"
		if info.Direction == z21.Forward {
			direction = "forward"
		}
		app.P.Printf("loco %d: speed=%d direction=%s steps=%d busy=%v\n",
			locoAddr, info.Speed, direction, info.Steps, info.Busy)
		return nil
	})
}

// SetFunctionAction toggles a locomotive function.
func (app *LocoApp) SetFunctionAction(locoAddr uint16, fn uint8, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return app.withClient(ctx, func(c *z21.Client) error {
		return c.SetLocoFunction(z21.LocoAddr(locoAddr), fn)
	})
}

// SetModeAction assigns the track protocol (DCC/MM) a locomotive is driven
// under.
func (app *LocoApp) SetModeAction(locoAddr uint16, mm bool, timeout time.Duration) error {
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	mode := z21.ModeDCC
	if mm {
		mode = z21.ModeMM
	}
	return app.withClient(ctx, func(c *z21.Client) error {
		return c.SetLocoMode(z21.LocoAddr(locoAddr), mode)
	})
}
