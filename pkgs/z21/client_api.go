package z21

import (
	"context"
	"time"
)

const turnoutOnDuration = 100 * time.Millisecond
const turnoutSettleDuration = 50 * time.Millisecond

// GetFirmwareVersion returns the firmware discovered during the connect
// handshake.
func (c *Client) GetFirmwareVersion() (FirmwareVersion, error) {
	if c.State() != Ready {
		return FirmwareVersion{}, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firmware, nil
}

// GetHardwareInfo returns the hardware type/firmware pair discovered during
// the connect handshake.
func (c *Client) GetHardwareInfo() (HardwareInfo, error) {
	if c.State() != Ready {
		return HardwareInfo{}, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hardware, nil
}

// GetSerialNumber returns the serial number discovered during the connect
// handshake.
func (c *Client) GetSerialNumber() (SerialNumber, error) {
	if c.State() != Ready {
		return 0, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serial, nil
}

// GetZ21Code returns the lock-state code discovered during the connect
// handshake.
func (c *Client) GetZ21Code() (Z21Code, error) {
	if c.State() != Ready {
		return 0, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.z21Code, nil
}

// GetBroadcastFlags queries the station for its currently active broadcast
// mask (round trip, not the ledger's locally computed one).
func (c *Client) GetBroadcastFlags(ctx context.Context) (BroadcastFlag, error) {
	if c.State() != Ready {
		return 0, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildGetBroadcastFlags(), EventBroadcastFlagsReceived)
	if err != nil {
		return 0, err
	}
	return ev.BroadcastFlags, nil
}

// GetSystemState requests one LAN_SYSTEMSTATE_GETDATA round trip.
func (c *Client) GetSystemState(ctx context.Context) (SystemState, error) {
	if c.State() != Ready {
		return SystemState{}, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildSystemStateGetData(), EventSystemStateChanged)
	if err != nil {
		return SystemState{}, err
	}
	return ev.SystemState, nil
}

// GetLocoInfo requests a locomotive's current drive state. It pairs
// LAN_X_GET_LOCO_INFO with LAN_GET_LOCOMODE (§4.4): the router suppresses the
// raw loco-info reply and emits it once, mode filled in, after the loco-mode
// reply completes the correlation.
func (c *Client) GetLocoInfo(ctx context.Context, addr LocoAddr) (LocoInfo, error) {
	if c.State() != Ready {
		return LocoInfo{}, ErrNotConnected
	}
	c.router.BeginLocoInfoRequest(addr)

	result := make(chan Event, 1)
	tok := c.router.Subscribe(func(ev Event) {
		if ev.Kind == EventLocoInfoReceived && ev.LocoInfo.Address == addr {
			select {
			case result <- ev:
			default:
			}
		}
	})
	defer c.router.Unsubscribe(tok)

	if err := c.send(BuildGetLocoInfo(addr)); err != nil {
		c.router.CancelLocoInfoRequest(addr)
		return LocoInfo{}, err
	}
	if err := c.send(BuildGetLocoMode(addr)); err != nil {
		c.router.CancelLocoInfoRequest(addr)
		return LocoInfo{}, err
	}

	timer := time.NewTimer(handshakeStep)
	defer timer.Stop()
	select {
	case ev := <-result:
		return ev.LocoInfo, nil
	case <-timer.C:
		c.router.CancelLocoInfoRequest(addr)
		return LocoInfo{}, ErrHandshakeTimeout
	case <-ctx.Done():
		c.router.CancelLocoInfoRequest(addr)
		return LocoInfo{}, ctx.Err()
	}
}

// GetLocoMode requests the track protocol (DCC/MM) a locomotive address is
// driven under.
func (c *Client) GetLocoMode(ctx context.Context, addr LocoAddr) (LocoMode, error) {
	if c.State() != Ready {
		return 0, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildGetLocoMode(addr), EventLocoModeReceived)
	if err != nil {
		return 0, err
	}
	return ev.LocoMode, nil
}

// GetLocoSlotInfo requests the undocumented per-slot snapshot (§9 Open
// Question (a)). slot must be in 1..120.
func (c *Client) GetLocoSlotInfo(ctx context.Context, slot byte) (LocoSlotInfo, error) {
	if c.State() != Ready {
		return LocoSlotInfo{}, ErrNotConnected
	}
	if slot < 1 || slot > 120 {
		return LocoSlotInfo{}, ErrInvalidSlot
	}
	ev, err := c.request(ctx, BuildLocoSlotInfoGet(slot), EventLocoSlotInfoReceived)
	if err != nil {
		return LocoSlotInfo{}, err
	}
	return ev.LocoSlotInfo, nil
}

// GetTurnoutInfo requests a turnout/accessory's current position.
func (c *Client) GetTurnoutInfo(ctx context.Context, addr LocoAddr) (TurnoutInfo, error) {
	if c.State() != Ready {
		return TurnoutInfo{}, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildGetTurnoutInfo(addr), EventTurnoutInfoReceived)
	if err != nil {
		return TurnoutInfo{}, err
	}
	return ev.TurnoutInfo, nil
}

// GetTurnoutMode requests the track protocol an accessory address uses.
func (c *Client) GetTurnoutMode(ctx context.Context, addr LocoAddr) (TurnoutMode, error) {
	if c.State() != Ready {
		return 0, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildGetTurnoutMode(addr), EventTurnoutModeReceived)
	if err != nil {
		return 0, err
	}
	return ev.TurnoutMode, nil
}

// GetRBusData requests one of the two 80-input feedback groups (0 or 1).
func (c *Client) GetRBusData(ctx context.Context, group byte) (RBusData, error) {
	if c.State() != Ready {
		return RBusData{}, ErrNotConnected
	}
	if group > 1 {
		return RBusData{}, ErrInvalidGroup
	}
	ev, err := c.request(ctx, BuildRBusGetData(group), EventRBusDataReceived)
	if err != nil {
		return RBusData{}, err
	}
	return ev.RBusData, nil
}

// GetRailComData requests the most recent RailCom feedback for addr.
func (c *Client) GetRailComData(ctx context.Context, addr LocoAddr) (RailComData, error) {
	if c.State() != Ready {
		return RailComData{}, ErrNotConnected
	}
	ev, err := c.request(ctx, BuildRailComGetData(addr), EventRailComDataReceived)
	if err != nil {
		return RailComData{}, err
	}
	return ev.RailComData, nil
}

// SetTrackPowerOn enables the track output.
func (c *Client) SetTrackPowerOn() error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetTrackPowerOn())
}

// SetTrackPowerOff disables the track output.
func (c *Client) SetTrackPowerOff() error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetTrackPowerOff())
}

// SetEmergencyStop halts every locomotive on the layout immediately.
func (c *Client) SetEmergencyStop() error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetEmergencyStop())
}

// SetLocoMode assigns the track protocol a locomotive address is driven
// under.
func (c *Client) SetLocoMode(addr LocoAddr, mode LocoMode) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetLocoMode(addr, mode))
}

// SetTurnoutMode assigns the track protocol an accessory address uses.
func (c *Client) SetTurnoutMode(addr LocoAddr, mode TurnoutMode) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetTurnoutMode(addr, mode))
}

// SetLocoDrive commands a locomotive's speed and direction. speed is
// expressed directly in native's own range (0..14/28/126) — it is clamped,
// not rescaled, before being mapped through the wire encoding.
func (c *Client) SetLocoDrive(addr LocoAddr, speed byte, dir Direction, native NativeSpeedSteps) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetLocoDrive(addr, speed, dir, native))
}

// SetLocoFunction toggles function fn on the given locomotive.
func (c *Client) SetLocoFunction(addr LocoAddr, fn byte) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.send(BuildSetLocoFunction(addr, fn))
}

// SetTurnoutPosition drives an accessory to position with the station's
// required activate/100ms/deactivate/50ms pulse sequence (§6).
func (c *Client) SetTurnoutPosition(addr LocoAddr, position TurnoutPosition) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	if err := c.send(BuildSetTurnoutPosition(addr, position, true)); err != nil {
		return err
	}
	time.Sleep(turnoutOnDuration)
	if err := c.send(BuildSetTurnoutPosition(addr, position, false)); err != nil {
		return err
	}
	time.Sleep(turnoutSettleDuration)
	return nil
}

// Subscribe categories below wrap the subscription ledger for callers that
// want explicit control over optional broadcast categories beyond the
// basic+system-state set Connect enables automatically.

// SubscribeCategory increments interest in an optional event category.
func (c *Client) SubscribeCategory(category EventCategory) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.subs.Subscribe(category)
}

// UnsubscribeCategory decrements interest in an optional event category.
func (c *Client) UnsubscribeCategory(category EventCategory) error {
	if c.State() != Ready {
		return ErrNotConnected
	}
	return c.subs.Unsubscribe(category)
}
