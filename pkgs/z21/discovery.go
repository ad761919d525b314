package z21

import (
	"context"
	"net"
	"time"
)

// DiscoveredStation is one reply to a broadcast discovery probe (§4.5).
type DiscoveredStation struct {
	Address net.IP
	Code    Z21Code
}

// Discover broadcasts LAN_GET_CODE on port (DefaultPort if 0) and collects
// replies for window, deduplicating by source IP. Must not be called while
// a client is already connected (§4.5 precondition); this function checks
// no connection state itself — Client.Discover enforces it against that
// client's own state, not globally.
func Discover(ctx context.Context, port uint16, window time.Duration) ([]DiscoveredStation, error) {
	if port == 0 {
		port = DefaultPort
	}
	transport, err := DialBroadcastUDPTransport(port)
	if err != nil {
		return nil, err
	}
	defer transport.Close()

	if err := transport.SendBroadcast(BuildGetCode()); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var found []DiscoveredStation
	deadline := time.Now().Add(window)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return found, nil
		}
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		step := remaining
		if step > 250*time.Millisecond {
			step = 250 * time.Millisecond
		}
		payload, from, err := transport.Receive(time.Now().Add(step))
		if err != nil {
			continue
		}
		frames, _ := SplitFrames(payload)
		for _, f := range frames {
			ev, ok, err := ParseFrame(f, FirmwareVersion{}, HardwareUnknown)
			if err != nil || !ok || ev.Kind != EventZ21CodeReceived {
				continue
			}
			udpAddr, ok := from.(*net.UDPAddr)
			if !ok {
				continue
			}
			key := udpAddr.IP.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, DiscoveredStation{Address: udpAddr.IP, Code: ev.Z21Code})
		}
	}
}

// Discover is also exposed as a method so callers can enforce the
// not-already-connected precondition against a specific Client instance.
func (c *Client) Discover(ctx context.Context, window time.Duration) ([]DiscoveredStation, error) {
	if c.State() != Disconnected {
		return nil, ErrDiscoveryWhileConnected
	}
	return Discover(ctx, c.port, window)
}
