package z21

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/sirupsen/logrus"
)

const (
	keepAlivePeriod = 45 * time.Second
	keepAliveIdle   = 40 * time.Second
	watchdogPeriod  = 5 * time.Second
	watchdogIdle    = 15 * time.Second
	watchdogStrikes = 3
	handshakeStep   = 3 * time.Second
	railcomTick     = 50 * time.Millisecond
	pingTimeout     = 2 * time.Second
)

// Client is a connected session to one z21-family command station (§3, §5).
// A single goroutine owns the UDP socket's read side; all writes go through
// sendMu so the handshake's request/response pairing never races with
// application traffic.
type Client struct {
	host string
	port uint16

	// stationIP is resolved once at Connect time; receiveLoop filters every
	// inbound datagram against it without re-resolving per packet.
	stationIP net.IP

	transport Transport
	router    *Router
	subs      *subscriptionLedger

	sendMu sync.Mutex

	mu             sync.Mutex
	state          SessionState
	firmware       FirmwareVersion
	hardware       HardwareInfo
	serial         SerialNumber
	z21Code        Z21Code
	broadcastMask  BroadcastFlag
	lastRxAt       time.Time
	lastCmdSentAt  time.Time
	watchdogStrike int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient constructs a disconnected Client targeting host:port. Pass
// port 0 to use DefaultPort.
func NewClient(host string, port uint16) *Client {
	if port == 0 {
		port = DefaultPort
	}
	c := &Client{host: host, port: port, state: Disconnected}
	return c
}

// State reports the current session lifecycle state.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s SessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.router.Dispatch(Event{Kind: EventConnectionStateChanged, ConnectionState: s})
}

// Subscribe registers a handler for every dispatched event.
func (c *Client) Subscribe(h Handler) Token { return c.router.Subscribe(h) }

// Unsubscribe removes a previously registered handler.
func (c *Client) Unsubscribe(tok Token) { c.router.Unsubscribe(tok) }

// Connect performs the full handshake (§4.2): liveness probe, start of the
// receive loop, hardware and firmware discovery, initial broadcast-flag
// subscription, then starts the keep-alive, watchdog and RailCom timers.
func (c *Client) Connect(ctx context.Context) error {
	if c.State() != Disconnected {
		return ErrAlreadyConnected
	}
	c.router = NewRouter(c.send)
	c.subs = newSubscriptionLedger(FirmwareVersion{}, c.setBroadcastMask, c.onRailComTransition)
	c.setState(Connecting)

	if err := c.probeLiveness(ctx); err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("z21: liveness check failed: %w", err)
	}

	transport, err := DialUDPTransport(c.host, c.port)
	if err != nil {
		c.setState(Disconnected)
		return err
	}
	c.transport = transport

	if resolved, rerr := net.ResolveIPAddr("ip4", c.host); rerr == nil {
		c.stationIP = resolved.IP
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.receiveLoop(runCtx)

	if err := c.handshake(ctx); err != nil {
		_ = c.Disconnect()
		return err
	}

	c.wg.Add(3)
	go c.keepAliveLoop(runCtx)
	go c.watchdogLoop(runCtx)
	go c.railComLoop(runCtx)

	c.setState(Ready)
	return nil
}

// probeLiveness sends an ICMP echo before attempting the UDP handshake, so a
// dead host fails fast with a clear error instead of a silent handshake
// timeout (§4.2 step 0).
func (c *Client) probeLiveness(ctx context.Context) error {
	pinger, err := probing.NewPinger(c.host)
	if err != nil {
		return err
	}
	pinger.Count = 1
	pinger.Timeout = pingTimeout
	pinger.SetPrivileged(false)
	if err := pinger.RunWithContext(ctx); err != nil {
		return err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return fmt.Errorf("z21: no ICMP reply from %s", c.host)
	}
	return nil
}

// handshake runs the synchronous request/response steps of §4.2: serial
// number, hardware info (whose reply also carries the firmware version),
// Z21 code, then the initial broadcast mask (basic + system state).
func (c *Client) handshake(ctx context.Context) error {
	serialEv, err := c.request(ctx, BuildGetSerialNumber(), EventSerialNumberReceived)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.serial = serialEv.SerialNumber
	c.mu.Unlock()

	hwEv, err := c.request(ctx, BuildGetHardwareInfo(), EventHardwareInfoReceived)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.hardware = hwEv.HardwareInfo
	c.firmware = hwEv.HardwareInfo.Firmware
	c.mu.Unlock()
	if err := c.subs.setFirmware(hwEv.HardwareInfo.Firmware); err != nil {
		return err
	}

	codeEv, err := c.request(ctx, BuildGetCode(), EventZ21CodeReceived)
	if err == nil {
		c.mu.Lock()
		c.z21Code = codeEv.Z21Code
		c.mu.Unlock()
	}

	if err := c.subs.Subscribe(CategoryBasic); err != nil {
		return err
	}
	if err := c.subs.Subscribe(CategorySystemState); err != nil {
		return err
	}
	return nil
}

// request sends frame and waits (bounded by handshakeStep) for the first
// dispatched event of the given kind, via a one-shot subscriber — the
// generalized form of the teacher's sendAndAwait/RequestContext pattern.
func (c *Client) request(ctx context.Context, frame []byte, want EventKind) (Event, error) {
	result := make(chan Event, 1)
	tok := c.router.Subscribe(func(ev Event) {
		if ev.Kind == want {
			select {
			case result <- ev:
			default:
			}
		}
	})
	defer c.router.Unsubscribe(tok)

	if err := c.send(frame); err != nil {
		return Event{}, err
	}

	timer := time.NewTimer(handshakeStep)
	defer timer.Stop()
	select {
	case ev := <-result:
		return ev, nil
	case <-timer.C:
		return Event{}, ErrHandshakeTimeout
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// send serializes writes so the handshake's request/response pairing never
// interleaves with application sends (§5), and records last_command_sent so
// keepAliveLoop can gate on it (§3, §4.2).
func (c *Client) send(frame []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	err := c.transport.Send(frame)
	if err == nil {
		c.mu.Lock()
		c.lastCmdSentAt = time.Now()
		c.mu.Unlock()
	}
	return err
}

func (c *Client) setBroadcastMask(mask BroadcastFlag) error {
	c.mu.Lock()
	c.broadcastMask = mask
	c.mu.Unlock()
	return c.send(BuildSetBroadcastFlags(mask))
}

func (c *Client) onRailComTransition(active bool) {
	if active {
		c.router.StartRailComPolling()
	} else {
		c.router.StopRailComPolling()
	}
}

// receiveLoop owns the socket's read side. It filters out datagrams not
// sourced from the configured station, parses the rest, and dispatches
// events — with a read deadline bounded to 1s so ctx cancellation is never
// blocked for long (§5).
func (c *Client) receiveLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		payload, from, err := c.transport.Receive(time.Now().Add(1 * time.Second))
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			logrus.WithError(err).Debug("z21: receive error")
			continue
		}
		if udpAddr, ok := from.(*net.UDPAddr); ok {
			if c.stationIP != nil && !udpAddr.IP.Equal(c.stationIP) {
				logrus.WithField("from", from.String()).Debug("z21: dropping datagram from unexpected source")
				continue
			}
		}

		c.mu.Lock()
		c.lastRxAt = time.Now()
		c.watchdogStrike = 0
		fw, hw := c.firmware, c.hardware.Type
		c.mu.Unlock()

		for _, ev := range ParseDatagram(payload, fw, hw) {
			c.router.Dispatch(ev)
		}
	}
}

// keepAliveLoop sends LAN_GET_SERIAL_NUMBER as an idle-channel keepalive
// whenever nothing has been sent for keepAliveIdle (§3 last_command_sent,
// §4.2, §5).
func (c *Client) keepAliveLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			idle := time.Since(c.lastCmdSentAt)
			c.mu.Unlock()
			if idle >= keepAliveIdle {
				_ = c.send(BuildGetSerialNumber())
			}
		}
	}
}

// watchdogLoop declares the session Lost after watchdogStrikes consecutive
// ticks on which nothing was received for watchdogIdle and the station did
// not answer an ICMP echo either (§4.2, §7).
func (c *Client) watchdogLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(watchdogPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			idle := time.Since(c.lastRxAt)
			c.mu.Unlock()
			// A quiet station that still answers ICMP is not a strike.
			stale := idle >= watchdogIdle && c.probeLiveness(ctx) != nil
			c.mu.Lock()
			if stale {
				c.watchdogStrike++
			} else {
				c.watchdogStrike = 0
			}
			lost := c.watchdogStrike >= watchdogStrikes
			c.mu.Unlock()
			if lost {
				c.setState(Lost)
				return
			}
		}
	}
}

// railComLoop advances the RailCom round-robin poller on a steady tick; Tick
// is a no-op whenever polling has not been started (§4.3, §4.4).
func (c *Client) railComLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(railcomTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.router.Tick()
		}
	}
}

// Disconnect sends LAN_LOGOFF, stops all background loops, and closes the
// socket. Safe to call from any state.
func (c *Client) Disconnect() error {
	if c.State() == Disconnected {
		return nil
	}
	if c.transport != nil {
		_ = c.send(BuildLogoff())
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.router.ClearPending()
	var err error
	if c.transport != nil {
		err = c.transport.Close()
	}
	c.setState(Disconnected)
	return err
}
