package z21

import "sync"

// Router dispatches parsed events to subscribers, applying two protocol
// workarounds before anything reaches a handler (§4.4):
//
//   - loco-info/loco-mode correlation: some firmware versions report a
//     loco's drive mode only via a separate LAN_GET_LOCOMODE round trip, not
//     inline in LAN_X_LOCO_INFO. BeginLocoInfoRequest marks an address as
//     pending (Option<LocoInfo> = None); a loco-info arriving for a pending
//     address is suppressed and stashed (Some(info)) rather than broadcast;
//     the matching loco-mode response then emits one corrected loco-info
//     event and clears the entry.
//   - RailCom round-robin polling: see railComPoller below.
type Router struct {
	mu       sync.Mutex
	handlers map[Token]Handler
	nextTok  Token

	// pending holds one entry per in-flight get_loco_info(addr) correlation.
	// A nil value is Option::None (no loco-info received yet for the open
	// request); a non-nil value is Option::Some(info).
	pending map[LocoAddr]*LocoInfo

	railcom *railComPoller
}

// NewRouter builds a Router. send is used by the RailCom poller to issue the
// next LAN_RAILCOM_GETDATA request.
func NewRouter(send func([]byte) error) *Router {
	return &Router{
		handlers: make(map[Token]Handler),
		pending:  make(map[LocoAddr]*LocoInfo),
		railcom:  newRailComPoller(send),
	}
}

// BeginLocoInfoRequest marks addr pending (None) ahead of sending the paired
// LAN_X_GET_LOCO_INFO / LAN_GET_LOCOMODE requests (§4.4 "get_loco_info").
func (r *Router) BeginLocoInfoRequest(addr LocoAddr) {
	r.mu.Lock()
	r.pending[addr] = nil
	r.mu.Unlock()
}

// CancelLocoInfoRequest drops a pending correlation entry without emitting
// anything, used when a get_loco_info round trip times out so the table
// never accumulates an entry no response will ever complete.
func (r *Router) CancelLocoInfoRequest(addr LocoAddr) {
	r.mu.Lock()
	delete(r.pending, addr)
	r.mu.Unlock()
}

// ClearPending drops every in-flight correlation, called on session teardown
// (§3 "removed ... or on session teardown").
func (r *Router) ClearPending() {
	r.mu.Lock()
	r.pending = make(map[LocoAddr]*LocoInfo)
	r.mu.Unlock()
}

// Subscribe registers handler for every dispatched event and returns a Token
// for later Unsubscribe.
func (r *Router) Subscribe(handler Handler) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTok++
	tok := r.nextTok
	r.handlers[tok] = handler
	return tok
}

// Unsubscribe removes a previously registered handler.
func (r *Router) Unsubscribe(tok Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, tok)
}

// Dispatch applies the correlation/polling workarounds and fans ev out to
// every subscriber. Called from the session's receive loop for parsed frames
// and from session state changes for ConnectionStateChanged events, which can
// run on other goroutines; the shared tables are guarded by mu.
func (r *Router) Dispatch(ev Event) {
	switch ev.Kind {
	case EventLocoInfoReceived:
		r.mu.Lock()
		_, known := r.pending[ev.LocoInfo.Address]
		if known {
			info := ev.LocoInfo
			r.pending[ev.LocoInfo.Address] = &info
		}
		r.mu.Unlock()
		if known {
			return
		}
		r.broadcast(ev)
	case EventLocoModeReceived:
		r.mu.Lock()
		pendingInfo, known := r.pending[ev.LocoModeAddr]
		if !known {
			r.mu.Unlock()
			r.broadcast(ev)
			return
		}
		if pendingInfo == nil {
			// loco-mode arrived before loco-info: leave the entry as None,
			// emit nothing yet.
			r.mu.Unlock()
			return
		}
		info := *pendingInfo
		info.Mode = ev.LocoMode
		delete(r.pending, ev.LocoModeAddr)
		r.mu.Unlock()
		r.broadcast(Event{Kind: EventLocoInfoReceived, LocoInfo: info})
	case EventRailComDataReceived:
		r.railcom.observe(ev.RailComData.Address)
		r.broadcast(ev)
	default:
		r.broadcast(ev)
	}
}

func (r *Router) broadcast(ev Event) {
	r.mu.Lock()
	handlers := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// StartRailComPolling begins the round-robin RailCom cycle (§4.3, §4.4).
func (r *Router) StartRailComPolling() { r.railcom.start() }

// StopRailComPolling ends the cycle and resets its seen-address set.
func (r *Router) StopRailComPolling() { r.railcom.stop() }

// Tick advances the RailCom poller by one step; the session calls this off
// its own timer while polling is active.
func (r *Router) Tick() { r.railcom.tick() }

// railComPoller drives the LAN_RAILCOM_GETDATA "next" round robin: each tick
// asks the station for the next address with pending RailCom data. A cycle
// ends (and a fresh one starts) the moment an address already seen this
// cycle is reported again, per §4.4 "duplicate-address detection".
type railComPoller struct {
	mu     sync.Mutex
	send   func([]byte) error
	active bool
	seen   map[LocoAddr]bool
}

func newRailComPoller(send func([]byte) error) *railComPoller {
	return &railComPoller{send: send, seen: make(map[LocoAddr]bool)}
}

func (p *railComPoller) start() {
	p.mu.Lock()
	p.active = true
	p.seen = make(map[LocoAddr]bool)
	p.mu.Unlock()
}

func (p *railComPoller) stop() {
	p.mu.Lock()
	p.active = false
	p.seen = make(map[LocoAddr]bool)
	p.mu.Unlock()
}

func (p *railComPoller) tick() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()
	if !active {
		return
	}
	_ = p.send(BuildRailComGetDataNext())
}

// observe records addr in the current cycle, starting a new cycle if addr
// was already seen this time around.
func (p *railComPoller) observe(addr LocoAddr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	if p.seen[addr] {
		p.seen = make(map[LocoAddr]bool)
	}
	p.seen[addr] = true
}
