package z21

import "sync"

// subscriptionLedger refcounts subscriber interest per EventCategory and
// derives the broadcast-flag mask that should currently be active on the
// station (§3 "Subscription ledger", §4.3).
//
// Transitions only ever send LAN_SET_BROADCASTFLAGS when the resulting mask
// actually changes — repeated Subscribe/Unsubscribe calls for a category
// that is already active/inactive are refcount-only, no wire traffic.
type subscriptionLedger struct {
	mu       sync.Mutex
	counts   map[EventCategory]int
	fw       FirmwareVersion
	sendMask func(BroadcastFlag) error

	// lastSentMask is the mask last pushed to the station, used by
	// setFirmware to detect when a firmware update newly unblocks a category
	// that already has subscribers (so it gets pushed even though its own
	// refcount never made a 0->1 transition).
	lastSentMask BroadcastFlag

	// railComOnTransition is invoked when RailCom-subscriber count crosses
	// 0->1 (start polling) or 1->0 (stop polling), per §4.3.
	railComOnTransition func(active bool)
}

func newSubscriptionLedger(fw FirmwareVersion, sendMask func(BroadcastFlag) error, railComTransition func(bool)) *subscriptionLedger {
	return &subscriptionLedger{
		counts:              make(map[EventCategory]int),
		fw:                  fw,
		sendMask:            sendMask,
		railComOnTransition: railComTransition,
	}
}

// setFirmware updates the known firmware version and, if that newly
// satisfies a guard for a category that already has subscribers, pushes the
// resulting mask — otherwise a category blocked by its guard at Subscribe
// time would never be told about once firmware info arrives or changes.
func (l *subscriptionLedger) setFirmware(fw FirmwareVersion) error {
	l.mu.Lock()
	l.fw = fw
	mask := l.currentMaskLocked()
	changed := mask != l.lastSentMask
	l.mu.Unlock()

	if !changed {
		return nil
	}
	if err := l.sendMask(mask); err != nil {
		return err
	}
	l.mu.Lock()
	l.lastSentMask = mask
	l.mu.Unlock()
	return nil
}

// Subscribe increments category's refcount and, on a 0->1 transition that
// the firmware guard allows, pushes the updated mask to the station.
func (l *subscriptionLedger) Subscribe(category EventCategory) error {
	l.mu.Lock()
	rule, known := categoryRules[category]
	if !known {
		l.mu.Unlock()
		return ErrUnknownMessage
	}
	wasZero := l.counts[category] == 0
	l.counts[category]++
	mask := l.currentMaskLocked()
	railComStarted := category == CategoryRailComSubscribed && wasZero
	l.mu.Unlock()

	if !rule.guard(l.fw) {
		return nil
	}
	if wasZero {
		if err := l.sendMask(mask); err != nil {
			return err
		}
		l.mu.Lock()
		l.lastSentMask = mask
		l.mu.Unlock()
	}
	if railComStarted && l.railComOnTransition != nil {
		l.railComOnTransition(true)
	}
	return nil
}

// Unsubscribe decrements category's refcount and, on a 1->0 transition,
// pushes the updated mask.
func (l *subscriptionLedger) Unsubscribe(category EventCategory) error {
	l.mu.Lock()
	wasPositive := l.counts[category] > 0
	if wasPositive {
		l.counts[category]--
	}
	becameZero := wasPositive && l.counts[category] == 0
	mask := l.currentMaskLocked()
	changed := becameZero && mask != l.lastSentMask
	railComStopped := category == CategoryRailComSubscribed && becameZero
	l.mu.Unlock()

	if changed {
		if err := l.sendMask(mask); err != nil {
			return err
		}
		l.mu.Lock()
		l.lastSentMask = mask
		l.mu.Unlock()
	}
	if railComStopped && l.railComOnTransition != nil {
		l.railComOnTransition(false)
	}
	return nil
}

// currentMaskLocked computes the OR of every category with a positive
// refcount whose firmware guard currently passes. Must be called with mu held.
func (l *subscriptionLedger) currentMaskLocked() BroadcastFlag {
	var mask BroadcastFlag
	for category, count := range l.counts {
		if count <= 0 {
			continue
		}
		rule, known := categoryRules[category]
		if !known || !rule.guard(l.fw) {
			continue
		}
		mask |= rule.flag
	}
	return mask
}

// CurrentMask exposes the ledger's computed mask for diagnostics/tests.
func (l *subscriptionLedger) CurrentMask() BroadcastFlag {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentMaskLocked()
}
