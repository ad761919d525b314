package z21

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionLedgerSendsOnlyOnTransition(t *testing.T) {
	var sent []BroadcastFlag
	ledger := newSubscriptionLedger(FirmwareVersion{Major: 1, Minor: 42}, func(f BroadcastFlag) error {
		sent = append(sent, f)
		return nil
	}, nil)

	assert.NoError(t, ledger.Subscribe(CategoryBasic))
	assert.NoError(t, ledger.Subscribe(CategoryBasic))
	assert.NoError(t, ledger.Subscribe(CategoryBasic))
	assert.Len(t, sent, 1, "second and third Subscribe must not resend the mask")

	assert.NoError(t, ledger.Unsubscribe(CategoryBasic))
	assert.Len(t, sent, 1, "refcount 3->2 must not resend")

	assert.NoError(t, ledger.Unsubscribe(CategoryBasic))
	assert.Len(t, sent, 1, "refcount 2->1 must not resend")

	assert.NoError(t, ledger.Unsubscribe(CategoryBasic))
	assert.Len(t, sent, 2, "refcount 1->0 must resend the cleared mask")
	assert.Equal(t, BroadcastFlag(0), sent[1])
}

func TestSubscriptionLedgerMasksCombine(t *testing.T) {
	var last BroadcastFlag
	ledger := newSubscriptionLedger(FirmwareVersion{Major: 1, Minor: 42}, func(f BroadcastFlag) error {
		last = f
		return nil
	}, nil)
	assert.NoError(t, ledger.Subscribe(CategoryBasic))
	assert.NoError(t, ledger.Subscribe(CategorySystemState))
	assert.Equal(t, FlagBasic|FlagSystemState, last)
}

func TestSubscriptionLedgerAllLocoInfoFirmwareGuard(t *testing.T) {
	var sent []BroadcastFlag
	ledger := newSubscriptionLedger(FirmwareVersion{Major: 1, Minor: 10}, func(f BroadcastFlag) error {
		sent = append(sent, f)
		return nil
	}, nil)
	assert.NoError(t, ledger.Subscribe(CategoryAllLocoInfo))
	assert.Empty(t, sent, "firmware below 1.20 must not enable AllLocoInfo")

	assert.NoError(t, ledger.setFirmware(FirmwareVersion{Major: 1, Minor: 30}))
	assert.NoError(t, ledger.Subscribe(CategoryAllLocoInfo))
}

// TestSubscriptionLedgerFirmwareUpdateReleasesGuardedSubscriber covers the
// case where the only Subscribe call happens before firmware info is known:
// the refcount is held but blocked by the guard, and nothing re-subscribes
// afterward — setFirmware alone must push the now-allowed mask.
func TestSubscriptionLedgerFirmwareUpdateReleasesGuardedSubscriber(t *testing.T) {
	var sent []BroadcastFlag
	ledger := newSubscriptionLedger(FirmwareVersion{Major: 1, Minor: 10}, func(f BroadcastFlag) error {
		sent = append(sent, f)
		return nil
	}, nil)

	assert.NoError(t, ledger.Subscribe(CategoryAllLocoInfo))
	assert.Empty(t, sent, "firmware below 1.20 must not enable AllLocoInfo")

	assert.NoError(t, ledger.setFirmware(FirmwareVersion{Major: 1, Minor: 30}))
	assert.Len(t, sent, 1, "firmware update must push the mask for the already-subscribed category")
	assert.Equal(t, FlagAllLocoInfo, sent[0])

	assert.NoError(t, ledger.setFirmware(FirmwareVersion{Major: 1, Minor: 40}))
	assert.Len(t, sent, 1, "mask unchanged by a further firmware bump must not resend")
}

func TestSubscriptionLedgerRailComTransitionCallback(t *testing.T) {
	var transitions []bool
	ledger := newSubscriptionLedger(FirmwareVersion{}, func(BroadcastFlag) error { return nil },
		func(active bool) { transitions = append(transitions, active) })

	assert.NoError(t, ledger.Subscribe(CategoryRailComSubscribed))
	assert.NoError(t, ledger.Subscribe(CategoryRailComSubscribed))
	assert.Equal(t, []bool{true}, transitions)

	assert.NoError(t, ledger.Unsubscribe(CategoryRailComSubscribed))
	assert.Equal(t, []bool{true}, transitions)

	assert.NoError(t, ledger.Unsubscribe(CategoryRailComSubscribed))
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestSubscriptionLedgerUnknownCategory(t *testing.T) {
	ledger := newSubscriptionLedger(FirmwareVersion{}, func(BroadcastFlag) error { return nil }, nil)
	err := ledger.Subscribe(EventCategory("bogus"))
	assert.ErrorIs(t, err, ErrUnknownMessage)
}
