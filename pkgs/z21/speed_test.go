package z21

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNativeSteps(t *testing.T) {
	assert.Equal(t, NativeSteps14, DecodeNativeSteps(0x00))
	assert.Equal(t, NativeSteps28, DecodeNativeSteps(0x02))
	assert.Equal(t, NativeSteps128, DecodeNativeSteps(0x04))
	assert.Equal(t, NativeStepsUnknown, DecodeNativeSteps(0x07))
}

func TestNormalizeSteps(t *testing.T) {
	assert.Equal(t, SpeedSteps14, NormalizeSteps(NativeSteps14))
	assert.Equal(t, SpeedSteps28, NormalizeSteps(NativeSteps28))
	assert.Equal(t, SpeedSteps128, NormalizeSteps(NativeSteps128))
	assert.Equal(t, SpeedStepsUnknown, NormalizeSteps(NativeStepsUnknown))
}

func TestNativeSpeedValueClamping(t *testing.T) {
	assert.Equal(t, byte(14), nativeSpeedValue(200, NativeSteps14))
	assert.Equal(t, byte(28), nativeSpeedValue(200, NativeSteps28))
	assert.Equal(t, byte(126), nativeSpeedValue(200, NativeSteps128))
}

func TestNativeSpeedValuePassesThroughWithinRange(t *testing.T) {
	// speed is already expressed in the target resolution's own scale; it
	// must not be rescaled, only clamped.
	assert.Equal(t, byte(64), nativeSpeedValue(64, NativeSteps128))
	assert.Equal(t, byte(20), nativeSpeedValue(20, NativeSteps28))
	assert.Equal(t, byte(10), nativeSpeedValue(10, NativeSteps14))
}

func TestRocoWireSpeedRoundTrip28Steps(t *testing.T) {
	for native := byte(0); native <= 28; native++ {
		wire := rocoWireSpeed(native, NativeSteps28)
		back := rocoNativeFromWire(wire, NativeSteps28)
		assert.Equal(t, native, back, "native=%d wire=%x", native, wire)
	}
}

func TestRocoWireSpeedIdentity14And128(t *testing.T) {
	assert.Equal(t, byte(10), rocoWireSpeed(10, NativeSteps14))
	assert.Equal(t, byte(100), rocoWireSpeed(100, NativeSteps128))
}

func TestRocoWireSpeedStopAndEstop(t *testing.T) {
	assert.Equal(t, byte(0), rocoWireSpeed(0, NativeSteps28))
	assert.Equal(t, byte(1), rocoWireSpeed(1, NativeSteps28))
}
