package z21

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGetSerialNumber(t *testing.T) {
	assert.Equal(t, []byte{0x04, 0x00, 0x10, 0x00}, BuildGetSerialNumber())
}

func TestBuildSetTrackPowerOnOff(t *testing.T) {
	on := BuildSetTrackPowerOn()
	assert.Equal(t, []byte{0x07, 0x00, 0x40, 0x00, 0x21, 0x81, 0xA0}, on)

	off := BuildSetTrackPowerOff()
	assert.Equal(t, []byte{0x07, 0x00, 0x40, 0x00, 0x21, 0x80, 0xA1}, off)
}

func TestBuildSetEmergencyStop(t *testing.T) {
	frame := BuildSetEmergencyStop()
	assert.Equal(t, []byte{0x06, 0x00, 0x40, 0x00, 0x81, 0x81}, frame)
}

func TestBuildSetBroadcastFlags(t *testing.T) {
	frame := BuildSetBroadcastFlags(FlagBasic | FlagSystemState)
	assert.Equal(t, uint16(0x0050), uint16(frame[2])|uint16(frame[3])<<8)
	assert.Equal(t, uint32(FlagBasic|FlagSystemState), uint32(frame[4])|uint32(frame[5])<<8|uint32(frame[6])<<16|uint32(frame[7])<<24)
}

func TestBuildGetLocoInfoShortAddress(t *testing.T) {
	frame := BuildGetLocoInfo(3)
	// length, header, xheader, db0, addr msb/lsb, checksum
	assert.Equal(t, byte(xheaderGetLocoInfo), frame[4])
	assert.Equal(t, byte(db0GetLocoInfo), frame[5])
	assert.Equal(t, byte(0x00), frame[6])
	assert.Equal(t, byte(0x03), frame[7])
	assert.Equal(t, xorSum(frame[4:len(frame)-1]), frame[len(frame)-1])
}

func TestBuildSetLocoDrive128Steps(t *testing.T) {
	frame := BuildSetLocoDrive(3, 64, Forward, NativeSteps128)
	assert.Equal(t, byte(xheaderSetLocoDrive), frame[4])
	assert.Equal(t, byte(stepsCode128), frame[5])
	db1 := frame[8]
	assert.NotZero(t, db1&0x80, "forward bit must be set")
	// 128-step mode is a direct linear encoding: speed 64 must reach the
	// wire unchanged, not rescaled against some other resolution's range.
	assert.Equal(t, byte(64), db1&0x7F)
}

func TestBuildSetLocoDriveClampsToTargetResolution(t *testing.T) {
	frame := BuildSetLocoDrive(3, 200, Forward, NativeSteps28)
	db1 := frame[8]
	// speed is out of range for 28 steps; it must clamp, not silently
	// overflow into a different value via an unrelated scaling formula.
	wire := rocoWireSpeed(28, NativeSteps28)
	assert.Equal(t, wire, db1&0x7F)
}

func TestBuildSetTurnoutPositionPulsePhases(t *testing.T) {
	on := BuildSetTurnoutPosition(10, TurnoutPosition1, true)
	off := BuildSetTurnoutPosition(10, TurnoutPosition1, false)
	assert.NotZero(t, on[7]&0x01)
	assert.Zero(t, off[7]&0x01)
}

func TestBuildLocoSlotInfoGetRejectsNothingAtBuildTime(t *testing.T) {
	// Range validation lives in the client API, not the builder.
	frame := BuildLocoSlotInfoGet(200)
	assert.Equal(t, byte(200), frame[4])
}
