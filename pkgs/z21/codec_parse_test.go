package z21

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFramesSingle(t *testing.T) {
	datagram := BuildGetSerialNumber()
	frames, truncated := SplitFrames(datagram)
	assert.False(t, truncated)
	assert.Len(t, frames, 1)
	assert.Equal(t, datagram, frames[0])
}

func TestSplitFramesMultiple(t *testing.T) {
	datagram := append(append([]byte{}, BuildGetSerialNumber()...), BuildSetTrackPowerOn()...)
	frames, truncated := SplitFrames(datagram)
	assert.False(t, truncated)
	assert.Len(t, frames, 2)
}

func TestSplitFramesMalformedTrailer(t *testing.T) {
	datagram := append(append([]byte{}, BuildGetSerialNumber()...), 0x09, 0x00)
	frames, truncated := SplitFrames(datagram)
	assert.True(t, truncated)
	assert.Len(t, frames, 1)
}

func TestParseFrameTooShort(t *testing.T) {
	_, _, err := ParseFrame([]byte{0x01}, FirmwareVersion{}, HardwareUnknown)
	assert.ErrorIs(t, err, ErrFrameTooShort)
}

func TestParseSerialNumber(t *testing.T) {
	frame := []byte{0x08, 0x00, 0x10, 0x00, 0x78, 0x56, 0x34, 0x12}
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, EventSerialNumberReceived, ev.Kind)
	assert.Equal(t, SerialNumber(0x12345678), ev.SerialNumber)
}

func TestParseHardwareInfoBCD(t *testing.T) {
	// hw_type = z21 new (0x00000201), firmware byte9=0x01(major), byte8=0x30(minor in BCD -> 30)
	frame := []byte{0x0C, 0x00, 0x1A, 0x00, 0x01, 0x02, 0x00, 0x00, 0x30, 0x01, 0x00, 0x00}
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, HardwareZ21New, ev.HardwareInfo.Type)
	assert.Equal(t, byte(1), ev.HardwareInfo.Firmware.Major)
	assert.Equal(t, byte(30), ev.HardwareInfo.Firmware.Minor)
}

func TestParseTrackPowerResponseOn(t *testing.T) {
	body := []byte{xheaderTrackPower, db0BcTrackPowerOn}
	frame := append([]byte{0x07, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, EventTrackPowerInfoReceived, ev.Kind)
	assert.Equal(t, TrackPowerOn, ev.TrackPower)
}

func TestParseTrackPowerResponseOff(t *testing.T) {
	// Literal scenario: 07 00 40 00 61 00 61 -> Off.
	frame := []byte{0x07, 0x00, 0x40, 0x00, 0x61, 0x00, 0x61}
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, EventTrackPowerInfoReceived, ev.Kind)
	assert.Equal(t, TrackPowerOff, ev.TrackPower)
}

func TestParseTurnoutInfo(t *testing.T) {
	body := []byte{xheaderTurnoutInfo, 0x00, 0x0A, 0x01}
	frame := append([]byte{0x09, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, EventTurnoutInfoReceived, ev.Kind)
	assert.Equal(t, LocoAddr(10), ev.TurnoutInfo.Address)
	assert.Equal(t, TurnoutPosition(1), ev.TurnoutInfo.Position)
}

func TestParseTurnoutInfoTooShortRejectsChecksumByteAsPayload(t *testing.T) {
	// One byte short of a real LAN_X_TURNOUT_INFO frame: only 8 bytes total,
	// so frame[7] is the checksum, not the position byte.
	body := []byte{xheaderTurnoutInfo, 0x00, 0x0A}
	frame := append([]byte{0x08, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	_, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.ErrorIs(t, err, ErrFrameTooShort)
	assert.False(t, ok)
}

func TestParseFirmwareVersion(t *testing.T) {
	body := []byte{xheaderFirmwareVersion, db0GetFirmwareVersion, 0x01, 0x30}
	frame := append([]byte{0x09, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, EventFirmwareVersionReceived, ev.Kind)
	assert.Equal(t, byte(1), ev.FirmwareVersion.Major)
	assert.Equal(t, byte(30), ev.FirmwareVersion.Minor)
}

func TestParseFirmwareVersionTooShortRejectsChecksumByteAsPayload(t *testing.T) {
	body := []byte{xheaderFirmwareVersion, db0GetFirmwareVersion, 0x01}
	frame := append([]byte{0x08, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	_, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.ErrorIs(t, err, ErrFrameTooShort)
	assert.False(t, ok)
}

func TestParseTrackPowerTooShortRejectsChecksumByteAsPayload(t *testing.T) {
	body := []byte{xheaderTrackPower}
	frame := append([]byte{0x06, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	_, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.ErrorIs(t, err, ErrFrameTooShort)
	assert.False(t, ok)
}

func TestParseXBusChecksumMismatch(t *testing.T) {
	body := []byte{xheaderTrackPower, db0BcTrackPowerOn}
	frame := append([]byte{0x07, 0x00, 0x40, 0x00}, append(body, ^xorSum(body))...)
	_, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.False(t, ok)
}

func TestParseLocoInfoShortAddress(t *testing.T) {
	// addr 3, not busy, 128 steps (db0 low3=4), db1 forward + speed
	db0 := byte(0x04)
	db1 := byte(0x80 | 64)
	body := []byte{xheaderLocoInfo, 0x00, 0x03, db0, db1}
	frame := append([]byte{0x0A, 0x00, 0x40, 0x00}, append(body, xorSum(body))...)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, LocoAddr(3), ev.LocoInfo.Address)
	assert.Equal(t, Forward, ev.LocoInfo.Direction)
	assert.Equal(t, NativeSteps128, ev.LocoInfo.NativeSteps)
}

func TestParseSystemStateWithoutCapabilities(t *testing.T) {
	frame := make([]byte, 20)
	frame[2], frame[3] = byte(headerSystemStateResp), byte(headerSystemStateResp>>8)
	frame[0], frame[1] = 20, 0
	ev, ok, err := ParseFrame(frame, FirmwareVersion{Major: 1, Minor: 30}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, ev.SystemState.CapabilitiesKnown)
}

func TestParseSystemStateWithCapabilities(t *testing.T) {
	frame := make([]byte, 20)
	frame[0], frame[1] = 20, 0
	frame[2], frame[3] = byte(headerSystemStateResp), byte(headerSystemStateResp>>8)
	frame[19] = byte(CapDCC | CapRailCom)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{Major: 1, Minor: 42}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, ev.SystemState.CapabilitiesKnown)
	assert.True(t, ev.SystemState.Capabilities.Has(CapDCC))
	assert.True(t, ev.SystemState.Capabilities.Has(CapRailCom))
}

func TestParseBroadcastFlagsRoundTrip(t *testing.T) {
	flags := FlagBasic | FlagAllLocoInfo
	frame := BuildSetBroadcastFlags(flags)
	// Swap header to the GET-response header to simulate the station's reply.
	frame[2], frame[3] = byte(headerGetBroadcastFlag), byte(headerGetBroadcastFlag>>8)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, flags, ev.BroadcastFlags)
}

func TestParseRailComData(t *testing.T) {
	body := []byte{0x00, 0x03, 0x28, 0x64, 0xAA, 0xBB}
	frame := append([]byte{0x0A, 0x00, byte(headerRailComChanged), byte(headerRailComChanged >> 8)}, body...)
	ev, ok, err := ParseFrame(frame, FirmwareVersion{}, HardwareUnknown)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, LocoAddr(3), ev.RailComData.Address)
	assert.Equal(t, byte(0x28), ev.RailComData.SpeedKmh)
	assert.Equal(t, byte(0x64), ev.RailComData.QoS)
	assert.Equal(t, []byte{0xAA, 0xBB}, ev.RailComData.RawPayload)
}

func TestBcdToDecimal(t *testing.T) {
	assert.Equal(t, byte(30), bcdToDecimal(0x30))
	assert.Equal(t, byte(9), bcdToDecimal(0x09))
	assert.Equal(t, byte(0), bcdToDecimal(0x00))
}
