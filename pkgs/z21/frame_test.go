package z21

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorSum(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want byte
	}{
		{"empty", []byte{}, 0x00},
		{"single", []byte{0x42}, 0x42},
		{"track_power_on", []byte{0x21, 0x81}, 0xA0},
		{"loco_info_header", []byte{0xE3, 0xF0, 0x00, 0x03}, 0x10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, xorSum(tc.in))
		})
	}
}

func TestBuildFrame(t *testing.T) {
	frame := buildFrame(headerGetSerialNumber, nil)
	assert.Equal(t, []byte{0x04, 0x00, 0x10, 0x00}, frame)
}

func TestBuildXBusFrame(t *testing.T) {
	frame := buildXBusFrame([]byte{xheaderSetTrackPower, db0TrackPowerOn})
	// length(2) + header(2) + body(2) + checksum(1) = 7
	assert.Len(t, frame, 7)
	assert.Equal(t, uint16(7), uint16(frame[0])|uint16(frame[1])<<8)
	assert.Equal(t, byte(0xA0), frame[6])
}

func TestEncodeDecodeLocoAddrXBusRoundTrip(t *testing.T) {
	for _, addr := range []LocoAddr{3, 127, 128, 3000, 9999} {
		msb, lsb := encodeLocoAddrXBus(addr)
		got := decodeLocoAddrXBus(msb, lsb)
		assert.Equal(t, addr, got)
	}
}

func TestEncodeLocoAddrXBusShortVsLong(t *testing.T) {
	msb, _ := encodeLocoAddrXBus(100)
	assert.Equal(t, byte(0x00), msb&0xC0, "short address must not carry the 0xC0 marker")

	msb, _ = encodeLocoAddrXBus(200)
	assert.Equal(t, byte(0xC0), msb&0xC0, "long address must carry the 0xC0 marker")
}

func TestEncodeDecodeAddrBERoundTrip(t *testing.T) {
	hi, lo := encodeAddrBE(0x1234)
	assert.Equal(t, LocoAddr(0x1234), decodeAddrBE(hi, lo))
}
