package z21

import "encoding/binary"

// xorSum is the Z21 X-Bus checksum: XOR over every byte given to it. Ground
// truth: keskad/loco's commandstation.xorSum, generalized for reuse across
// every X-Bus builder instead of being re-inlined per command.
func xorSum(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}
	return x
}

// buildFrame prepends the 2-byte little-endian length and 2-byte
// little-endian header to payload, per §4.1.
func buildFrame(header uint16, payload []byte) []byte {
	buf := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(4+len(payload)))
	binary.LittleEndian.PutUint16(buf[2:4], header)
	return append(buf, payload...)
}

// buildXBusFrame wraps body (starting with the X-header byte) in a
// headerXBus frame and appends the XOR checksum over body, per §4.1.
func buildXBusFrame(body []byte) []byte {
	withChecksum := append(append([]byte{}, body...), xorSum(body))
	return buildFrame(headerXBus, withChecksum)
}

// encodeLocoAddrXBus applies the outbound X-Bus address encoding rule (§3):
// the high byte carries 0xC0 OR-masked once the address reaches the
// long-address range.
func encodeLocoAddrXBus(addr LocoAddr) (msb, lsb byte) {
	msb = byte((addr >> 8) & 0x3F)
	if addr >= 128 {
		msb |= 0xC0
	}
	lsb = byte(addr & 0xFF)
	return msb, lsb
}

// decodeLocoAddrXBus reverses encodeLocoAddrXBus for inbound loco-info
// frames (§4.1 "Loco-info address").
func decodeLocoAddrXBus(msb, lsb byte) LocoAddr {
	return LocoAddr(uint16(msb&0x3F)<<8 | uint16(lsb))
}

// encodeAddrBE encodes a raw big-endian address, used by the non-X-Bus
// loco-mode/turnout-mode/railcom-getdata commands (§3).
func encodeAddrBE(addr LocoAddr) (hi, lo byte) {
	return byte(addr >> 8), byte(addr & 0xFF)
}

func decodeAddrBE(hi, lo byte) LocoAddr {
	return LocoAddr(uint16(hi)<<8 | uint16(lo))
}
