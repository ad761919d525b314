package z21

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
)

// SplitFrames walks a UDP datagram that may contain several concatenated
// frames, per §4.1 "Inbound parser": each frame is length-prefixed, the
// prefix includes itself. A short, zero-length, or overrunning length field
// stops parsing and discards the tail (logged as malformed, not returned as
// an error — the caller still gets every frame parsed so far, §8).
func SplitFrames(datagram []byte) (frames [][]byte, truncated bool) {
	pos := 0
	for pos < len(datagram) {
		remaining := datagram[pos:]
		if len(remaining) < 2 {
			logrus.WithField("bytes_left", len(remaining)).Warn("z21: malformed trailer, fewer than 2 bytes remain")
			return frames, true
		}
		length := int(binary.LittleEndian.Uint16(remaining[0:2]))
		if length == 0 || length > len(remaining) {
			logrus.WithFields(logrus.Fields{"length_field": length, "bytes_left": len(remaining)}).
				Warn("z21: malformed trailer, declared length invalid")
			return frames, true
		}
		frames = append(frames, remaining[:length])
		pos += length
	}
	return frames, false
}

// ParseFrame decodes a single already-split frame into an Event. ok is false
// when the frame carried no event worth dispatching (e.g. an X-Bus
// unknown-command notification) even though no error occurred.
func ParseFrame(frame []byte, fw FirmwareVersion, hw HardwareType) (ev Event, ok bool, err error) {
	if len(frame) < 4 {
		return Event{}, false, ErrFrameTooShort
	}
	header := binary.LittleEndian.Uint16(frame[2:4])

	switch header {
	case headerGetCode:
		return parseZ21Code(frame)
	case headerGetSerialNumber:
		return parseSerialNumber(frame)
	case headerGetHardwareInfo:
		return parseHardwareInfo(frame)
	case headerGetBroadcastFlag:
		return parseBroadcastFlags(frame)
	case headerGetLocoMode, headerSetLocoMode:
		return parseLocoMode(frame)
	case headerGetTurnoutMode, headerSetTurnoutMode:
		return parseTurnoutMode(frame)
	case headerRBusDataChanged:
		return parseRBusData(frame)
	case headerSystemStateResp:
		return parseSystemStateFrame(frame, fw, hw)
	case headerRailComChanged:
		return parseRailComData(frame)
	case headerLocoSlotInfo:
		return parseLocoSlotInfo(frame)
	case headerXBus:
		return parseXBus(frame)
	default:
		logrus.WithField("header", header).Warn("z21: unknown header")
		return Event{}, false, ErrUnknownMessage
	}
}

// ParseDatagram splits and parses every frame in a datagram, dropping (and
// logging) any frame that fails to parse while continuing with the rest —
// per §7 "no error escapes ... from the receive loop".
func ParseDatagram(datagram []byte, fw FirmwareVersion, hw HardwareType) []Event {
	frames, _ := SplitFrames(datagram)
	events := make([]Event, 0, len(frames))
	for _, f := range frames {
		ev, ok, err := ParseFrame(f, fw, hw)
		if err != nil {
			logrus.WithError(err).Debug("z21: dropping unparseable frame")
			continue
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

func parseZ21Code(frame []byte) (Event, bool, error) {
	if len(frame) < 5 {
		return Event{}, false, ErrFrameTooShort
	}
	return Event{Kind: EventZ21CodeReceived, Z21Code: Z21Code(frame[4])}, true, nil
}

func parseSerialNumber(frame []byte) (Event, bool, error) {
	if len(frame) < 8 {
		return Event{}, false, ErrFrameTooShort
	}
	serial := binary.LittleEndian.Uint32(frame[4:8])
	return Event{Kind: EventSerialNumberReceived, SerialNumber: SerialNumber(serial)}, true, nil
}

func parseHardwareInfo(frame []byte) (Event, bool, error) {
	if len(frame) < 12 {
		return Event{}, false, ErrFrameTooShort
	}
	hwType := HardwareType(binary.LittleEndian.Uint32(frame[4:8]))
	fwRaw := binary.LittleEndian.Uint32(frame[8:12])
	fw := FirmwareVersion{
		Major: bcdToDecimal(byte((fwRaw >> 8) & 0xFF)),
		Minor: bcdToDecimal(byte(fwRaw & 0xFF)),
	}
	return Event{
		Kind:         EventHardwareInfoReceived,
		HardwareInfo: HardwareInfo{Type: hwType, Firmware: fw},
	}, true, nil
}

func parseBroadcastFlags(frame []byte) (Event, bool, error) {
	if len(frame) < 8 {
		return Event{}, false, ErrFrameTooShort
	}
	flags := binary.LittleEndian.Uint32(frame[4:8])
	return Event{Kind: EventBroadcastFlagsReceived, BroadcastFlags: BroadcastFlag(flags)}, true, nil
}

func parseLocoMode(frame []byte) (Event, bool, error) {
	if len(frame) < 7 {
		return Event{}, false, ErrFrameTooShort
	}
	addr := decodeAddrBE(frame[4], frame[5])
	mode := LocoMode(frame[6])
	return Event{Kind: EventLocoModeReceived, LocoModeAddr: addr, LocoMode: mode}, true, nil
}

func parseTurnoutMode(frame []byte) (Event, bool, error) {
	if len(frame) < 7 {
		return Event{}, false, ErrFrameTooShort
	}
	addr := decodeAddrBE(frame[4], frame[5])
	mode := TurnoutMode(frame[6])
	return Event{Kind: EventTurnoutModeReceived, TurnoutModeAddr: addr, TurnoutMode: mode}, true, nil
}

func parseRBusData(frame []byte) (Event, bool, error) {
	if len(frame) < 15 {
		return Event{}, false, ErrFrameTooShort
	}
	data := RBusData{Group: frame[4]}
	copy(data.Bytes[:], frame[5:15])
	return Event{Kind: EventRBusDataReceived, RBusData: data}, true, nil
}

func parseSystemStateFrame(frame []byte, fw FirmwareVersion, hw HardwareType) (Event, bool, error) {
	if len(frame) < 16 {
		return Event{}, false, ErrFrameTooShort
	}
	s := SystemState{
		MainCurrentMA:   int16(binary.LittleEndian.Uint16(frame[4:6])),
		ProgCurrentMA:   int16(binary.LittleEndian.Uint16(frame[6:8])),
		FilteredMainMA:  int16(binary.LittleEndian.Uint16(frame[8:10])),
		TemperatureC:    int16(binary.LittleEndian.Uint16(frame[10:12])),
		SupplyVoltageMV: int16(binary.LittleEndian.Uint16(frame[12:14])),
		VccVoltageMV:    int16(binary.LittleEndian.Uint16(frame[14:16])),
	}
	if len(frame) > 16 {
		s.CentralState = CentralState(frame[16])
	}
	if len(frame) > 17 {
		s.CentralStateEx = CentralStateEx(frame[17])
	}
	if hw.IsSmall() {
		s.ProgCurrentMA = 0
	}
	if fw.AtLeast(1, 42) && len(frame) >= 20 {
		s.Capabilities = Capabilities(frame[19])
		s.CapabilitiesKnown = true
	}
	return Event{Kind: EventSystemStateChanged, SystemState: s}, true, nil
}

func parseRailComData(frame []byte) (Event, bool, error) {
	if len(frame) < 8 {
		return Event{}, false, ErrFrameTooShort
	}
	data := RailComData{
		Address:  decodeAddrBE(frame[4], frame[5]),
		SpeedKmh: frame[6],
		QoS:      frame[7],
	}
	if len(frame) > 8 {
		data.RawPayload = append([]byte{}, frame[8:]...)
	}
	return Event{Kind: EventRailComDataReceived, RailComData: data}, true, nil
}

// locoSlotStepTable maps the undocumented byte18 mode/step code to the
// (native steps, is-MM) pair it was reverse-engineered against on firmware
// 1.43 (§4.1, §9 Open Question (a)).
var locoSlotStepTable = map[byte]struct {
	steps NativeSpeedSteps
	isMM  bool
}{
	3:   {NativeSteps14, false},
	6:   {NativeSteps28, false},
	9:   {NativeSteps128, false},
	67:  {NativeSteps14, true},
	83:  {NativeSteps28, true},
	117: {NativeSteps128, true},
}

func parseLocoSlotInfo(frame []byte) (Event, bool, error) {
	if len(frame) < 24 {
		return Event{}, false, ErrFrameTooShort
	}
	info := LocoSlotInfo{
		Slot:    frame[7],
		Address: decodeAddrBE(frame[9], frame[10]),
		Speed:   frame[12] & 0x7F,
	}
	if entry, known := locoSlotStepTable[frame[18]]; known {
		info.NativeSteps = entry.steps
		info.IsMM = entry.isMM
	}
	// Open Question (b): byte14 bit 0x20 clear => forward.
	info.Direction = Direction(frame[14]&0x20 == 0)

	b15, b16, b17 := frame[15], frame[16], frame[17]
	if frame[13]&0x10 != 0 {
		b15 |= 0x80
	}
	if frame[13]&0x20 != 0 {
		b16 |= 0x80
	}
	if frame[13]&0x40 != 0 {
		b17 |= 0x80
	}
	info.Functions = uint32(b15)<<5 | uint32(b16)<<13 | uint32(b17)<<21

	return Event{Kind: EventLocoSlotInfoReceived, LocoSlotInfo: info}, true, nil
}

// parseXBus handles every message carried under the X-Bus envelope
// (headerXBus), verifying the trailing checksum before dispatch (§4.1, §7).
func parseXBus(frame []byte) (Event, bool, error) {
	if len(frame) < 6 {
		return Event{}, false, ErrFrameTooShort
	}
	body := frame[4 : len(frame)-1]
	checksum := frame[len(frame)-1]
	if xorSum(body) != checksum {
		logrus.WithFields(logrus.Fields{"expected": xorSum(body), "got": checksum}).
			Warn("z21: X-Bus checksum mismatch, dropping frame")
		return Event{}, false, ErrChecksumMismatch
	}

	xheader := body[0]
	switch xheader {
	case xheaderEmergencyStop:
		return Event{Kind: EventEmergencyStopReceived}, true, nil
	case xheaderTurnoutInfo:
		if len(frame) < 9 {
			return Event{}, false, ErrFrameTooShort
		}
		addr := decodeAddrBE(frame[5], frame[6])
		pos := TurnoutPosition(frame[7] & 0x03)
		return Event{Kind: EventTurnoutInfoReceived, TurnoutInfo: TurnoutInfo{Address: addr, Position: pos}}, true, nil
	case xheaderTrackPower:
		if len(frame) < 7 {
			return Event{}, false, ErrFrameTooShort
		}
		db0 := frame[5]
		if db0 == db0UnknownCommand {
			logrus.Warn("z21: station reported LAN_X_UNKNOWN_COMMAND")
			return Event{}, false, nil
		}
		power := TrackPowerOff
		if db0 == db0BcTrackPowerOn {
			power = TrackPowerOn
		}
		return Event{Kind: EventTrackPowerInfoReceived, TrackPower: power}, true, nil
	case xheaderFirmwareVersion:
		if len(frame) < 9 {
			return Event{}, false, ErrFrameTooShort
		}
		fw := FirmwareVersion{Major: bcdToDecimal(frame[6]), Minor: bcdToDecimal(frame[7])}
		return Event{Kind: EventFirmwareVersionReceived, FirmwareVersion: fw}, true, nil
	case xheaderLocoInfo:
		return parseLocoInfoXBus(frame)
	default:
		logrus.WithField("xheader", xheader).Debug("z21: unrecognized X-Bus message")
		return Event{}, false, ErrUnknownMessage
	}
}

func parseLocoInfoXBus(frame []byte) (Event, bool, error) {
	if len(frame) < 10 {
		return Event{}, false, ErrFrameTooShort
	}
	addr := decodeLocoAddrXBus(frame[5], frame[6])
	db0 := frame[7]
	db1 := frame[8]
	native := DecodeNativeSteps(db0)

	info := LocoInfo{
		Address:     addr,
		Busy:        db0&0x08 != 0,
		NativeSteps: native,
		Steps:       NormalizeSteps(native),
		Speed:       rocoNativeFromWire(db1&0x7F, native),
		Direction:   Direction(db1&0x80 != 0),
	}

	if len(frame) > 10 {
		db2 := frame[9]
		if db2&0x10 != 0 {
			info.Functions |= 1 << 0
		}
		info.Functions |= uint32(db2&0x0F) << 1
	}
	if len(frame) > 11 {
		info.Functions |= uint32(frame[10]) << 5
	}
	if len(frame) > 12 {
		info.Functions |= uint32(frame[11]) << 13
	}
	if len(frame) > 13 {
		info.Functions |= uint32(frame[12]) << 21
	}

	return Event{Kind: EventLocoInfoReceived, LocoInfo: info}, true, nil
}

// bcdToDecimal reads a byte whose hex digits already are the intended
// decimal digits (§4.1 "rendered as ... then parsed as major.minor").
func bcdToDecimal(b byte) byte {
	return (b>>4)*10 + (b & 0x0F)
}
