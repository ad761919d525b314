package z21

// Every builder is a pure function from typed arguments to a wire frame,
// generalizing the pattern of the teacher's buildPomReadPacket/
// buildProgWritePacket (length, then header, then body, then X-Bus checksum).

// BuildGetSerialNumber builds LAN_GET_SERIAL_NUMBER.
func BuildGetSerialNumber() []byte {
	return buildFrame(headerGetSerialNumber, nil)
}

// BuildGetHardwareInfo builds LAN_GET_HWINFO.
func BuildGetHardwareInfo() []byte {
	return buildFrame(headerGetHardwareInfo, nil)
}

// BuildGetCode builds LAN_GET_CODE (Z21 lock state).
func BuildGetCode() []byte {
	return buildFrame(headerGetCode, nil)
}

// BuildLogoff builds LAN_LOGOFF.
func BuildLogoff() []byte {
	return buildFrame(headerLogoff, nil)
}

// BuildSetBroadcastFlags builds LAN_SET_BROADCASTFLAGS.
func BuildSetBroadcastFlags(flags BroadcastFlag) []byte {
	payload := make([]byte, 4)
	putUint32LE(payload, uint32(flags))
	return buildFrame(headerSetBroadcastFlag, payload)
}

// BuildGetBroadcastFlags builds LAN_GET_BROADCASTFLAGS.
func BuildGetBroadcastFlags() []byte {
	return buildFrame(headerGetBroadcastFlag, nil)
}

// BuildGetLocoMode builds LAN_GET_LOCOMODE for addr.
func BuildGetLocoMode(addr LocoAddr) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildFrame(headerGetLocoMode, []byte{hi, lo})
}

// BuildSetLocoMode builds LAN_SET_LOCOMODE for addr.
func BuildSetLocoMode(addr LocoAddr, mode LocoMode) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildFrame(headerSetLocoMode, []byte{hi, lo, byte(mode)})
}

// BuildGetTurnoutInfo builds LAN_X_GET_TURNOUT_INFO for addr, answered by the
// same X-header (0x43) carrying the turnout's current position.
func BuildGetTurnoutInfo(addr LocoAddr) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildXBusFrame([]byte{xheaderTurnoutInfo, hi, lo})
}

// BuildGetTurnoutMode builds LAN_GET_TURNOUTMODE for addr.
func BuildGetTurnoutMode(addr LocoAddr) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildFrame(headerGetTurnoutMode, []byte{hi, lo})
}

// BuildSetTurnoutMode builds LAN_SET_TURNOUTMODE for addr.
func BuildSetTurnoutMode(addr LocoAddr, mode TurnoutMode) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildFrame(headerSetTurnoutMode, []byte{hi, lo, byte(mode)})
}

// BuildRBusGetData builds LAN_RMBUS_GETDATA for group (0 or 1).
func BuildRBusGetData(group byte) []byte {
	return buildFrame(headerRBusGetData, []byte{group})
}

// BuildSystemStateGetData builds LAN_SYSTEMSTATE_GETDATA.
func BuildSystemStateGetData() []byte {
	return buildFrame(headerSystemStateGet, nil)
}

// BuildRailComGetData builds LAN_RAILCOM_GETDATA for a specific loco address.
func BuildRailComGetData(addr LocoAddr) []byte {
	hi, lo := encodeAddrBE(addr)
	return buildFrame(headerRailComGet, []byte{hi, lo})
}

// BuildRailComGetDataNext builds the "next" variant of LAN_RAILCOM_GETDATA
// used by the polling cycle (§4.4): address 0 means "any".
func BuildRailComGetDataNext() []byte {
	return BuildRailComGetData(0)
}

// BuildLocoSlotInfoGet builds the undocumented loco-slot-info request, a
// plain (non-X-Bus) frame with header 0x00AF, for slot (1..120, §9 Open
// Question (a)).
func BuildLocoSlotInfoGet(slot byte) []byte {
	return buildFrame(headerLocoSlotInfo, []byte{slot})
}

// BuildSetTrackPowerOn builds LAN_X_SET_TRACK_POWER_ON.
func BuildSetTrackPowerOn() []byte {
	return buildXBusFrame([]byte{xheaderSetTrackPower, db0TrackPowerOn})
}

// BuildSetTrackPowerOff builds LAN_X_SET_TRACK_POWER_OFF.
func BuildSetTrackPowerOff() []byte {
	return buildXBusFrame([]byte{xheaderSetTrackPower, db0TrackPowerOff})
}

// BuildSetEmergencyStop builds LAN_X_SET_STOP.
func BuildSetEmergencyStop() []byte {
	return buildXBusFrame([]byte{xheaderEmergencyStop})
}

// BuildGetFirmwareVersion builds LAN_X_GET_FIRMWARE_VERSION.
func BuildGetFirmwareVersion() []byte {
	return buildXBusFrame([]byte{xheaderFirmwareVersion, db0GetFirmwareVersion})
}

// BuildGetLocoInfo builds LAN_X_GET_LOCO_INFO for addr.
func BuildGetLocoInfo(addr LocoAddr) []byte {
	msb, lsb := encodeLocoAddrXBus(addr)
	return buildXBusFrame([]byte{xheaderGetLocoInfo, db0GetLocoInfo, msb, lsb})
}

// BuildSetLocoDrive builds LAN_X_SET_LOCO_DRIVE. native is the target wire
// resolution and speed is given in that resolution's own range; it is
// clamped, not rescaled. No Märklin Motorola step conversion is applied.
func BuildSetLocoDrive(addr LocoAddr, speed byte, dir Direction, native NativeSpeedSteps) []byte {
	msb, lsb := encodeLocoAddrXBus(addr)
	nativeSpeed := nativeSpeedValue(speed, native)
	wire := rocoWireSpeed(nativeSpeed, native)
	db1 := wire & 0x7F
	if dir == Forward {
		db1 |= 0x80
	}
	return buildXBusFrame([]byte{xheaderSetLocoDrive, nativeStepsCode(native), msb, lsb, db1})
}

// BuildSetLocoFunction builds LAN_X_SET_LOCO_FUNCTION. The setter always
// toggles (§6 "set_loco_function(addr, fn_index) (toggles)").
func BuildSetLocoFunction(addr LocoAddr, fn byte) []byte {
	msb, lsb := encodeLocoAddrXBus(addr)
	dbFn := 0x80 | (fn & 0x3F) // switch-type 0b10 (toggle) in bits 7:6
	return buildXBusFrame([]byte{xheaderSetLocoFunction, db0SetLocoFunction, msb, lsb, dbFn})
}

// BuildSetTurnoutPosition builds LAN_X_SET_TURNOUT for one pulse phase.
// activate distinguishes the "on" pulse from the "off" pulse emitted 100ms
// apart by the session layer (§6).
func BuildSetTurnoutPosition(addr LocoAddr, position TurnoutPosition, activate bool) []byte {
	hi, lo := encodeAddrBE(addr)
	db := byte(0x80)
	if position == TurnoutPosition1 {
		db |= 0x02
	}
	if activate {
		db |= 0x01
	}
	return buildXBusFrame([]byte{xheaderSetTurnout, hi, lo, db})
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
