package z21

// DecodeNativeSteps maps DB0's low 3 bits of a loco-info frame to the native
// step resolution (§4.1 "Speed steps from DB0 low 3 bits").
func DecodeNativeSteps(db0Low3 byte) NativeSpeedSteps {
	switch db0Low3 & 0x07 {
	case 0:
		return NativeSteps14
	case 2:
		return NativeSteps28
	case 4:
		return NativeSteps128
	default:
		return NativeStepsUnknown
	}
}

func nativeStepsCode(n NativeSpeedSteps) byte {
	switch n {
	case NativeSteps14:
		return stepsCode14
	case NativeSteps28:
		return stepsCode28
	default:
		return stepsCode128
	}
}

// NormalizeSteps folds the native wire resolution down to the caller-facing
// SpeedSteps view (§6 "critical"): every native resolution maps to the
// numerically equal normalized one, Unknown stays Unknown.
func NormalizeSteps(n NativeSpeedSteps) SpeedSteps {
	switch n {
	case NativeSteps14:
		return SpeedSteps14
	case NativeSteps28:
		return SpeedSteps28
	case NativeSteps128:
		return SpeedSteps128
	default:
		return SpeedStepsUnknown
	}
}

// nativeSpeedValue clamps a caller-supplied speed, already expressed in the
// given target resolution's own range (1 reserved for emergency stop), to
// that resolution's valid maximum (§6: SetLocoDrive's speed is "a normalized
// value in the caller's chosen native step resolution" — the resolution
// named by target, not a separate common scale to convert from).
func nativeSpeedValue(speed byte, target NativeSpeedSteps) byte {
	switch target {
	case NativeSteps14:
		return clampByte(speed, 14)
	case NativeSteps28:
		return clampByte(speed, 28)
	default:
		return clampByte(speed, 126)
	}
}

func clampByte(v, max byte) byte {
	if v > max {
		return max
	}
	return v
}

// rocoWireSpeed maps a numeric native speed value (as produced by
// nativeSpeedValue, or read directly off the wire) into the actual
// LAN_X_SET_LOCO_DRIVE DB1 speed field — the "Roco reverse-lookup table"
// (§6) that accounts for the 28-step mode's interleaved intermediate-step
// bit. 14 and 128 step modes are a direct linear encoding.
func rocoWireSpeed(native byte, steps NativeSpeedSteps) byte {
	if steps != NativeSteps28 {
		return native
	}
	if native == 0 || native == 1 {
		return native
	}
	v := native + 1
	return (v >> 1) | ((v & 1) << 4)
}

// rocoNativeFromWire reverses rocoWireSpeed, recovering the linear native
// speed value from the wire-encoded DB1 byte.
func rocoNativeFromWire(wire byte, steps NativeSpeedSteps) byte {
	if steps != NativeSteps28 {
		return wire
	}
	if wire == 0 || wire == 1 {
		return wire
	}
	v := ((wire & 0x0F) << 1) | ((wire >> 4) & 0x01)
	if v == 0 {
		return 0
	}
	return v - 1
}
