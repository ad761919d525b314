package z21

// Event is the tagged union every parsed frame is turned into before
// dispatch (§9 "Dynamic dispatch over message variants"). Only the fields
// belonging to a given Kind are meaningful (none for EmergencyStopReceived,
// address plus mode for the loco-mode and turnout-mode kinds).
type EventKind int

const (
	EventBroadcastFlagsReceived EventKind = iota
	EventEmergencyStopReceived
	EventFirmwareVersionReceived
	EventHardwareInfoReceived
	EventLocoInfoReceived
	EventLocoSlotInfoReceived
	EventLocoModeReceived
	EventRailComDataReceived
	EventRBusDataReceived
	EventSerialNumberReceived
	EventSystemStateChanged
	EventTurnoutInfoReceived
	EventTrackPowerInfoReceived
	EventTurnoutModeReceived
	EventConnectionStateChanged
	EventZ21CodeReceived
)

func (k EventKind) String() string {
	names := [...]string{
		"BroadcastFlagsReceived", "EmergencyStopReceived", "FirmwareVersionReceived",
		"HardwareInfoReceived", "LocoInfoReceived", "LocoSlotInfoReceived",
		"LocoModeReceived", "RailComDataReceived", "RBusDataReceived",
		"SerialNumberReceived", "SystemStateChanged", "TurnoutInfoReceived",
		"TrackPowerInfoReceived", "TurnoutModeReceived", "ConnectionStateChanged",
		"Z21CodeReceived",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Event carries exactly the payload implied by its Kind.
type Event struct {
	Kind EventKind

	BroadcastFlags   BroadcastFlag
	FirmwareVersion  FirmwareVersion
	HardwareInfo     HardwareInfo
	LocoInfo         LocoInfo
	LocoSlotInfo     LocoSlotInfo
	LocoModeAddr     LocoAddr
	LocoMode         LocoMode
	RailComData      RailComData
	RBusData         RBusData
	SerialNumber     SerialNumber
	SystemState      SystemState
	TurnoutInfo      TurnoutInfo
	TrackPower       TrackPower
	TurnoutModeAddr  LocoAddr
	TurnoutMode      TurnoutMode
	ConnectionState  SessionState
	Z21Code          Z21Code
}

// Handler receives dispatched events. Subscribe/Unsubscribe own the
// add/remove side effects described in §9 "Events with add/remove side
// effects" — the subscription manager, not the handler, decides whether a
// broadcast-flag mask change is needed.
type Handler func(Event)

// Token identifies one subscription for later Unsubscribe.
type Token uint64
