package z21

// Frame headers (2-byte little-endian on the wire). Names follow the Z21 LAN
// protocol's own LAN_* message names.
const (
	headerGeneral          uint16 = 0x0000 // reserved: no request built by this client uses a bare 0x0000 header
	headerGetCode          uint16 = 0x0018
	headerGetSerialNumber  uint16 = 0x0010
	headerGetHardwareInfo  uint16 = 0x001A
	headerLogoff           uint16 = 0x0030
	headerXBus             uint16 = 0x0040
	headerSetBroadcastFlag uint16 = 0x0050
	headerGetBroadcastFlag uint16 = 0x0051
	headerGetLocoMode      uint16 = 0x0060
	headerSetLocoMode      uint16 = 0x0061
	headerGetTurnoutMode   uint16 = 0x0070
	headerSetTurnoutMode   uint16 = 0x0071
	headerRBusDataChanged  uint16 = 0x0080
	headerRBusGetData      uint16 = 0x0081
	headerSystemStateResp  uint16 = 0x0084
	headerSystemStateGet   uint16 = 0x0085
	headerRailComChanged   uint16 = 0x0088
	headerRailComGet       uint16 = 0x0089
	headerLocoSlotInfo     uint16 = 0x00AF
)

// X-Bus sub-headers, carried as the first payload byte of a headerXBus frame.
const (
	xheaderEmergencyStop   byte = 0x81
	xheaderTurnoutInfo     byte = 0x43
	xheaderTrackPower      byte = 0x61
	xheaderSetTrackPower   byte = 0x21
	xheaderLocoInfo        byte = 0xEF
	xheaderFirmwareVersion byte = 0xF3
	xheaderGetLocoInfo     byte = 0xE3
	xheaderSetTurnout      byte = 0x53
	xheaderSetLocoDrive    byte = 0xE4
	xheaderSetLocoFunction byte = 0xE4 // shares the X-header with set-loco-drive; DB0 distinguishes them
	xheaderUnknownCommand  byte = 0x61
)

// DB0 sub-command bytes distinguishing messages that share an X-header.
const (
	db0TrackPowerOn       byte = 0x81
	db0TrackPowerOff      byte = 0x80
	db0GetFirmwareVersion byte = 0x0A
	db0GetLocoInfo        byte = 0xF0
	db0SetLocoFunction    byte = 0xF8
	db0UnknownCommand     byte = 0x82
)

// DB0 values carried by the inbound LAN_X_BC_TRACK_POWER broadcast. These are
// distinct from db0TrackPowerOn/Off above, which are outbound SET-command
// values on a different X-header (0x21 vs 0x61).
const (
	db0BcTrackPowerOff byte = 0x00
	db0BcTrackPowerOn  byte = 0x01
)

// NativeSpeedSteps, the wire-level speed step code carried in DB0 of
// LAN_X_SET_LOCO_DRIVE. Loco-info replies encode the resolution differently
// (see DecodeNativeSteps).
const (
	stepsCode14  byte = 0x10
	stepsCode28  byte = 0x12
	stepsCode128 byte = 0x13
)

// BroadcastFlag is a bitmask describing which asynchronous message
// categories the command station pushes to this client, per LAN_SET_BROADCASTFLAGS.
type BroadcastFlag uint32

const (
	FlagBasic           BroadcastFlag = 0x00000001
	FlagRBus            BroadcastFlag = 0x00000002
	FlagRailCom         BroadcastFlag = 0x00000004
	FlagFastClock       BroadcastFlag = 0x00000200
	FlagSystemState     BroadcastFlag = 0x00000100
	FlagAllLocoInfo     BroadcastFlag = 0x00010000
	FlagLocoNetGeneric  BroadcastFlag = 0x00020000
	FlagLocoNetLocos    BroadcastFlag = 0x00040000
	FlagLocoNetSwitches BroadcastFlag = 0x00080000
	FlagLocoNetDetector BroadcastFlag = 0x00100000
	FlagCanBooster      BroadcastFlag = 0x00200000
	FlagAllRailCom      BroadcastFlag = 0x00400000
)

// EventCategory names one of the subscription ledger's rows (§3 "Subscription
// ledger"). Each category maps to its own broadcast flag; RailComSubscribed
// also gates the RailCom polling timer (§4.3).
type EventCategory string

const (
	CategoryBasic             EventCategory = "basic"
	CategoryRBus              EventCategory = "rbus"
	CategoryRailComSubscribed EventCategory = "railcom_subscribed"
	CategoryFastClock         EventCategory = "fast_clock"
	CategorySystemState       EventCategory = "system_state"
	CategoryAllLocoInfo       EventCategory = "all_loco_info"
	CategoryCanBooster        EventCategory = "can_booster"
	CategoryAllRailCom        EventCategory = "all_railcom"
	CategoryLocoNetGeneric    EventCategory = "loconet_generic"
	CategoryLocoNetLocos      EventCategory = "loconet_locos"
	CategoryLocoNetSwitches   EventCategory = "loconet_switches"
	CategoryLocoNetDetector   EventCategory = "loconet_detector"
)

// categoryRule pairs a category's broadcast flag with a guard reporting
// whether firmware satisfies the category's subscription precondition.
// AllLocoInfo requires firmware >= 1.20 (§4.3).
type categoryRule struct {
	flag  BroadcastFlag
	guard func(fw FirmwareVersion) bool
}

var alwaysAllowed = func(FirmwareVersion) bool { return true }

var categoryRules = map[EventCategory]categoryRule{
	CategoryBasic:             {flag: FlagBasic, guard: alwaysAllowed},
	CategoryRBus:              {flag: FlagRBus, guard: alwaysAllowed},
	CategoryRailComSubscribed: {flag: FlagRailCom, guard: alwaysAllowed},
	CategoryFastClock:         {flag: FlagFastClock, guard: alwaysAllowed},
	CategorySystemState:       {flag: FlagSystemState, guard: alwaysAllowed},
	CategoryAllLocoInfo:       {flag: FlagAllLocoInfo, guard: func(fw FirmwareVersion) bool { return fw.AtLeast(1, 20) }},
	CategoryCanBooster:        {flag: FlagCanBooster, guard: alwaysAllowed},
	CategoryAllRailCom:        {flag: FlagAllRailCom, guard: alwaysAllowed},
	CategoryLocoNetGeneric:    {flag: FlagLocoNetGeneric, guard: alwaysAllowed},
	CategoryLocoNetLocos:      {flag: FlagLocoNetLocos, guard: alwaysAllowed},
	CategoryLocoNetSwitches:   {flag: FlagLocoNetSwitches, guard: alwaysAllowed},
	CategoryLocoNetDetector:   {flag: FlagLocoNetDetector, guard: alwaysAllowed},
}

// DefaultPort is the Z21's default UDP port, used both for the local bind and
// the remote endpoint (§6).
const DefaultPort uint16 = 21105

// DiscoveryBroadcastAddr is the subnet-wide broadcast address discovery sends to.
const DiscoveryBroadcastAddr = "255.255.255.255"
