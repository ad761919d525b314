package z21

import "errors"

var (
	// ErrFrameTooShort is returned when a frame is shorter than the minimum
	// length for its declared message type (§4.1 "Reject too-short frames").
	ErrFrameTooShort = errors.New("z21: frame too short for its message type")
	// ErrChecksumMismatch is returned when an X-Bus frame's trailing XOR
	// checksum does not match the computed one (§4.1, §7).
	ErrChecksumMismatch = errors.New("z21: X-Bus checksum mismatch")
	// ErrUnknownMessage is returned for a header/X-header combination this
	// client does not recognize, and by the subscription ledger for an
	// unknown EventCategory.
	ErrUnknownMessage = errors.New("z21: unrecognized header/X-header combination")
	// ErrNotConnected is returned by operations that require an active session.
	ErrNotConnected = errors.New("z21: not connected")
	// ErrAlreadyConnected is returned by Connect when already connected.
	ErrAlreadyConnected = errors.New("z21: already connected")
	// ErrHandshakeTimeout is returned when a request (a connect handshake step
	// or a getter's round trip) does not receive its expected response within
	// the allotted time (§4.2, §7).
	ErrHandshakeTimeout = errors.New("z21: handshake step timed out")
	// ErrDiscoveryWhileConnected is returned by Discover when the client is
	// already connected to a station (§4.5 precondition).
	ErrDiscoveryWhileConnected = errors.New("z21: cannot discover while connected")
	// ErrInvalidSlot is returned for loco-slot-info requests outside 1..120.
	ErrInvalidSlot = errors.New("z21: slot must be in range 1..120")
	// ErrInvalidGroup is returned for R-Bus requests outside group 0..1.
	ErrInvalidGroup = errors.New("z21: R-Bus group must be 0 or 1")
)
