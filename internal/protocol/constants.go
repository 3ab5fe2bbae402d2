// internal/protocol/constants.go
package protocol

import "time"

// Wire framing constants.
// These values define the protocol and MUST NOT be configurable.

const (
	// FrameStart opens every request and response frame.
	FrameStart = 0x21

	// FrameEnd closes every request and response frame.
	FrameEnd = 0x0D

	// Zone1 addresses the primary zone. Secondary zones are out of scope.
	Zone1 = 0x01

	// RequestMarker is the single payload byte of a status query,
	// meaning "report the current value".
	RequestMarker = 0xF0

	// AnswerOK is the answer byte of a successful response.
	AnswerOK = 0x00
)

// ---- OPCODES ----

const (
	// CmdSimulateRC5 emulates a remote-control keypress.
	// Payload is always [RC5System, key].
	CmdSimulateRC5 = 0x08

	// CmdPower queries the power state (0x00 standby, 0x01 on).
	CmdPower = 0x00

	// CmdVolume queries the volume level, or sets it when the
	// payload carries a raw 0-99 value instead of RequestMarker.
	CmdVolume = 0x0D

	// CmdMute queries the mute state (0x00 muted, 0x01 not muted).
	CmdMute = 0x0E

	// CmdDirectMode queries analogue direct mode (0x01 on).
	CmdDirectMode = 0x0F

	// CmdDecode2ch queries the two-channel decode mode.
	CmdDecode2ch = 0x10

	// CmdDecodeMch queries the multi-channel decode mode.
	CmdDecodeMch = 0x11

	// CmdCurrentSource queries the selected input source.
	CmdCurrentSource = 0x1D

	// CmdAudioFormat queries the incoming audio format.
	CmdAudioFormat = 0x43

	// CmdSampleRate queries the incoming sample rate.
	CmdSampleRate = 0x44
)

// ---- RC5 KEY CODES ----

// RC5System is the system code carried as the first payload byte of
// every CmdSimulateRC5 frame.
const RC5System = 0x10

const (
	RC5PowerToggle = 0x0C
	RC5VolumeUp    = 0x10
	RC5VolumeDown  = 0x11
	RC5MuteToggle  = 0x0D
	RC5MuteOn      = 0x1A
	RC5MuteOff     = 0x78
)

// ---- VOLUME DOMAIN ----

// VolumeMax is the highest raw volume the device accepts.
const VolumeMax = 99

// ---- TRANSPORT DEFAULTS ----

const (
	// DefaultPort is the receiver's IP control port.
	DefaultPort = 50000

	// DefaultConnectTimeout bounds a single TCP connect attempt.
	DefaultConnectTimeout = 3 * time.Second

	// DefaultReadTimeout bounds one response frame read.
	DefaultReadTimeout = 3 * time.Second

	// DefaultProbeTimeout is the short deadline for the fast-fail
	// power probe during polling. A miss means unreachable/off,
	// not an error.
	DefaultProbeTimeout = 1 * time.Second
)
