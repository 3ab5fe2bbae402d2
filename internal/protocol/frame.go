// internal/protocol/frame.go
package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// Frame is one parsed response.
// Request frames are built directly as byte slices; only responses
// carry the answer byte and are worth a structured form.
type Frame struct {
	Zone    byte
	Opcode  byte
	Answer  byte
	Payload []byte
}

// OK reports whether the device accepted the request.
func (f Frame) OK() bool {
	return f.Answer == AnswerOK
}

// The three read outcomes callers must be able to tell apart.
var (
	// ErrTimeout: no complete frame arrived within the deadline.
	ErrTimeout = errors.New("protocol: response timeout")

	// ErrIncomplete: the peer closed the stream mid-frame.
	ErrIncomplete = errors.New("protocol: stream closed mid-frame")

	// ErrFrame: the bytes on the wire violate the framing rules.
	ErrFrame = errors.New("protocol: malformed frame")
)

// BuildCommand builds a request frame that carries no answer byte.
// Layout: start, zone, opcode, length, payload..., end.
func BuildCommand(opcode byte, payload ...byte) []byte {
	frame := make([]byte, 0, 5+len(payload))
	frame = append(frame, FrameStart, Zone1, opcode, byte(len(payload)))
	frame = append(frame, payload...)
	return append(frame, FrameEnd)
}

// BuildKeypress builds an RC5 keypress simulation command.
func BuildKeypress(key byte) []byte {
	return BuildCommand(CmdSimulateRC5, RC5System, key)
}

// BuildQuery builds a status query whose single payload byte asks for
// the current value.
func BuildQuery(opcode byte) []byte {
	return BuildCommand(opcode, RequestMarker)
}

// BuildSetVolume builds the absolute volume command.
// The caller validates the 0-99 domain before any I/O.
func BuildSetVolume(volume byte) []byte {
	return BuildCommand(CmdVolume, volume)
}

// ReadFrame reads exactly one response frame from r.
// Deadlines are the caller's job (set on the net.Conn before calling).
//
// Response layout: start, zone, opcode, answer, length, payload..., end.
// Returns ErrTimeout, ErrIncomplete or a wrapped ErrFrame; the three
// stay distinguishable with errors.Is.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, readErr(err)
	}

	if header[0] != FrameStart {
		return Frame{}, fmt.Errorf("%w: bad start byte 0x%02X", ErrFrame, header[0])
	}

	// Payload plus the end byte. A stream that ends here means the
	// declared length exceeds the available bytes: a framing violation,
	// not a transport outcome.
	payloadLen := int(header[4])
	rest := make([]byte, payloadLen+1)
	if _, err := io.ReadFull(r, rest); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, fmt.Errorf("%w: declared length %d exceeds available bytes", ErrFrame, payloadLen)
		}
		return Frame{}, readErr(err)
	}

	if rest[payloadLen] != FrameEnd {
		return Frame{}, fmt.Errorf("%w: bad end byte 0x%02X", ErrFrame, rest[payloadLen])
	}

	return Frame{
		Zone:    header[1],
		Opcode:  header[2],
		Answer:  header[3],
		Payload: rest[:payloadLen],
	}, nil
}

// readErr maps raw I/O failures onto the protocol taxonomy.
func readErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrIncomplete
	}
	return fmt.Errorf("%w: %v", ErrIncomplete, err)
}
