// internal/protocol/frame_test.go
package protocol

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_Layout(t *testing.T) {
	frame := BuildQuery(CmdVolume)

	require.Equal(t, []byte{FrameStart, Zone1, CmdVolume, 0x01, RequestMarker, FrameEnd}, frame)
}

func TestBuildKeypress_Layout(t *testing.T) {
	frame := BuildKeypress(RC5PowerToggle)

	require.Equal(t, []byte{FrameStart, Zone1, CmdSimulateRC5, 0x02, RC5System, RC5PowerToggle, FrameEnd}, frame)
}

func TestBuildSetVolume_Layout(t *testing.T) {
	frame := BuildSetVolume(42)

	require.Equal(t, []byte{FrameStart, Zone1, CmdVolume, 0x01, 42, FrameEnd}, frame)
}

// respond builds a response frame the way the device would answer a
// query: same opcode, answer byte, then payload.
func respond(opcode, answer byte, payload ...byte) []byte {
	b := []byte{FrameStart, Zone1, opcode, answer, byte(len(payload))}
	b = append(b, payload...)
	return append(b, FrameEnd)
}

func TestReadFrame_RoundTrip(t *testing.T) {
	// A query echoed back as a response keeps its structural fields.
	query := BuildQuery(CmdVolume)
	wire := respond(query[2], AnswerOK, query[4])

	frame, err := ReadFrame(bytes.NewReader(wire))
	require.NoError(t, err)

	assert.Equal(t, byte(CmdVolume), frame.Opcode)
	assert.Equal(t, byte(Zone1), frame.Zone)
	assert.Equal(t, []byte{RequestMarker}, frame.Payload)
	assert.True(t, frame.OK())
}

func TestReadFrame_Malformed(t *testing.T) {
	cases := []struct {
		name string
		wire []byte
	}{
		{"wrong start byte", []byte{0x99, Zone1, CmdVolume, AnswerOK, 0x01, 0x32, FrameEnd}},
		{"wrong end byte", []byte{FrameStart, Zone1, CmdVolume, AnswerOK, 0x01, 0x32, 0x99}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tc.wire))
			require.ErrorIs(t, err, ErrFrame)
			assert.NotErrorIs(t, err, ErrTimeout)
		})
	}
}

func TestReadFrame_DeclaredLengthExceedsStream(t *testing.T) {
	// Header declares 5 payload bytes, stream has 1 and then ends.
	wire := []byte{FrameStart, Zone1, CmdVolume, AnswerOK, 0x05, 0x32}

	_, err := ReadFrame(bytes.NewReader(wire))
	require.ErrorIs(t, err, ErrFrame)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestReadFrame_ClosedMidHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{FrameStart, Zone1}))
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestReadFrame_Timeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(20*time.Millisecond)))

	_, err := ReadFrame(client)
	require.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrFrame)
}

func TestReadFrame_EmptyPayload(t *testing.T) {
	wire := respond(CmdPower, AnswerOK)

	frame, err := ReadFrame(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Empty(t, frame.Payload)
}
