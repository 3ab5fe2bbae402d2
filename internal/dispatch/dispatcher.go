// internal/dispatch/dispatcher.go
package dispatch

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/conn"
	"github.com/openavctl/lexibridge/internal/protocol"
)

// Dispatcher serializes one write followed by one blocking read per
// call. The protocol is strictly half-duplex: never two requests in
// flight on the same session.
type Dispatcher struct {
	cm          *conn.Manager
	readTimeout time.Duration
	log         *zap.Logger
}

// New wires a dispatcher onto a connection manager.
func New(cm *conn.Manager, readTimeout time.Duration, log *zap.Logger) *Dispatcher {
	if readTimeout <= 0 {
		readTimeout = protocol.DefaultReadTimeout
	}
	return &Dispatcher{cm: cm, readTimeout: readTimeout, log: log}
}

// Connect opens the underlying session.
func (d *Dispatcher) Connect() bool { return d.cm.Connect() }

// Disconnect closes the underlying session.
func (d *Dispatcher) Disconnect() { d.cm.Disconnect() }

// SendCommand writes frame and reads one response. Success means the
// device answered OK. A transport-level failure triggers exactly one
// reconnect-and-resend; anything after that is reported as failure.
func (d *Dispatcher) SendCommand(frame []byte) bool {
	resp, err := d.exchange(frame, d.readTimeout)
	if err != nil {
		return false
	}
	if !resp.OK() {
		d.log.Warn("command rejected",
			zap.Uint8("opcode", resp.Opcode), zap.Uint8("answer", resp.Answer))
		return false
	}
	return true
}

// SendQuery writes frame and returns the response payload, or nil on
// any failure. Queries fail routinely (device off, booting); nil means
// "no fresher data", never a fault to propagate.
func (d *Dispatcher) SendQuery(frame []byte) []byte {
	return d.SendQueryTimeout(frame, d.readTimeout)
}

// SendQueryTimeout is SendQuery with a caller-chosen read deadline,
// used for the fast-fail power probe.
func (d *Dispatcher) SendQueryTimeout(frame []byte, timeout time.Duration) []byte {
	resp, err := d.exchange(frame, timeout)
	if err != nil {
		return nil
	}
	if !resp.OK() {
		d.log.Debug("query not answered OK",
			zap.Uint8("opcode", resp.Opcode), zap.Uint8("answer", resp.Answer))
		return nil
	}
	return resp.Payload
}

// exchange performs the write-then-read pair, retrying once through a
// fresh session on a transport failure. Timeouts and framing errors
// are not retried: a silent device is a state, and a garbled response
// means the device already received the request.
func (d *Dispatcher) exchange(frame []byte, timeout time.Duration) (protocol.Frame, error) {
	if !d.cm.IsConnected() && !d.cm.Connect() {
		return protocol.Frame{}, errors.New("dispatch: not connected")
	}

	resp, err := d.roundTrip(frame, timeout)
	if err == nil {
		return resp, nil
	}

	if errors.Is(err, protocol.ErrTimeout) {
		d.log.Debug("no response within deadline", zap.Duration("timeout", timeout))
		d.cm.Disconnect()
		return protocol.Frame{}, err
	}

	// A malformed response means the write was delivered and the device
	// likely acted on it. Resending would execute the request twice, so
	// tear down and fail.
	if errors.Is(err, protocol.ErrFrame) {
		d.log.Warn("malformed response, not retrying", zap.Error(err))
		d.cm.Disconnect()
		return protocol.Frame{}, err
	}

	// Broken pipe, reset, or mid-frame close: tear down, reconnect
	// once, resend the same frame once.
	d.log.Warn("transport failure, retrying once", zap.Error(err))
	d.cm.Disconnect()
	if !d.cm.Connect() {
		return protocol.Frame{}, err
	}

	resp, err = d.roundTrip(frame, timeout)
	if err != nil {
		d.cm.Disconnect()
		return protocol.Frame{}, err
	}
	return resp, nil
}

func (d *Dispatcher) roundTrip(frame []byte, timeout time.Duration) (protocol.Frame, error) {
	c := d.cm.Conn()
	if c == nil {
		return protocol.Frame{}, errors.New("dispatch: no session")
	}

	deadline := time.Now().Add(timeout)
	if err := c.SetDeadline(deadline); err != nil {
		return protocol.Frame{}, err
	}

	if _, err := c.Write(frame); err != nil {
		return protocol.Frame{}, err
	}

	return protocol.ReadFrame(c)
}
