package osc

import (
	"io"

	"github.com/Lobaro/slip"
	"github.com/pkg/errors"
)

// StreamConn exchanges OSC packets over a byte stream, delimiting datagrams
// with SLIP framing (RFC 1055). It suits serial links, pipes and other
// transports that preserve bytes but not message boundaries. UDP remains the
// primary transport; StreamConn exists for peers reachable only through a
// stream.
type StreamConn struct {
	r *slip.Reader
	w *slip.Writer
	c io.Closer
}

// NewStreamConn wraps rw in SLIP framing.
func NewStreamConn(rw io.ReadWriteCloser) *StreamConn {
	return &StreamConn{
		r: slip.NewReader(rw),
		w: slip.NewWriter(rw),
		c: rw,
	}
}

// Send encodes the packet and writes it as one SLIP frame.
func (sc *StreamConn) Send(packet Packet) error {
	data, err := packet.MarshalBinary()
	if err != nil {
		return errors.WithMessage(err, "encode packet")
	}
	if err := sc.w.WritePacket(data); err != nil {
		return errors.Wrap(err, "write frame")
	}
	return nil
}

// Receive blocks until one SLIP frame arrives and decodes it as a Packet.
func (sc *StreamConn) Receive() (Packet, error) {
	data, _, err := sc.r.ReadPacket()
	if err != nil {
		return nil, errors.Wrap(err, "read frame")
	}
	return ParsePacket(data)
}

// Close closes the underlying stream.
func (sc *StreamConn) Close() error {
	return sc.c.Close()
}
