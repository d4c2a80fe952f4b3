package osc

import (
	"bytes"
	"encoding"

	"github.com/pkg/errors"
)

// Packet is the unit of OSC transmission: a *Message or a *Bundle. The wire
// form self-describes the variant through its leading bytes, so decoding
// always yields the concrete type; downstream code switches on it.
type Packet interface {
	encoding.BinaryMarshaler
}

// ParsePacket parses a raw datagram into the packet variant its leading bytes
// declare: an address pattern beginning with '/' yields a *Message, the
// "#bundle" marker yields a *Bundle, anything else is rejected.
func ParsePacket(data []byte) (Packet, error) {
	switch {
	case len(data) == 0:
		return nil, errors.Wrap(ErrTruncatedPacket, "empty datagram")
	case data[0] == '/':
		return NewMessageFromData(data)
	case bytes.HasPrefix(data, bundlePrefix):
		return NewBundleFromData(data)
	default:
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", firstToken(data))
	}
}

// PacketsEqual reports structural equality of two packets of any variant.
// Packets of different variants are never equal.
func PacketsEqual(a, b Packet) bool {
	switch ta := a.(type) {
	case *Message:
		tb, ok := b.(*Message)
		return ok && ta.Equals(tb)
	case *Bundle:
		tb, ok := b.(*Bundle)
		return ok && ta.Equals(tb)
	default:
		return false
	}
}
