package osc

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

const bundleTagString = "#bundle"

// bundlePrefix is the 8-byte marker that opens every encoded bundle.
var bundlePrefix = []byte("#bundle\x00")

// Bundle represents an OSC bundle: the OSC-string "#bundle" followed by a
// time tag, followed by zero or more bundle elements, each of which is itself
// a Message or a nested Bundle. Elements keep their insertion order; nested
// bundles are never flattened.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Verify that Bundle implements the Packet interface.
var _ Packet = (*Bundle)(nil)

// NewBundle returns an empty bundle tagged to execute immediately.
func NewBundle() *Bundle {
	return &Bundle{Timetag: TimetagImmediate}
}

// NewBundleWithTime returns an empty bundle tagged for the given time.
func NewBundleWithTime(t time.Time) *Bundle {
	return &Bundle{Timetag: NewTimetagFromTime(t)}
}

// Append appends a Message or a nested Bundle to the bundle.
func (b *Bundle) Append(pck Packet) error {
	switch t := pck.(type) {
	case *Bundle, *Message:
		b.Elements = append(b.Elements, t)
		return nil
	default:
		return errors.Errorf("unsupported packet type %T: only Bundle and Message are supported", pck)
	}
}

// Equals reports whether b and other carry the same time tag and structurally
// equal elements in the same order.
func (b *Bundle) Equals(other *Bundle) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Timetag != other.Timetag || len(b.Elements) != len(other.Elements) {
		return false
	}
	for i, elem := range b.Elements {
		if !PacketsEqual(elem, other.Elements[i]) {
			return false
		}
	}
	return true
}

// MarshalBinary serializes the bundle in wire order: the "#bundle" marker,
// the 8-byte time tag, then each element prefixed with its own 4-byte length.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	data := new(bytes.Buffer)
	writePaddedString(bundleTagString, data)

	var tt [bit64Size]byte
	binary.BigEndian.PutUint64(tt[:], uint64(b.Timetag))
	data.Write(tt[:])

	for _, elem := range b.Elements {
		bb, err := elem.MarshalBinary()
		if err != nil {
			return nil, err
		}
		var l [bit32Size]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(bb)))
		data.Write(l[:])
		data.Write(bb)
	}
	return data.Bytes(), nil
}

// NewBundleFromData parses a raw datagram into a Bundle.
func NewBundleFromData(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	if len(data)%bit32Size != 0 {
		return errors.Wrapf(ErrTruncatedPacket, "datagram length %d not a multiple of 4", len(data))
	}
	if len(data) < len(bundlePrefix)+bit64Size {
		return errors.Wrapf(ErrTruncatedPacket, "bundle of %d bytes shorter than marker and time tag", len(data))
	}
	if !bytes.HasPrefix(data, bundlePrefix) {
		return errors.Wrapf(ErrInvalidAddress, "bad bundle marker %q", firstToken(data))
	}
	data = data[len(bundlePrefix):]

	b.Timetag = Timetag(binary.BigEndian.Uint64(data))
	b.Elements = nil
	data = data[bit64Size:]

	for len(data) > 0 {
		if len(data) < bit32Size {
			return errors.Wrapf(ErrTruncatedPacket, "dangling %d bytes where an element length belongs", len(data))
		}
		length := int(int32(binary.BigEndian.Uint32(data)))
		data = data[bit32Size:]
		if length < 0 || length > len(data) {
			return errors.Wrapf(ErrTruncatedPacket, "element length %d exceeds remaining %d bytes", length, len(data))
		}

		elem, err := ParsePacket(data[:length])
		if err != nil {
			return err
		}
		data = data[length:]
		if err := b.Append(elem); err != nil {
			return err
		}
	}
	return nil
}
