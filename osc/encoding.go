package osc

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	bit32Size = 4
	bit64Size = 8
)

// MaxPacketSize is the largest datagram this package will send: the maximum
// UDP payload over IPv4 (65535 minus the IP and UDP headers). Encoded packets
// exceeding it fail with ErrPayloadTooLarge instead of being fragmented.
const MaxPacketSize = 65507

// padBytesNeeded returns how many zero bytes fill n up to the next multiple
// of 4. Returns 0 when n is already aligned.
func padBytesNeeded(n int) int {
	return (4 - n%4) % 4
}

// readPaddedString reads a NUL-terminated, 4-byte aligned OSC string from the
// start of data. It returns the string and the total number of bytes the
// field occupies, padding included.
func readPaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos < 0 {
		return "", 0, errors.Wrap(ErrMalformedArgument, "unterminated string")
	}
	n := pos + 1 + padBytesNeeded(pos+1)
	if n > len(data) {
		return "", 0, errors.Wrapf(ErrMalformedArgument, "string field of %d bytes not padded within datagram", pos)
	}
	return string(data[:pos]), n, nil
}

// writePaddedString appends str to buf followed by one to four NUL bytes, so
// that the field length is a multiple of 4.
func writePaddedString(str string, buf *bytes.Buffer) int {
	buf.WriteString(str)
	pad := 1 + padBytesNeeded(len(str)+1)
	for i := 0; i < pad; i++ {
		buf.WriteByte(0)
	}
	return len(str) + pad
}

// readBlob reads a length-prefixed, 4-byte aligned OSC blob from the start of
// data, returning the payload copy and the total field size.
func readBlob(data []byte) ([]byte, int, error) {
	if len(data) < bit32Size {
		return nil, 0, errors.Wrap(ErrMalformedArgument, "short blob length prefix")
	}
	size := int(int32(binary.BigEndian.Uint32(data)))
	if size < 1 {
		return nil, 0, errors.Wrapf(ErrMalformedArgument, "invalid blob length %d", size)
	}
	if size > len(data)-bit32Size {
		return nil, 0, errors.Wrapf(ErrTruncatedPacket, "blob length %d exceeds remaining %d bytes", size, len(data)-bit32Size)
	}
	n := bit32Size + size + padBytesNeeded(size)
	if n > len(data) {
		return nil, 0, errors.Wrapf(ErrMalformedArgument, "blob of %d bytes not padded within datagram", size)
	}
	b := make([]byte, size)
	copy(b, data[bit32Size:])
	return b, n, nil
}

// writeBlob appends data to buf as an OSC blob: a 4-byte big-endian length,
// the payload, and zero padding up to the next multiple of 4.
func writeBlob(data []byte, buf *bytes.Buffer) (int, error) {
	if len(data) == 0 {
		return 0, errors.Wrap(ErrMalformedArgument, "empty blob")
	}
	var l [bit32Size]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(data)))
	buf.Write(l[:])
	buf.Write(data)
	pad := padBytesNeeded(len(data))
	for i := 0; i < pad; i++ {
		buf.WriteByte(0)
	}
	return bit32Size + len(data) + pad, nil
}
