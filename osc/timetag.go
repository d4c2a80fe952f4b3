package osc

import (
	"encoding/binary"
	"time"
)

const secondsFrom1900To1970 = 2208988800

// TimetagImmediate is the reserved time tag value of 63 zero bits followed by
// a one, meaning "execute immediately".
const TimetagImmediate Timetag = 1

// Timetag represents an OSC time tag: a 64-bit fixed point number whose first
// 32 bits count seconds since midnight on January 1, 1900, and whose last 32
// bits hold the fractional part of a second, as in NTP timestamps.
type Timetag uint64

// NewTimetag returns the "immediately" time tag.
func NewTimetag() Timetag {
	return TimetagImmediate
}

// NewTimetagFromTime converts t into an OSC time tag.
func NewTimetagFromTime(t time.Time) Timetag {
	secs := uint64(t.Unix() + secondsFrom1900To1970)
	frac := (uint64(t.Nanosecond()) << 32) / uint64(time.Second)
	return Timetag(secs<<32 | frac)
}

// Immediate reports whether the tag is the "immediately" sentinel.
func (t Timetag) Immediate() bool {
	return t == TimetagImmediate
}

// Time converts the time tag back into a time.Time. The result for the
// immediate sentinel is not meaningful; check Immediate first.
func (t Timetag) Time() time.Time {
	secs := int64(t>>32) - secondsFrom1900To1970
	nsec := (uint64(t&0xffffffff) * uint64(time.Second)) >> 32
	return time.Unix(secs, int64(nsec))
}

// SecondsSinceEpoch returns the first 32 bits: whole seconds since midnight
// 1900.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return uint32(t >> 32)
}

// FractionalSecond returns the last 32 bits: the fractional part of a second.
func (t Timetag) FractionalSecond() uint32 {
	return uint32(t)
}

// ExpiresIn returns the duration until the tagged time. It returns zero for
// the immediate sentinel and for tags in the past.
func (t Timetag) ExpiresIn() time.Duration {
	if t <= TimetagImmediate {
		return 0
	}
	d := time.Until(t.Time())
	if d < 0 {
		return 0
	}
	return d
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (t Timetag) MarshalBinary() ([]byte, error) {
	b := make([]byte, bit64Size)
	binary.BigEndian.PutUint64(b, uint64(t))
	return b, nil
}
