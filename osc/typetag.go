package osc

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// TypeTag is the single character identifying an argument's wire type.
type TypeTag rune

const (
	TypeInt32      TypeTag = 'i'
	TypeUint32     TypeTag = 'u'
	TypeInt64      TypeTag = 'h'
	TypeFloat32    TypeTag = 'f'
	TypeFloat64    TypeTag = 'd'
	TypeString     TypeTag = 's'
	TypeUTF8String TypeTag = 'S'
	TypeBlob       TypeTag = 'b'
	TypeTimetag    TypeTag = 't'
	TypeChar       TypeTag = 'c'
	TypeColor      TypeTag = 'r'
	TypeMidi       TypeTag = 'm'
	TypeTrue       TypeTag = 'T'
	TypeFalse      TypeTag = 'F'
	TypeNil        TypeTag = 'N'
	TypeImpulse    TypeTag = 'I'
	TypeInvalid    TypeTag = 0
)

// Char is a single ASCII character argument ('c'). On the wire it occupies a
// full 4-byte cell: the character byte followed by three zero bytes.
type Char byte

// Color is the 32-bit RGBA color argument ('r'), one byte per channel.
type Color struct {
	R, G, B, A uint8
}

// Midi is the 4-byte MIDI message argument ('m'): the port id, the status
// byte and two data bytes, carried opaquely.
type Midi struct {
	Port, Status, Data1, Data2 uint8
}

// Impulse is the zero-payload "bang" argument ('I'), called Infinitum in the
// OSC 1.0 specification. Its value is carried entirely by the type tag.
type Impulse struct{}

// ToTypeTag returns the OSC type tag for the given argument value, or
// TypeInvalid if the value's type is unsupported.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	case nil:
		return TypeNil
	case int32:
		return TypeInt32
	case uint32:
		return TypeUint32
	case int64:
		return TypeInt64
	case float32:
		return TypeFloat32
	case float64:
		return TypeFloat64
	case string:
		return TypeString
	case []byte:
		return TypeBlob
	case Timetag:
		return TypeTimetag
	case Char:
		return TypeChar
	case Color:
		return TypeColor
	case Midi:
		return TypeMidi
	case Impulse:
		return TypeImpulse
	default:
		return TypeInvalid
	}
}

// writeArgument appends the wire form of arg to buf. Arguments whose value is
// implied by the type tag alone (true, false, nil, Impulse) write nothing.
func writeArgument(arg interface{}, buf *bytes.Buffer) error {
	var b [bit64Size]byte
	switch t := arg.(type) {
	case bool, nil, Impulse:
		return nil
	case int32:
		binary.BigEndian.PutUint32(b[:bit32Size], uint32(t))
		buf.Write(b[:bit32Size])
	case uint32:
		binary.BigEndian.PutUint32(b[:bit32Size], t)
		buf.Write(b[:bit32Size])
	case int64:
		binary.BigEndian.PutUint64(b[:], uint64(t))
		buf.Write(b[:])
	case float32:
		binary.BigEndian.PutUint32(b[:bit32Size], math.Float32bits(t))
		buf.Write(b[:bit32Size])
	case float64:
		binary.BigEndian.PutUint64(b[:], math.Float64bits(t))
		buf.Write(b[:])
	case string:
		writePaddedString(t, buf)
	case []byte:
		if _, err := writeBlob(t, buf); err != nil {
			return err
		}
	case Timetag:
		binary.BigEndian.PutUint64(b[:], uint64(t))
		buf.Write(b[:])
	case Char:
		buf.WriteByte(byte(t))
		buf.Write([]byte{0, 0, 0})
	case Color:
		buf.Write([]byte{t.R, t.G, t.B, t.A})
	case Midi:
		buf.Write([]byte{t.Port, t.Status, t.Data1, t.Data2})
	default:
		return errors.Wrapf(ErrUnknownTypeTag, "unsupported argument type %T", arg)
	}
	return nil
}

// readArgument decodes one argument identified by tag from the start of data,
// returning the native value and the number of bytes consumed.
func readArgument(tag TypeTag, data []byte) (interface{}, int, error) {
	switch tag {
	case TypeTrue:
		return true, 0, nil
	case TypeFalse:
		return false, 0, nil
	case TypeNil:
		return nil, 0, nil
	case TypeImpulse:
		return Impulse{}, 0, nil
	case TypeInt32:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return int32(binary.BigEndian.Uint32(data)), bit32Size, nil
	case TypeUint32:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return binary.BigEndian.Uint32(data), bit32Size, nil
	case TypeInt64:
		if err := need(tag, data, bit64Size); err != nil {
			return nil, 0, err
		}
		return int64(binary.BigEndian.Uint64(data)), bit64Size, nil
	case TypeFloat32:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(data)), bit32Size, nil
	case TypeFloat64:
		if err := need(tag, data, bit64Size); err != nil {
			return nil, 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), bit64Size, nil
	case TypeString, TypeUTF8String:
		s, n, err := readPaddedString(data)
		if err != nil {
			return nil, 0, err
		}
		return s, n, nil
	case TypeBlob:
		b, n, err := readBlob(data)
		if err != nil {
			return nil, 0, err
		}
		return b, n, nil
	case TypeTimetag:
		if err := need(tag, data, bit64Size); err != nil {
			return nil, 0, err
		}
		return Timetag(binary.BigEndian.Uint64(data)), bit64Size, nil
	case TypeChar:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return Char(data[0]), bit32Size, nil
	case TypeColor:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return Color{R: data[0], G: data[1], B: data[2], A: data[3]}, bit32Size, nil
	case TypeMidi:
		if err := need(tag, data, bit32Size); err != nil {
			return nil, 0, err
		}
		return Midi{Port: data[0], Status: data[1], Data1: data[2], Data2: data[3]}, bit32Size, nil
	default:
		return nil, 0, errors.Wrapf(ErrUnknownTypeTag, "%q", tag)
	}
}

func need(tag TypeTag, data []byte, n int) error {
	if len(data) < n {
		return errors.Wrapf(ErrMalformedArgument, "%q needs %d bytes, %d remain", tag, n, len(data))
	}
	return nil
}
