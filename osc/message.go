package osc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Message represents a single OSC message: an OSC address pattern and zero or
// more arguments. The argument order is significant; it determines the type
// tag string on the wire.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Message implements the Packet interface.
var _ Packet = (*Message)(nil)

// NewMessage returns a new Message for the given OSC address pattern. The
// argument types are not validated here; Append them instead when validation
// is wanted.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Append appends the given arguments to the argument list, rejecting values
// of unsupported types before anything is appended.
func (msg *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return errors.Wrapf(ErrUnknownTypeTag, "unsupported argument type %T", a)
		}
	}
	msg.Arguments = append(msg.Arguments, args...)
	return nil
}

// Argument returns the argument at index i.
func (msg *Message) Argument(i int) interface{} {
	return msg.Arguments[i]
}

// SetArgument replaces the argument at index i in place. Arguments can be
// replaced and appended but not inserted mid-sequence.
func (msg *Message) SetArgument(i int, arg interface{}) error {
	if i < 0 || i >= len(msg.Arguments) {
		return errors.Errorf("argument index %d out of range [0:%d]", i, len(msg.Arguments))
	}
	if ToTypeTag(arg) == TypeInvalid {
		return errors.Wrapf(ErrUnknownTypeTag, "unsupported argument type %T", arg)
	}
	msg.Arguments[i] = arg
	return nil
}

// CountArguments returns the number of arguments.
func (msg *Message) CountArguments() int {
	return len(msg.Arguments)
}

// Clear clears the OSC address and all arguments.
func (msg *Message) Clear() {
	msg.Address = ""
	msg.ClearData()
}

// ClearData removes all arguments.
func (msg *Message) ClearData() {
	msg.Arguments = msg.Arguments[:0]
}

// Equals reports whether msg and m carry the same address and value-wise the
// same argument sequence.
func (msg *Message) Equals(m *Message) bool {
	if msg == nil || m == nil {
		return msg == m
	}
	if msg.Address != m.Address || len(msg.Arguments) != len(m.Arguments) {
		return false
	}
	for i, arg := range msg.Arguments {
		if !argumentsEqual(arg, m.Arguments[i]) {
			return false
		}
	}
	return true
}

func argumentsEqual(a, b interface{}) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	// Every other supported argument type is comparable.
	return a == b
}

// Match reports whether the message's address pattern matches the given
// address. The match is case sensitive.
func (msg *Message) Match(addr string) bool {
	exp, err := getRegEx(msg.Address)
	if err != nil {
		return false
	}
	return exp.MatchString(addr)
}

// TypeTags returns the type tag string for the message, ',' prefix included.
func (msg *Message) TypeTags() (string, error) {
	if msg == nil {
		return "", errors.New("message is nil")
	}
	tags := make([]byte, 0, len(msg.Arguments)+1)
	tags = append(tags, ',')
	for _, arg := range msg.Arguments {
		t := ToTypeTag(arg)
		if t == TypeInvalid {
			return "", errors.Wrapf(ErrUnknownTypeTag, "unsupported argument type %T", arg)
		}
		tags = append(tags, byte(t))
	}
	return string(tags), nil
}

// String implements the fmt.Stringer interface.
func (msg *Message) String() string {
	if msg == nil {
		return ""
	}
	tags, _ := msg.TypeTags()

	var sb strings.Builder
	sb.WriteString(msg.Address)
	sb.WriteByte(' ')
	sb.WriteString(tags)
	for _, arg := range msg.Arguments {
		switch t := arg.(type) {
		case nil:
			sb.WriteString(" Nil")
		case Impulse:
			sb.WriteString(" Impulse")
		case []byte:
			fmt.Fprintf(&sb, " blob[%d]", len(t))
		case Timetag:
			fmt.Fprintf(&sb, " %d", uint64(t))
		case Char:
			fmt.Fprintf(&sb, " %q", byte(t))
		default:
			fmt.Fprintf(&sb, " %v", arg)
		}
	}
	return sb.String()
}

// MarshalBinary serializes the message in wire order: the address pattern,
// the type tag string, then the encoded arguments.
func (msg *Message) MarshalBinary() ([]byte, error) {
	if !strings.HasPrefix(msg.Address, "/") {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", msg.Address)
	}

	data := new(bytes.Buffer)
	writePaddedString(msg.Address, data)

	typetags, err := msg.TypeTags()
	if err != nil {
		return nil, err
	}
	writePaddedString(typetags, data)

	for _, arg := range msg.Arguments {
		if err := writeArgument(arg, data); err != nil {
			return nil, err
		}
	}
	return data.Bytes(), nil
}

// NewMessageFromData parses a raw datagram into a Message.
func NewMessageFromData(data []byte) (*Message, error) {
	msg := &Message{}
	if err := msg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. An
// absent type tag string is accepted as a zero-argument message.
func (msg *Message) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(ErrTruncatedPacket, "empty datagram")
	}
	if data[0] != '/' {
		return errors.Wrapf(ErrInvalidAddress, "%q", firstToken(data))
	}
	if len(data)%bit32Size != 0 {
		return errors.Wrapf(ErrTruncatedPacket, "datagram length %d not a multiple of 4", len(data))
	}

	addr, n, err := readPaddedString(data)
	if err != nil {
		return errors.WithMessage(err, "read address")
	}
	msg.Address = addr
	msg.Arguments = nil

	return msg.readArguments(data[n:])
}

// readArguments decodes the type tag string and one argument per tag.
func (msg *Message) readArguments(data []byte) error {
	if len(data) == 0 {
		// Zero-argument message without a type tag string.
		return nil
	}
	typetags, n, err := readPaddedString(data)
	if err != nil {
		return errors.WithMessage(err, "read type tags")
	}
	if len(typetags) == 0 {
		return nil
	}
	if typetags[0] != ',' {
		return errors.Wrapf(ErrMalformedArgument, "type tag string %q missing ',' prefix", typetags)
	}
	data = data[n:]

	msg.Arguments = make([]interface{}, 0, len(typetags)-1)
	for _, c := range typetags[1:] {
		arg, n, err := readArgument(TypeTag(c), data)
		if err != nil {
			return errors.WithMessagef(err, "read argument %d", len(msg.Arguments))
		}
		msg.Arguments = append(msg.Arguments, arg)
		data = data[n:]
	}
	return nil
}

// firstToken returns the bytes up to the first NUL, for error messages.
func firstToken(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}
