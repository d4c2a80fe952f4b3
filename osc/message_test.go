package osc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageGoldenBytes(t *testing.T) {
	msg := NewMessage("/debug")
	require.NoError(t, msg.Append("hello"))

	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		'/', 'd', 'e', 'b', 'u', 'g', 0, 0,
		',', 's', 0, 0,
		'h', 'e', 'l', 'l', 'o', 0, 0, 0,
	}, data)

	back, err := NewMessageFromData(data)
	require.NoError(t, err)
	assert.True(t, msg.Equals(back))
}

func TestMessageRoundTripAllTypes(t *testing.T) {
	msg := NewMessage("/all/types")
	require.NoError(t, msg.Append(
		int32(-1),
		uint32(7),
		int64(1<<40),
		float32(1.5),
		float64(-2.25),
		"str",
		[]byte{1, 2, 3},
		Timetag(0x83aa7e80_00000000),
		Char('q'),
		Color{R: 1, G: 2, B: 3, A: 4},
		Midi{Port: 0, Status: 0x80, Data1: 60, Data2: 0},
		true,
		false,
		nil,
		Impulse{},
	))

	tags, err := msg.TypeTags()
	require.NoError(t, err)
	assert.Equal(t, ",iuhfdsbtcrmTFNI", tags)

	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	assert.Zero(t, len(data)%4, "encoded length must be 4-byte aligned")

	back, err := NewMessageFromData(data)
	require.NoError(t, err)
	assert.True(t, msg.Equals(back))
}

func TestMessageZeroArguments(t *testing.T) {
	msg := NewMessage("/ping")
	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	// A bare ',' type tag string is always emitted.
	assert.Equal(t, []byte{
		'/', 'p', 'i', 'n', 'g', 0, 0, 0,
		',', 0, 0, 0,
	}, data)

	back, err := NewMessageFromData(data)
	require.NoError(t, err)
	assert.Equal(t, 0, back.CountArguments())
}

func TestMessageDecodeWithoutTypeTagString(t *testing.T) {
	// Some senders omit the type tag string entirely for argument-less
	// messages; the address alone must decode.
	back, err := NewMessageFromData([]byte{'/', 'o', 'k', 0})
	require.NoError(t, err)
	assert.Equal(t, "/ok", back.Address)
	assert.Equal(t, 0, back.CountArguments())
}

func TestMessageAppendRejectsUnsupported(t *testing.T) {
	msg := NewMessage("/x")
	err := msg.Append(int32(1), int(2))
	assert.True(t, errors.Is(err, ErrUnknownTypeTag))
	assert.Equal(t, 0, msg.CountArguments(), "nothing appended on failure")
}

func TestMessageSetArgument(t *testing.T) {
	msg := NewMessage("/x", int32(1), int32(2))
	require.NoError(t, msg.SetArgument(1, "two"))
	assert.Equal(t, "two", msg.Argument(1))

	assert.Error(t, msg.SetArgument(2, int32(3)), "out of range")
	assert.Error(t, msg.SetArgument(-1, int32(3)))
	assert.True(t, errors.Is(msg.SetArgument(0, uint64(9)), ErrUnknownTypeTag))
}

func TestMessageClear(t *testing.T) {
	msg := NewMessage("/x", int32(1))
	msg.ClearData()
	assert.Equal(t, "/x", msg.Address)
	assert.Equal(t, 0, msg.CountArguments())

	msg = NewMessage("/x", int32(1))
	msg.Clear()
	assert.Equal(t, "", msg.Address)
	assert.Equal(t, 0, msg.CountArguments())
}

func TestMessageEquals(t *testing.T) {
	a := NewMessage("/m", int32(1), []byte{1, 2}, "s")
	b := NewMessage("/m", int32(1), []byte{1, 2}, "s")
	assert.True(t, a.Equals(b))

	c := NewMessage("/m", int32(1), []byte{1, 3}, "s")
	assert.False(t, a.Equals(c))

	d := NewMessage("/other", int32(1), []byte{1, 2}, "s")
	assert.False(t, a.Equals(d))

	e := NewMessage("/m", int32(1), []byte{1, 2})
	assert.False(t, a.Equals(e))
}

func TestMessageMatch(t *testing.T) {
	tests := []struct {
		pattern string
		addr    string
		want    bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/c", false},
		{"/a/*", "/a/b", true},
		{"/a/?", "/a/b", true},
		{"/a/?", "/a/bc", false},
		{"/{foo,bar}/x", "/foo/x", true},
		{"/{foo,bar}/x", "/bar/x", true},
		{"/{foo,bar}/x", "/baz/x", false},
		{"/a/[bc]", "/a/b", true},
		{"/a/[bc]", "/a/d", false},
		{"/a/[!bc]", "/a/d", true},
		{"*", "/a/b", true},
	}
	for _, tt := range tests {
		msg := NewMessage(tt.pattern)
		assert.Equal(t, tt.want, msg.Match(tt.addr), "pattern %q addr %q", tt.pattern, tt.addr)
	}
}

func TestMessageMarshalRejectsBadAddress(t *testing.T) {
	for _, addr := range []string{"", "debug", "#debug"} {
		msg := NewMessage(addr)
		_, err := msg.MarshalBinary()
		assert.True(t, errors.Is(err, ErrInvalidAddress), "address %q", addr)
	}
}

func TestMessageUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedPacket},
		{"no slash", []byte{'x', 0, 0, 0}, ErrInvalidAddress},
		{"unaligned", []byte{'/', 'a', 0}, ErrTruncatedPacket},
		{"typetag missing comma", []byte{
			'/', 'a', 0, 0,
			'i', 0, 0, 0,
		}, ErrMalformedArgument},
		{"argument bytes missing", []byte{
			'/', 'a', 0, 0,
			',', 'i', 0, 0,
		}, ErrMalformedArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMessageFromData(tt.data)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMessageString(t *testing.T) {
	msg := NewMessage("/m", int32(5), "hi", true)
	assert.Equal(t, "/m ,isT 5 hi true", msg.String())

	var nilMsg *Message
	assert.Equal(t, "", nilMsg.String())
}
