package osc

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleMarker(t *testing.T) {
	b := NewBundle()
	data, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		'#', 'b', 'u', 'n', 'd', 'l', 'e', 0,
		0, 0, 0, 0, 0, 0, 0, 1,
	}, data, "empty immediate bundle is marker plus time tag")
}

func TestBundleRoundTrip(t *testing.T) {
	b := NewBundleWithTime(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, b.Append(NewMessage("/one", int32(1))))
	require.NoError(t, b.Append(NewMessage("/two", "second", float32(2.5))))

	data, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Zero(t, len(data)%4)

	back, err := NewBundleFromData(data)
	require.NoError(t, err)
	assert.True(t, b.Equals(back))
}

func TestBundleNested(t *testing.T) {
	inner := NewBundle()
	require.NoError(t, inner.Append(NewMessage("/deep", int32(3))))

	mid := NewBundle()
	require.NoError(t, mid.Append(NewMessage("/mid", int32(2))))
	require.NoError(t, mid.Append(inner))

	outer := NewBundle()
	require.NoError(t, outer.Append(NewMessage("/top", int32(1))))
	require.NoError(t, outer.Append(mid))

	data, err := outer.MarshalBinary()
	require.NoError(t, err)

	back, err := NewBundleFromData(data)
	require.NoError(t, err)
	assert.True(t, outer.Equals(back), "three levels survive the round trip")

	// Nesting is preserved, not flattened.
	require.Len(t, back.Elements, 2)
	backMid, ok := back.Elements[1].(*Bundle)
	require.True(t, ok)
	require.Len(t, backMid.Elements, 2)
	_, ok = backMid.Elements[1].(*Bundle)
	assert.True(t, ok)
}

func TestBundleAppendRejectsOtherPackets(t *testing.T) {
	b := NewBundle()
	assert.Error(t, b.Append(Timetag(1)))
	assert.Len(t, b.Elements, 0)
}

func TestBundleUnmarshalErrors(t *testing.T) {
	valid, err := func() ([]byte, error) {
		b := NewBundle()
		if err := b.Append(NewMessage("/x", int32(1))); err != nil {
			return nil, err
		}
		return b.MarshalBinary()
	}()
	require.NoError(t, err)

	t.Run("bad marker", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[0] = '!'
		_, err := NewBundleFromData(data)
		assert.True(t, errors.Is(err, ErrInvalidAddress))
	})

	t.Run("shorter than header", func(t *testing.T) {
		_, err := NewBundleFromData(bundlePrefix)
		assert.True(t, errors.Is(err, ErrTruncatedPacket))
	})

	t.Run("unaligned", func(t *testing.T) {
		_, err := NewBundleFromData(valid[:len(valid)-1])
		assert.True(t, errors.Is(err, ErrTruncatedPacket))
	})

	t.Run("element length past end", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.BigEndian.PutUint32(data[16:], uint32(len(data)))
		_, err := NewBundleFromData(data)
		assert.True(t, errors.Is(err, ErrTruncatedPacket))
	})

	t.Run("dangling length bytes", func(t *testing.T) {
		data := append(append([]byte(nil), bundlePrefix...), 0, 0, 0, 0, 0, 0, 0, 1)
		data = append(data, 0, 0, 0, 0)
		// A zero-length element is tolerated by length accounting but the
		// nested parse rejects the empty datagram.
		_, err := NewBundleFromData(data)
		assert.True(t, errors.Is(err, ErrTruncatedPacket))
	})
}

func TestBundleEquals(t *testing.T) {
	a := NewBundle()
	require.NoError(t, a.Append(NewMessage("/x", int32(1))))
	b := NewBundle()
	require.NoError(t, b.Append(NewMessage("/x", int32(1))))
	assert.True(t, a.Equals(b))

	b.Timetag = NewTimetagFromTime(time.Now())
	assert.False(t, a.Equals(b))
}
