package osc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

func TestDispatcherRoutesByAddress(t *testing.T) {
	d := NewDispatcher()
	hits := make(chan string, 4)
	require.NoError(t, d.AddMethodFunc("/a/b", func(msg *Message) { hits <- "/a/b" }))
	require.NoError(t, d.AddMethodFunc("/a/c", func(msg *Message) { hits <- "/a/c" }))

	d.HandlePacket(testAddr, time.Now(), NewMessage("/a/b", int32(1)))
	assert.Equal(t, "/a/b", <-hits)
	assert.Empty(t, hits)
}

func TestDispatcherMatchesPatterns(t *testing.T) {
	d := NewDispatcher()
	hits := make(chan string, 4)
	require.NoError(t, d.AddMethodFunc("/a/b", func(msg *Message) { hits <- "/a/b" }))
	require.NoError(t, d.AddMethodFunc("/a/c", func(msg *Message) { hits <- "/a/c" }))

	// A wildcard in the message address fans out to every matching method.
	d.HandlePacket(testAddr, time.Now(), NewMessage("/a/*"))
	got := map[string]bool{<-hits: true, <-hits: true}
	assert.True(t, got["/a/b"] && got["/a/c"])
}

func TestDispatcherRejectsBadRegistrations(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.AddMethodFunc("/ok", func(msg *Message) {}))

	assert.Error(t, d.AddMethodFunc("/ok", func(msg *Message) {}), "duplicate")
	for _, addr := range []string{"/a/*", "/a?", "/a{b,c}", "/a b", "#x"} {
		assert.Error(t, d.AddMethodFunc(addr, func(msg *Message) {}), "address %q", addr)
	}
}

func TestDispatcherImmediateBundleInline(t *testing.T) {
	d := NewDispatcher()
	var got []string
	require.NoError(t, d.AddMethodFunc("/first", func(msg *Message) { got = append(got, msg.Address) }))
	require.NoError(t, d.AddMethodFunc("/second", func(msg *Message) { got = append(got, msg.Address) }))
	require.NoError(t, d.AddMethodFunc("/nested", func(msg *Message) { got = append(got, msg.Address) }))

	inner := NewBundle()
	require.NoError(t, inner.Append(NewMessage("/nested")))

	b := NewBundle()
	require.NoError(t, b.Append(NewMessage("/first")))
	require.NoError(t, b.Append(NewMessage("/second")))
	require.NoError(t, b.Append(inner))

	// An immediate bundle is dispatched before HandlePacket returns, in
	// element order.
	d.HandlePacket(testAddr, time.Now(), b)
	assert.Equal(t, []string{"/first", "/second", "/nested"}, got)
}

func TestDispatcherDefersTimedBundle(t *testing.T) {
	d := NewDispatcher()
	hit := make(chan time.Time, 1)
	require.NoError(t, d.AddMethodFunc("/later", func(msg *Message) { hit <- time.Now() }))

	due := time.Now().Add(80 * time.Millisecond)
	b := NewBundleWithTime(due)
	require.NoError(t, b.Append(NewMessage("/later")))

	start := time.Now()
	d.HandlePacket(testAddr, start, b)

	select {
	case at := <-hit:
		assert.GreaterOrEqual(t, at.Sub(start), 50*time.Millisecond, "dispatched before the time tag")
	case <-time.After(2 * time.Second):
		t.Fatal("timed bundle never dispatched")
	}
}

func TestDispatcherAsServerHandler(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	d := NewDispatcher()
	hit := make(chan *Message, 1)
	require.NoError(t, d.AddMethodFunc("/osc/address", func(msg *Message) { hit <- msg }))

	s := &Server{Handler: d}
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(conn) }()

	client := clientFor(t, conn)
	defer client.Close()
	require.NoError(t, client.Send(NewMessage("/osc/address", int32(111), "hello")))

	select {
	case msg := <-hit:
		assert.Equal(t, int32(111), msg.Argument(0))
		assert.Equal(t, "hello", msg.Argument(1))
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher never received the message")
	}

	require.NoError(t, s.Stop())
	assert.NoError(t, <-errCh)
}
