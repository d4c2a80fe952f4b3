package osc

import (
	"fmt"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Client sends OSC packets to a single destination over UDP. The socket is
// bound lazily to an ephemeral local port on the first Send. Send may be
// called concurrently; single datagram writes are atomic at the OS level.
type Client struct {
	host string
	port int

	mu    sync.Mutex
	laddr *net.UDPAddr
	conn  *net.UDPConn
}

// NewClient returns a Client that will send to host:port. No socket is
// opened until the first Send.
func NewClient(host string, port int) *Client {
	return &Client{host: host, port: port}
}

// Dial returns a Client with its socket already connected to addr.
func Dial(addr string) (*Client, error) {
	host, port, err := splitHostPort(addr)
	if err != nil {
		return nil, err
	}
	c := &Client{host: host, port: port}
	if _, err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLocalAddr binds the client's sending socket to a specific local address.
// It must be called before the first Send.
func (c *Client) SetLocalAddr(host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return errors.New("local address must be set before the first send")
	}
	laddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return errors.Wrap(err, "resolve local address")
	}
	c.laddr = laddr
	return nil
}

// Send encodes the packet and transmits it as a single datagram. Payloads
// exceeding MaxPacketSize fail with ErrPayloadTooLarge before any write; no
// fragmentation or retry happens at this layer.
func (c *Client) Send(packet Packet) error {
	data, err := packet.MarshalBinary()
	if err != nil {
		return errors.WithMessage(err, "encode packet")
	}
	if len(data) > MaxPacketSize {
		return errors.Wrapf(ErrPayloadTooLarge, "%d bytes exceeds the %d byte datagram limit", len(data), MaxPacketSize)
	}

	conn, err := c.dial()
	if err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return errors.Wrap(err, "send")
	}
	return nil
}

// Close closes the client's socket, if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) dial() (*net.UDPConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.host, c.port))
	if err != nil {
		return nil, errors.Wrap(err, "resolve destination")
	}
	conn, err := net.DialUDP("udp", c.laddr, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	c.conn = conn
	return conn, nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "split address %q", addr)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, errors.Wrapf(err, "parse port %q", portStr)
	}
	return host, port, nil
}
