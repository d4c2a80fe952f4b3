package osc

import (
	stderrors "errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Strategy selects how the server schedules handler invocations relative to
// the next receive.
type Strategy int

const (
	// Blocking runs the handler synchronously in the receive loop; the next
	// receive waits for it. Handling order matches arrival order.
	Blocking Strategy = iota
	// Threaded runs each handler in its own goroutine and resumes receiving
	// immediately. No ordering is guaranteed between in-flight handlers.
	Threaded
	// Forked would run each handler in a new OS process. The Go runtime has
	// no fork primitive, so selecting it fails with ErrUnsupportedPlatform
	// rather than silently falling back to another policy.
	Forked
)

func (s Strategy) String() string {
	switch s {
	case Blocking:
		return "blocking"
	case Threaded:
		return "threaded"
	case Forked:
		return "forked"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name, as used in configuration files and
// command line flags, into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "blocking", "":
		return Blocking, nil
	case "threaded":
		return Threaded, nil
	case "forked":
		return Forked, nil
	default:
		return Blocking, errors.Errorf("unknown dispatch strategy %q", name)
	}
}

// Handler receives every decoded packet together with the sender's address
// and the packet's arrival time.
type Handler interface {
	HandlePacket(addr net.Addr, at time.Time, packet Packet)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(addr net.Addr, at time.Time, packet Packet)

// HandlePacket calls f. Implements the Handler interface.
func (f HandlerFunc) HandlePacket(addr net.Addr, at time.Time, packet Packet) {
	f(addr, at, packet)
}

type serverState int

const (
	stateIdle serverState = iota
	stateServing
	stateStopped
)

// defaultStopGrace bounds how long Stop waits for in-flight threaded
// handlers before abandoning them.
const defaultStopGrace = 5 * time.Second

// Server receives OSC packets on a UDP socket and dispatches them to a
// Handler according to the configured Strategy. A decode failure never
// terminates the serve loop; it is reported through ErrorHook and the next
// datagram is read.
type Server struct {
	Addr     string
	Handler  Handler
	Strategy Strategy

	// ReadTimeout, when non-zero, arms a deadline before every receive.
	// An expired deadline surfaces as ErrIOTimeout, distinct from
	// ErrServerClosed.
	ReadTimeout time.Duration

	// StopGrace bounds how long Stop waits for in-flight threaded handlers.
	// Zero means defaultStopGrace.
	StopGrace time.Duration

	// ErrorHook receives per-datagram decode failures and recovered handler
	// panics. When nil they are logged instead.
	ErrorHook func(error)

	mu       sync.Mutex
	state    serverState
	conn     net.PacketConn
	inflight sync.WaitGroup
}

// ListenAndServe binds a UDP socket to s.Addr and serves it until Stop is
// called or an unrecoverable socket error occurs.
func (s *Server) ListenAndServe() error {
	conn, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	defer conn.Close()
	return s.Serve(conn)
}

// Serve receives datagrams from conn and dispatches decoded packets until the
// socket is closed. Closing through Stop (or directly) is clean termination:
// Serve returns nil. Serve itself runs in a single goroutine; the Strategy
// decides where handlers run.
func (s *Server) Serve(conn net.PacketConn) error {
	if s.Handler == nil {
		return errors.New("no handler registered")
	}
	if s.Strategy == Forked {
		return errors.Wrap(ErrUnsupportedPlatform, "forked dispatch requires process duplication, which the Go runtime does not provide")
	}

	s.mu.Lock()
	if s.state == stateServing {
		s.mu.Unlock()
		return errors.New("already serving")
	}
	s.state = stateServing
	s.conn = conn
	s.mu.Unlock()

	logrus.Infof("serving osc on [%s] (%s)", conn.LocalAddr(), s.Strategy)
	defer logrus.Infof("serve loop on [%s] exited", conn.LocalAddr())

	var tempDelay time.Duration
	for {
		data, addr, err := s.readFromConnection(conn)
		if err != nil {
			if stderrors.Is(err, net.ErrClosed) || s.stopped() {
				s.settle()
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.leaveServing()
				return errors.Wrap(ErrIOTimeout, err.Error())
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			}
			s.leaveServing()
			return errors.Wrap(err, "receive")
		}
		tempDelay = 0

		at := time.Now()
		packet, err := ParsePacket(data)
		if err != nil {
			s.reportError(errors.WithMessagef(err, "dropping datagram from [%s]", addr))
			continue
		}
		s.dispatch(addr, at, packet)
	}
}

// ReceivePacket performs a single blocking receive on conn and decodes the
// datagram. A socket closed from another goroutine unblocks it with
// ErrServerClosed; an expired read deadline with ErrIOTimeout.
func (s *Server) ReceivePacket(conn net.PacketConn) (Packet, net.Addr, error) {
	data, addr, err := s.readFromConnection(conn)
	if err != nil {
		if stderrors.Is(err, net.ErrClosed) {
			return nil, addr, errors.Wrap(ErrServerClosed, err.Error())
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, addr, errors.Wrap(ErrIOTimeout, err.Error())
		}
		return nil, addr, errors.Wrap(err, "receive")
	}
	p, err := ParsePacket(data)
	return p, addr, err
}

// Stop transitions the server out of Serving by closing the socket, which
// unblocks the pending receive. It then waits up to StopGrace for in-flight
// threaded handlers before abandoning them.
func (s *Server) Stop() error {
	s.mu.Lock()
	conn := s.conn
	serving := s.state == stateServing
	s.state = stateStopped
	s.mu.Unlock()

	if !serving || conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return errors.Wrap(err, "close socket")
	}

	grace := s.StopGrace
	if grace == 0 {
		grace = defaultStopGrace
	}
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		logrus.Warnf("abandoning in-flight handlers after %s", grace)
	}
	return nil
}

func (s *Server) dispatch(addr net.Addr, at time.Time, packet Packet) {
	switch s.Strategy {
	case Threaded:
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer s.recoverHandler(addr)
			s.Handler.HandlePacket(addr, at, packet)
		}()
	default:
		func() {
			defer s.recoverHandler(addr)
			s.Handler.HandlePacket(addr, at, packet)
		}()
	}
}

// recoverHandler isolates handler failures: a panicking handler is reported
// through the error hook and never takes the serve loop down with it.
func (s *Server) recoverHandler(addr net.Addr) {
	if r := recover(); r != nil {
		s.reportError(errors.Errorf("handler panic for datagram from [%s]: %v", addr, r))
	}
}

func (s *Server) reportError(err error) {
	if s.ErrorHook != nil {
		s.ErrorHook(err)
		return
	}
	logrus.Errorf("%v", err)
}

func (s *Server) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateStopped
}

func (s *Server) leaveServing() {
	s.mu.Lock()
	if s.state == stateServing {
		s.state = stateIdle
	}
	s.mu.Unlock()
}

// settle marks the clean end of a serve loop and waits out in-flight
// threaded handlers so a Serve return means no handler is still running,
// within the same bounded grace Stop applies.
func (s *Server) settle() {
	s.mu.Lock()
	s.state = stateStopped
	s.mu.Unlock()

	grace := s.StopGrace
	if grace == 0 {
		grace = defaultStopGrace
	}
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
	}
}

// readFromConnection reads one raw datagram into a pooled buffer and returns
// a copy of the payload.
func (s *Server) readFromConnection(conn net.PacketConn) ([]byte, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, errors.Wrap(err, "set read deadline")
		}
	}

	buf := bufPool.Get().(*[]byte)
	defer bufPool.Put(buf)

	n, addr, err := conn.ReadFrom(*buf)
	if err != nil {
		return nil, addr, err
	}
	data := make([]byte, n)
	copy(data, *buf)
	return data, addr, nil
}
