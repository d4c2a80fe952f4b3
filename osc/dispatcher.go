package osc

import (
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Method handles OSC messages routed to a registered address.
type Method interface {
	HandleMessage(msg *Message)
}

// MethodFunc adapts a function to the Method interface.
type MethodFunc func(msg *Message)

// HandleMessage calls f. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg *Message) {
	f(msg)
}

// Dispatcher routes incoming packets to Methods by matching each message's
// address pattern against the registered addresses. It implements Handler, so
// it plugs directly into a Server. Bundle elements are dispatched once the
// bundle's time tag expires; elements of an immediate bundle are dispatched
// inline, preserving arrival order under the Blocking strategy.
type Dispatcher struct {
	methods map[string]Method
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string]Method)}
}

// AddMethod registers a Method for the given literal OSC address. The address
// must not contain pattern wildcards; patterns belong in message addresses.
func (d *Dispatcher) AddMethod(addr string, method Method) error {
	if d.methods == nil {
		d.methods = make(map[string]Method)
	}
	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return errors.Errorf("address %q may not contain any of \"*?,[]{}# \"", addr)
	}
	if _, ok := d.methods[addr]; ok {
		return errors.Errorf("address %q already registered", addr)
	}
	d.methods[addr] = method
	return nil
}

// AddMethodFunc registers a plain function as a Method.
func (d *Dispatcher) AddMethodFunc(addr string, f MethodFunc) error {
	return d.AddMethod(addr, f)
}

// HandlePacket implements the Handler interface.
func (d *Dispatcher) HandlePacket(addr net.Addr, at time.Time, packet Packet) {
	switch p := packet.(type) {
	case *Message:
		d.dispatchMessage(p)
	case *Bundle:
		if delay := p.Timetag.ExpiresIn(); delay > 0 {
			time.AfterFunc(delay, func() {
				d.dispatchBundle(addr, at, p)
			})
			return
		}
		d.dispatchBundle(addr, at, p)
	}
}

func (d *Dispatcher) dispatchMessage(msg *Message) {
	for addr, method := range d.methods {
		if msg.Match(addr) {
			method.HandleMessage(msg)
		}
	}
}

func (d *Dispatcher) dispatchBundle(addr net.Addr, at time.Time, b *Bundle) {
	for _, elem := range b.Elements {
		d.HandlePacket(addr, at, elem)
	}
}
