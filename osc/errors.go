package osc

import "github.com/pkg/errors"

// Errors surfaced by the codec and the transport layer. Call sites wrap
// these with context; callers test with errors.Is.
var (
	// ErrMalformedArgument reports argument bytes that are too short or not
	// padded to a 4-byte boundary.
	ErrMalformedArgument = errors.New("malformed argument")

	// ErrUnknownTypeTag reports an unrecognized type tag character.
	ErrUnknownTypeTag = errors.New("unknown type tag")

	// ErrTruncatedPacket reports a declared length running past the end of
	// the datagram.
	ErrTruncatedPacket = errors.New("truncated packet")

	// ErrInvalidAddress reports an address pattern that neither begins with
	// '/' nor is the bundle marker.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrPayloadTooLarge reports an encoded packet exceeding the transport
	// MTU. Packets are never fragmented or split.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedPlatform reports selection of a dispatch strategy that
	// is unavailable on this platform.
	ErrUnsupportedPlatform = errors.New("dispatch strategy unsupported on this platform")

	// ErrIOTimeout reports an expired read deadline on the server socket.
	ErrIOTimeout = errors.New("i/o timeout")

	// ErrServerClosed reports a receive interrupted by Stop or by closing
	// the underlying socket. It signals cooperative shutdown, not a fault;
	// Serve treats it as clean termination.
	ErrServerClosed = errors.New("server closed")
)
