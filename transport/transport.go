// Package transport supplies the UDP primitive the dmxnet core sends and
// receives through. The core only sees the Transport interface, so tests
// swap in the Mock from this package.
package transport

import (
	"net"
	"time"
)

// Transport is an open UDP endpoint.
type Transport interface {
	// Send transmits one datagram to host:port and reports the number of
	// bytes written.
	Send(payload []byte, host string, port int) (int, error)
	// Receive blocks for the next inbound datagram, honouring a deadline
	// set with SetReadDeadline. On deadline expiry the returned error is a
	// net.Error with Timeout() == true.
	Receive(buf []byte) (int, net.Addr, error)
	SetReadDeadline(t time.Time) error
	Close() error
}
