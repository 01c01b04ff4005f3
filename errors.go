package dmxnet

import "errors"

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("sender is closed")
	// ErrBroadcastPort rejects a port change while the destination host is
	// the limited broadcast address.
	ErrBroadcastPort = errors.New("cannot change port while host is the broadcast address")
)
