package transport

import (
	"net"
	"os"
	"sync"
	"time"
)

// Datagram is one recorded or queued UDP payload.
type Datagram struct {
	Payload []byte
	Host    string
	Port    int
	From    net.Addr
}

// Mock implements Transport for testing. Sent datagrams are recorded;
// inbound datagrams are queued with QueueInbound and handed out by Receive.
type Mock struct {
	mu       sync.Mutex
	sent     []Datagram
	inbound  chan Datagram
	deadline time.Time
	closed   bool

	// SendErr, when set, is returned by every Send call.
	SendErr error
}

func NewMock() *Mock {
	return &Mock{inbound: make(chan Datagram, 64)}
}

func (m *Mock) Send(payload []byte, host string, port int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return 0, m.SendErr
	}
	m.sent = append(m.sent, Datagram{
		Payload: append([]byte(nil), payload...),
		Host:    host,
		Port:    port,
	})
	return len(payload), nil
}

// QueueInbound makes a datagram available to a later Receive call.
func (m *Mock) QueueInbound(payload []byte, from net.Addr) {
	m.inbound <- Datagram{Payload: append([]byte(nil), payload...), From: from}
}

func (m *Mock) Receive(buf []byte) (int, net.Addr, error) {
	m.mu.Lock()
	deadline := m.deadline
	m.mu.Unlock()

	var expired <-chan time.Time
	if !deadline.IsZero() {
		expired = time.After(time.Until(deadline))
	}

	select {
	case d := <-m.inbound:
		return copy(buf, d.Payload), d.From, nil
	case <-expired:
		return 0, nil, os.ErrDeadlineExceeded
	}
}

func (m *Mock) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = t
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of every datagram recorded so far.
func (m *Mock) Sent() []Datagram {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Datagram(nil), m.sent...)
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
