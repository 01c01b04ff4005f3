package dmxnet

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dmxnet/packet"
	"dmxnet/transport"
)

// Callback reports the outcome of one transmission: bytes handed to the
// transport, or the transport error. A nil Callback is allowed everywhere.
type Callback func(bytesSent int, err error)

// Sender owns the per-universe DMX state and the outbound transport.
type Sender struct {
	mu        sync.Mutex
	cfg       Config
	log       logrus.FieldLogger
	tr        transport.Transport
	universes map[uint16]*universe
	errs      chan error
	closed    bool

	openDiscovery func() (transport.Transport, error)
}

// universe is the per-universe channel buffer plus scheduler state. It is
// created lazily on the first write or send and lives until Close.
type universe struct {
	buf   [512]byte
	dirty int // highest changed channel index + 1 since the last frame

	throttleOpen   bool
	delayed        bool
	pendingRefresh bool
	pendingCB      Callback
	throttle       *time.Timer

	keepalive     *time.Ticker
	stopKeepalive chan struct{}
}

// Option configures a Sender at construction time.
type Option func(*Sender)

// WithLogger wires a logger into the Sender. Without one the Sender is
// silent.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sender) { s.log = log }
}

// WithTransport replaces the default UDP transport. Useful for tests.
func WithTransport(tr transport.Transport) Option {
	return func(s *Sender) { s.tr = tr }
}

// WithDiscoveryTransport replaces how DiscoverNodes opens its dedicated
// transport.
func WithDiscoveryTransport(open func() (transport.Transport, error)) Option {
	return func(s *Sender) { s.openDiscovery = open }
}

// NewSender opens a transport per cfg and returns a ready Sender.
func NewSender(cfg Config, opts ...Option) (*Sender, error) {
	s := &Sender{
		cfg:       cfg.withDefaults(),
		universes: make(map[uint16]*universe),
		errs:      make(chan error, 16),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.tr == nil {
		tr, err := transport.Open(s.cfg.Iface)
		if err != nil {
			return nil, fmt.Errorf("open transport: %w", err)
		}
		s.tr = tr
	}
	if s.openDiscovery == nil {
		iface := s.cfg.Iface
		s.openDiscovery = func() (transport.Transport, error) {
			return transport.OpenPort(iface, packet.Port)
		}
	}
	return s, nil
}

// SetChannel writes one value to a 1-based channel of the universe. See
// SetChannels.
func (s *Sender) SetChannel(universeID, channel uint16, value byte, cb Callback) error {
	return s.SetChannels(universeID, channel, []byte{value}, cb)
}

// SetChannels writes values starting at the 1-based channel start. A write
// only counts as a change when the value differs from the stored one; if
// nothing changed, cb runs immediately with (0, nil) and no frame goes out.
// Otherwise a transmission is scheduled under the throttle window.
func (s *Sender) SetChannels(universeID, start uint16, values []byte, cb Callback) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	st := s.universeState(universeID)
	changed := false
	for i, v := range values {
		idx := int(start) - 1 + i
		if idx < 0 || idx >= len(st.buf) {
			continue
		}
		if st.buf[idx] == v {
			continue
		}
		st.buf[idx] = v
		changed = true
		if idx+1 > st.dirty {
			st.dirty = idx + 1
		}
	}
	s.mu.Unlock()

	if !changed {
		if cb != nil {
			cb(0, nil)
		}
		return nil
	}
	return s.requestSend(universeID, false, cb)
}

// Send transmits the universe's changed channels (a full frame when nothing
// was ever written).
func (s *Sender) Send(universeID uint16, cb Callback) error {
	return s.requestSend(universeID, false, cb)
}

// Refresh transmits a full 512-channel frame for the universe.
func (s *Sender) Refresh(universeID uint16, cb Callback) error {
	return s.requestSend(universeID, true, cb)
}

// SetHost changes the destination host for subsequent frames.
func (s *Sender) SetHost(host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.cfg.Host = host
	return nil
}

// SetPort changes the destination port. It fails with ErrBroadcastPort while
// the host is the limited broadcast address: the well-known port is the only
// one the whole segment listens on.
func (s *Sender) SetPort(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.cfg.Host == DefaultHost {
		return ErrBroadcastPort
	}
	s.cfg.Port = port
	return nil
}

// Errors delivers transport failures that are not attributable to a single
// call, for example keep-alive transmissions. The channel is closed by
// Close; slow readers lose errors rather than block the scheduler.
func (s *Sender) Errors() <-chan error {
	return s.errs
}

func (s *Sender) pushErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.errs <- err:
	default:
	}
}

// Close cancels every keep-alive and throttle timer, closes the error
// channel and releases the transport. Further operations fail with
// ErrClosed. Close is idempotent.
func (s *Sender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, st := range s.universes {
		if st.throttle != nil {
			st.throttle.Stop()
		}
		if st.keepalive != nil {
			st.keepalive.Stop()
			close(st.stopKeepalive)
		}
		st.throttleOpen = false
		st.delayed = false
	}
	close(s.errs)
	s.mu.Unlock()
	return s.tr.Close()
}

// universeState returns the universe's state, allocating it on first touch.
// Callers hold s.mu.
func (s *Sender) universeState(id uint16) *universe {
	st, ok := s.universes[id]
	if !ok {
		st = &universe{}
		s.universes[id] = st
	}
	return st
}
