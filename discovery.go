package dmxnet

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"dmxnet/packet"
	"dmxnet/transport"
)

// DefaultDiscoveryTimeout bounds a discovery run when the caller passes no
// positive timeout.
const DefaultDiscoveryTimeout = 2 * time.Second

// DiscoveredNode is one Art-Net node that answered a poll.
type DiscoveredNode struct {
	IP   string
	Port int
	Info packet.NodeInfo
}

type discoveryState int

const (
	discoveryIdle discoveryState = iota
	discoveryPolling
	discoveryCollecting
	discoveryDone
)

// Discoverer runs one broadcast poll/collect cycle over a dedicated
// transport. One Discoverer serves one Run at a time.
type Discoverer struct {
	open  func() (transport.Transport, error)
	log   logrus.FieldLogger
	state discoveryState
	nodes []DiscoveredNode
	seen  map[string]struct{}
}

// NewDiscoverer builds a Discoverer that opens its transport through open.
func NewDiscoverer(open func() (transport.Transport, error), log logrus.FieldLogger) *Discoverer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Discoverer{open: open, log: log}
}

// Run broadcasts one ArtPoll and collects ArtPollReply datagrams until the
// timeout elapses. It always resolves by the deadline: no replies means an
// empty slice, not an error. The poll is not retried.
func (d *Discoverer) Run(timeout time.Duration) ([]DiscoveredNode, error) {
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}

	tr, err := d.open()
	if err != nil {
		return nil, fmt.Errorf("open discovery transport: %w", err)
	}
	defer tr.Close()

	d.state = discoveryPolling
	d.nodes = nil
	d.seen = make(map[string]struct{})

	if _, err := tr.Send(packet.EncodeArtPoll(), DefaultHost, packet.Port); err != nil {
		d.state = discoveryDone
		return nil, fmt.Errorf("send poll: %w", err)
	}

	d.state = discoveryCollecting
	if err := tr.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		d.state = discoveryDone
		return nil, fmt.Errorf("set discovery deadline: %w", err)
	}

	buf := make([]byte, 1024)
	for {
		n, from, err := tr.Receive(buf)
		if err != nil {
			var nerr net.Error
			if !errors.As(err, &nerr) || !nerr.Timeout() {
				d.log.WithField("module", "discovery").Warnf("receive ended early: %v", err)
			}
			break
		}
		d.collect(buf[:n], from)
	}

	d.state = discoveryDone
	return append([]DiscoveredNode(nil), d.nodes...), nil
}

// collect decodes one datagram. Foreign or malformed datagrams are normal on
// a shared segment and dropped without comment; for each source IP only the
// first reply of the session is kept.
func (d *Discoverer) collect(payload []byte, from net.Addr) {
	info, ok := packet.DecodeArtPollReply(payload)
	if !ok {
		return
	}
	ip, port := splitAddr(from)
	if _, dup := d.seen[ip]; dup {
		return
	}
	d.seen[ip] = struct{}{}
	d.nodes = append(d.nodes, DiscoveredNode{IP: ip, Port: port, Info: info})
	d.log.WithField("module", "discovery").Debugf("node %s (%s)", ip, info.ShortName)
}

func splitAddr(addr net.Addr) (string, int) {
	if u, ok := addr.(*net.UDPAddr); ok {
		return u.IP.String(), u.Port
	}
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// DiscoverNodes opens a dedicated broadcast transport on the well-known
// port, polls once, and returns the nodes heard within the timeout.
func (s *Sender) DiscoverNodes(timeout time.Duration) ([]DiscoveredNode, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	open, log := s.openDiscovery, s.log
	s.mu.Unlock()

	return NewDiscoverer(open, log).Run(timeout)
}
