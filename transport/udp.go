package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// UDP is the production Transport backed by a net.UDPConn.
type UDP struct {
	conn *net.UDPConn
}

// Open binds an ephemeral local UDP port, optionally on the named interface.
// An empty interface name binds the unspecified address.
func Open(iface string) (*UDP, error) {
	return open(iface, 0)
}

// OpenPort binds the given local UDP port, optionally on the named
// interface. Discovery uses this to listen on the well-known Art-Net port.
func OpenPort(iface string, port int) (*UDP, error) {
	return open(iface, port)
}

func open(iface string, port int) (*UDP, error) {
	laddr := &net.UDPAddr{Port: port}
	if iface != "" {
		ip, err := InterfaceIP(iface)
		if err != nil {
			return nil, fmt.Errorf("resolve interface %q: %w", iface, err)
		}
		laddr.IP = ip
	}

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %v: %w", laddr, err)
	}
	return &UDP{conn: conn}, nil
}

func (u *UDP) Send(payload []byte, host string, port int) (int, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(host), Port: port}
	if addr.IP == nil {
		resolved, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			return 0, fmt.Errorf("resolve %s: %w", host, err)
		}
		addr = resolved
	}
	return u.conn.WriteToUDP(payload, addr)
}

func (u *UDP) Receive(buf []byte) (int, net.Addr, error) {
	return u.conn.ReadFrom(buf)
}

func (u *UDP) SetReadDeadline(t time.Time) error {
	return u.conn.SetReadDeadline(t)
}

func (u *UDP) Close() error {
	return u.conn.Close()
}

// LocalAddr reports the bound address, mostly useful in logs.
func (u *UDP) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// InterfaceIP returns the first IPv4 address assigned to the named
// interface.
func InterfaceIP(name string) (net.IP, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("error getting interface: %w", err)
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return nil, fmt.Errorf("error getting ips: %w", err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip, nil
		}
	}

	return nil, fmt.Errorf("interface %s has no IPv4 address", name)
}
