package dmxnet

import "time"

const (
	// DefaultHost is the limited broadcast address Art-Net frames go to
	// when no destination was configured.
	DefaultHost = "255.255.255.255"
	// DefaultPort is the well-known Art-Net UDP port.
	DefaultPort = 6454
	// DefaultRefresh is the keep-alive interval between unconditional
	// full-frame transmissions per universe.
	DefaultRefresh = 4 * time.Second

	// throttleWindow limits each universe to one frame per window.
	throttleWindow = 25 * time.Millisecond
)

// Config controls a Sender. The zero value gets the protocol defaults.
type Config struct {
	// Host is the destination for outbound frames.
	Host string
	// Port is the destination UDP port.
	Port int
	// Refresh is the keep-alive interval. Values <= 0 mean DefaultRefresh.
	Refresh time.Duration
	// SendAll forces a full 512-channel frame on every transmission.
	SendAll bool
	// Iface optionally names the network interface to bind.
	Iface string
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Refresh <= 0 {
		c.Refresh = DefaultRefresh
	}
	return c
}
