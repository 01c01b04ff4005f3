package config

import (
	"github.com/BurntSushi/toml"
)

// Config is the dmxbridge configuration file.
type Config struct {
	Logger LogConf    // Logger - log level settings.
	MQTT   MQTTConf   // MQTT - broker connection settings.
	DMX    DMXConf    // DMX - Art-Net output settings.
	Bridge BridgeConf // Bridge - topic layout and discovery cadence.
}

// LogConf holds the logging settings.
type LogConf struct {
	Level string `toml:"log-level"` // Level - logging level.
}

// MQTTConf holds the broker connection settings.
type MQTTConf struct {
	ClientID string `toml:"clientID"` // ClientID - client name on the broker.
	Host     string `toml:"server"`   // Host - MQTT server address.
	Port     string `toml:"port"`     // Port - MQTT server port.
	User     string `toml:"user"`     // User - MQTT login.
	Password string `toml:"password"` // Password - MQTT password.
}

// DMXConf holds the Art-Net output settings. Zero values fall back to the
// library defaults (broadcast destination, port 6454, 4 s refresh).
type DMXConf struct {
	Host      string `toml:"host"`       // Host - destination for DMX frames.
	Port      int    `toml:"port"`       // Port - destination UDP port.
	RefreshMs int    `toml:"refresh-ms"` // RefreshMs - keep-alive interval.
	SendAll   bool   `toml:"send-all"`   // SendAll - force full frames.
	Iface     string `toml:"interface"`  // Iface - bind interface name.
}

// BridgeConf holds the MQTT topic layout.
type BridgeConf struct {
	TopicPrefix string `toml:"topic-prefix"` // TopicPrefix - root of the dmx topics.
	DiscoverSec int    `toml:"discover-sec"` // DiscoverSec - node discovery period, seconds.
}

// NewConfig reads the TOML configuration at path.
func NewConfig(path string) (*Config, error) {
	// default values
	cfg := Config{
		Bridge: BridgeConf{TopicPrefix: "dmx", DiscoverSec: 30},
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}
