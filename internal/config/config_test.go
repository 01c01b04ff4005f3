package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[Logger]
log-level = "debug"

[MQTT]
clientID = "dmxbridge"
server = "broker.local"
port = "1883"

[DMX]
host = "192.168.6.255"
port = 6454
refresh-ms = 4000
send-all = true
interface = "eth1"

[Bridge]
topic-prefix = "lights"
discover-sec = 60
`), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "dmxbridge", cfg.MQTT.ClientID)
	assert.Equal(t, "broker.local", cfg.MQTT.Host)
	assert.Equal(t, "192.168.6.255", cfg.DMX.Host)
	assert.Equal(t, 6454, cfg.DMX.Port)
	assert.Equal(t, 4000, cfg.DMX.RefreshMs)
	assert.True(t, cfg.DMX.SendAll)
	assert.Equal(t, "eth1", cfg.DMX.Iface)
	assert.Equal(t, "lights", cfg.Bridge.TopicPrefix)
	assert.Equal(t, 60, cfg.Bridge.DiscoverSec)
}

func TestNewConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dmx", cfg.Bridge.TopicPrefix)
	assert.Equal(t, 30, cfg.Bridge.DiscoverSec)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
