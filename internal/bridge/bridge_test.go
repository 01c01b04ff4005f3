package bridge

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmxnet"
	"dmxnet/internal/logger"
)

type setCall struct {
	universe, channel uint16
	value             byte
}

type fakeSender struct {
	calls []setCall
}

func (f *fakeSender) SetChannel(universe, channel uint16, value byte, cb dmxnet.Callback) error {
	f.calls = append(f.calls, setCall{universe, channel, value})
	if cb != nil {
		cb(0, nil)
	}
	return nil
}

func (f *fakeSender) DiscoverNodes(time.Duration) ([]dmxnet.DiscoveredNode, error) {
	return nil, nil
}

func silentLog() *logger.Log {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logger.Log{Entry: l.WithFields(nil)}
}

func TestUniverseFromTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		universe uint16
		wantErr  bool
	}{
		{"plain", "dmx/0/set", 0, false},
		{"high universe", "dmx/32767/set", 32767, false},
		{"wrong prefix", "lights/3/set", 0, true},
		{"missing suffix", "dmx/3", 0, true},
		{"nested", "dmx/3/extra/set", 0, true},
		{"not a number", "dmx/three/set", 0, true},
		{"out of range", "dmx/70000/set", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			universe, err := universeFromTopic(tt.topic, "dmx")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.universe, universe)
		})
	}
}

func TestApplyMessage(t *testing.T) {
	sender := &fakeSender{}
	b := NewBridge(silentLog(), Conf{TopicPrefix: "dmx"}, sender)

	b.applyMessage("dmx/4/set", []byte(`[{"channel":1,"value":255},{"channel":7,"value":32}]`))

	require.Len(t, sender.calls, 2)
	assert.Equal(t, setCall{4, 1, 255}, sender.calls[0])
	assert.Equal(t, setCall{4, 7, 32}, sender.calls[1])
}

func TestApplyMessageRejectsGarbage(t *testing.T) {
	sender := &fakeSender{}
	b := NewBridge(silentLog(), Conf{TopicPrefix: "dmx"}, sender)

	b.applyMessage("dmx/4/set", []byte(`{"not":"a list"}`))
	b.applyMessage("other/4/set", []byte(`[{"channel":1,"value":255}]`))

	assert.Empty(t, sender.calls)
}
