// Package bridge maps MQTT set messages onto Art-Net universes and
// publishes the nodes discovered on the wire.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"dmxnet"
	"dmxnet/internal/logger"
)

// DMXSender is the slice of dmxnet.Sender the bridge needs.
type DMXSender interface {
	SetChannel(universe, channel uint16, value byte, cb dmxnet.Callback) error
	DiscoverNodes(timeout time.Duration) ([]dmxnet.DiscoveredNode, error)
}

// Bridge subscribes to <prefix>/<universe>/set and forwards the channel
// commands to the DMX sender.
type Bridge struct {
	ctx    context.Context
	log    logger.Logger
	cfg    Conf
	client mqtt.Client
	opts   *mqtt.ClientOptions
	sender DMXSender
}

// NewBridge wires the sender in; Connect does the actual broker handshake.
func NewBridge(log logger.Logger, cfg Conf, sender DMXSender) *Bridge {
	if cfg.Schema == "" {
		cfg.Schema = "tcp"
	}
	if cfg.DiscoverEvery <= 0 {
		cfg.DiscoverEvery = 30 * time.Second
	}
	return &Bridge{log: log, cfg: cfg, sender: sender}
}

func (b *Bridge) Start(ctx context.Context) error {
	if b.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	b.ctx = ctx

	b.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", b.cfg.Schema, b.cfg.Host, b.cfg.Port)).
		SetUsername(b.cfg.User).
		SetPassword(b.cfg.Password).
		SetDefaultPublishHandler(b.messageHandler).
		SetOnConnectHandler(b.connectHandler).
		SetConnectionLostHandler(b.connectLostHandler).
		SetClientID(b.cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	b.client = mqtt.NewClient(b.opts)

	token := b.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-b.ctx.Done():
		return errors.New("context canceled")
	}

	b.sub(b.cfg.TopicPrefix + "/+/set")
	go b.discoveryLoop()

	b.log.With(logger.Fields{"module": "mqtt"}).Infof("Status: %v", b.client.IsConnected())
	return nil
}

func (b *Bridge) Stop() error {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(500)
	}
	return nil
}

func (b *Bridge) connectHandler(_ mqtt.Client) {
	b.log.With(logger.Fields{"module": "mqtt"}).Info("client connected to server")
}

func (b *Bridge) connectLostHandler(_ mqtt.Client, err error) {
	b.log.With(logger.Fields{"module": "mqtt"}).Errorf("server connect lost: %v\n", err)
}

func (b *Bridge) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	b.log.With(logger.Fields{"module": "mqtt"}).Debugf("received message: %v from topic: %s", msg.Payload(), msg.Topic())
	go b.applyMessage(msg.Topic(), msg.Payload())
}

// applyMessage turns one set message into channel writes.
func (b *Bridge) applyMessage(topic string, payload []byte) {
	universe, err := universeFromTopic(topic, b.cfg.TopicPrefix)
	if err != nil {
		b.log.With(logger.Fields{"module": "mqtt"}).Errorf("topic %s rejected: %v", topic, err)
		return
	}

	var commands Payload
	if err := json.Unmarshal(payload, &commands); err != nil {
		b.log.With(logger.Fields{"module": "mqtt"}).Errorf("message could not be parsed (%v): %v\n", payload, err)
		return
	}

	for _, cmd := range commands {
		if err := b.sender.SetChannel(universe, cmd.Channel, cmd.Value, nil); err != nil {
			b.log.With(logger.Fields{"module": "mqtt"}).Errorf("set universe %d channel %d: %v", universe, cmd.Channel, err)
			return
		}
	}
}

// universeFromTopic extracts the universe id from <prefix>/<universe>/set.
func universeFromTopic(topic, prefix string) (uint16, error) {
	rest, found := strings.CutPrefix(topic, prefix+"/")
	if !found {
		return 0, fmt.Errorf("topic outside prefix %q", prefix)
	}
	name, found := strings.CutSuffix(rest, "/set")
	if !found || strings.Contains(name, "/") {
		return 0, errors.New("expected <prefix>/<universe>/set")
	}
	universe, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad universe %q: %w", name, err)
	}
	return uint16(universe), nil
}

func (b *Bridge) sub(topic string) {
	token := b.client.Subscribe(topic, 0, nil)
	go func() {
		select {
		case <-b.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				b.log.With(logger.Fields{"module": "mqtt"}).Errorf("topic %s subscription error. %v\n", topic, token.Error())
				return
			}
		}
		b.log.With(logger.Fields{"module": "mqtt"}).Debugf("topic %s subscribed\n", topic)
	}()
}

// discoveryLoop polls the wire periodically and publishes the node list.
func (b *Bridge) discoveryLoop() {
	t := time.NewTicker(b.cfg.DiscoverEvery)
	defer t.Stop()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-t.C:
			b.publishNodes()
		}
	}
}

func (b *Bridge) publishNodes() {
	nodes, err := b.sender.DiscoverNodes(dmxnet.DefaultDiscoveryTimeout)
	if err != nil {
		b.log.With(logger.Fields{"module": "mqtt"}).Errorf("node discovery: %v", err)
		return
	}
	b.log.With(logger.Fields{"module": "mqtt"}).Debugf("currently %d devices are registered", len(nodes))

	summaries := make([]NodeSummary, 0, len(nodes))
	for _, n := range nodes {
		summaries = append(summaries, NodeSummary{
			IP:           n.IP,
			ShortName:    n.Info.ShortName,
			LongName:     n.Info.LongName,
			UniversesOut: n.Info.UniversesOut,
		})
	}

	msg, err := json.Marshal(summaries)
	if err != nil {
		b.log.With(logger.Fields{"module": "mqtt"}).Errorf("marshal node list: %v", err)
		return
	}
	token := b.client.Publish(b.cfg.TopicPrefix+"/nodes", 0, false, msg)
	go func() {
		select {
		case <-b.ctx.Done():
		case <-token.Done():
			if token.Error() != nil {
				b.log.With(logger.Fields{"module": "mqtt"}).Errorf("error publish node list. %v\n", token.Error())
			}
		}
	}()
}
