package bridge

import "time"

// Conf holds the broker connection and topic layout for the bridge.
type Conf struct {
	ClientID      string // ClientID - unique client name on the broker.
	Schema        string // Schema - connection type (tcp, ws, ...).
	Host          string // Host - MQTT server address.
	Port          string // Port - MQTT server port.
	User          string // User - MQTT login.
	Password      string // Password - MQTT password.
	TopicPrefix   string // TopicPrefix - root of the dmx topics.
	DiscoverEvery time.Duration
}

// Command sets one DMX channel on the universe named by the topic.
type Command struct {
	Channel uint16 `json:"channel"` // Channel - 1-based channel number.
	Value   uint8  `json:"value"`   // Value - channel value (0-255).
}

// Payload is the JSON body of a set message.
type Payload []Command

// NodeSummary is what the bridge publishes per discovered Art-Net node.
type NodeSummary struct {
	IP           string   `json:"ip"`
	ShortName    string   `json:"shortName"`
	LongName     string   `json:"longName"`
	UniversesOut []uint16 `json:"universesOut,omitempty"`
}
