package dmxnet

import (
	"fmt"

	"dmxnet/packet"
)

// ArtTrigger defaults when an option is not supplied.
const (
	defaultTriggerOEM uint16 = 0xFFFF
	defaultTriggerKey byte   = 255
)

type triggerSettings struct {
	oem    uint16
	key    byte
	subKey byte
}

// TriggerOption overrides one ArtTrigger field.
type TriggerOption func(*triggerSettings)

// WithOEM sets the trigger's OEM code. Default 0xFFFF (all devices).
func WithOEM(oem uint16) TriggerOption {
	return func(t *triggerSettings) { t.oem = oem }
}

// WithKey sets the trigger key. Default 255.
func WithKey(key byte) TriggerOption {
	return func(t *triggerSettings) { t.key = key }
}

// WithSubKey sets the trigger subkey. Default 0.
func WithSubKey(subKey byte) TriggerOption {
	return func(t *triggerSettings) { t.subKey = subKey }
}

// Trigger sends one ArtTrigger frame to the configured destination. Trigger
// frames are not throttled; they bypass the per-universe scheduler.
func (s *Sender) Trigger(opts ...TriggerOption) (int, error) {
	set := triggerSettings{oem: defaultTriggerOEM, key: defaultTriggerKey}
	for _, opt := range opts {
		opt(&set)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	host, port := s.cfg.Host, s.cfg.Port
	s.mu.Unlock()

	n, err := s.tr.Send(packet.EncodeArtTrigger(set.oem, set.key, set.subKey), host, port)
	if err != nil {
		return n, fmt.Errorf("send trigger: %w", err)
	}
	return n, nil
}
