package dmxnet

import (
	"fmt"
	"time"

	"dmxnet/packet"
)

// requestSend drives the per-universe throttle state machine.
//
// With no window open it opens one, transmits immediately with this call's
// refresh flag and callback, and keeps both for a possible replay. While a
// window is open only the fact that another send is wanted is recorded;
// later flags and callbacks are dropped, not merged. When the window timer
// fires, a recorded pending send replays once with the kept parameters.
func (s *Sender) requestSend(universeID uint16, refresh bool, cb Callback) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	st := s.universeState(universeID)
	s.startKeepalive(universeID, st)

	if st.throttleOpen {
		st.delayed = true
		s.mu.Unlock()
		return nil
	}

	st.throttleOpen = true
	st.pendingRefresh = refresh
	st.pendingCB = cb
	st.throttle = time.AfterFunc(throttleWindow, func() { s.throttleExpired(universeID) })
	frame, host, port := s.buildFrame(universeID, st, refresh)
	s.mu.Unlock()

	s.deliver(frame, host, port, cb)
	return nil
}

// throttleExpired closes the universe's throttle window and replays one
// pending send, which opens the next window.
func (s *Sender) throttleExpired(universeID uint16) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	st := s.universeState(universeID)
	st.throttleOpen = false
	if !st.delayed {
		s.mu.Unlock()
		return
	}
	st.delayed = false

	st.throttleOpen = true
	st.throttle = time.AfterFunc(throttleWindow, func() { s.throttleExpired(universeID) })
	frame, host, port := s.buildFrame(universeID, st, st.pendingRefresh)
	cb := st.pendingCB
	s.mu.Unlock()

	s.deliver(frame, host, port, cb)
}

// buildFrame encodes the next ArtDmx frame for the universe and resets its
// dirty length. A refresh, the SendAll flag, or a universe that never
// changed all force the full 512 channels; a frame is never empty. Callers
// hold s.mu.
func (s *Sender) buildFrame(universeID uint16, st *universe, refresh bool) ([]byte, string, int) {
	if s.cfg.SendAll {
		refresh = true
	}
	length := st.dirty
	if refresh || length == 0 {
		length = len(st.buf)
	}
	if length%2 != 0 {
		length++
	}
	frame := packet.EncodeArtDmx(universeID, st.buf[:length])
	st.dirty = 0
	return frame, s.cfg.Host, s.cfg.Port
}

// deliver hands a frame to the transport and reports the outcome. Must not
// be called with s.mu held: callbacks may call back into the Sender.
func (s *Sender) deliver(frame []byte, host string, port int, cb Callback) {
	n, err := s.tr.Send(frame, host, port)
	if err != nil {
		s.log.WithField("module", "dmxnet").Errorf("send failed: %v", err)
		s.pushErr(fmt.Errorf("send dmx: %w", err))
	}
	if cb != nil {
		cb(n, err)
	}
}

// startKeepalive arms the universe's periodic full refresh on the first
// transmission ever requested for it. Receivers fall back to their default
// state when frames stop arriving, so the refresh runs regardless of data
// changes and only Close stops it. Callers hold s.mu.
func (s *Sender) startKeepalive(universeID uint16, st *universe) {
	if st.keepalive != nil {
		return
	}
	st.keepalive = time.NewTicker(s.cfg.Refresh)
	st.stopKeepalive = make(chan struct{})

	go func(tick *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				if err := s.Refresh(universeID, nil); err != nil {
					return
				}
			}
		}
	}(st.keepalive, st.stopKeepalive)
}
