package soapysdr

import "github.com/kevinmehall/go-soapysdr/hal"

// StreamFlags carries the per-transfer status bits reported by the most
// recent stream call.
type StreamFlags int

// HasTime reports whether the transfer carried a hardware timestamp.
func (f StreamFlags) HasTime() bool { return f&hal.FlagHasTime != 0 }

// EndBurst reports whether the transfer ended a burst.
func (f StreamFlags) EndBurst() bool { return f&hal.FlagEndBurst != 0 }

// EndAbrupt reports whether the transfer ended prematurely.
func (f StreamFlags) EndAbrupt() bool { return f&hal.FlagEndAbrupt != 0 }

// OnePacket reports whether the transfer spanned exactly one hardware
// packet.
func (f StreamFlags) OnePacket() bool { return f&hal.FlagOnePacket != 0 }

// MoreFragments reports whether more fragments of the same packet follow.
func (f StreamFlags) MoreFragments() bool { return f&hal.FlagMoreFragments != 0 }

// stream holds the state shared by the Rx and Tx variants: the native
// stream handle, a reference on the owning device, the configured channel
// count, and the activation flag.
//
// A stream is not safe for concurrent use. It may be handed off between
// goroutines between calls, but at most one goroutine may be calling it
// at any instant.
type stream struct {
	d         *dev
	h         hal.Stream
	nchannels int
	active    bool
	flags     int
}

func newStream(d *dev, h hal.Stream, nchannels int) stream {
	d.ref()
	return stream{d: d, h: h, nchannels: nchannels}
}

// MTU returns the stream's maximum transmission unit in number of
// elements: the maximum payload of a single transfer call. Use it as a
// buffer allocation size to best match the underlying implementation.
func (s *stream) MTU() (int, error) {
	var n int
	err := s.d.do(func() { n = s.h.MTU() })
	return n, err
}

// NumChannels returns the number of channels the stream was configured
// for.
func (s *stream) NumChannels() int {
	return s.nchannels
}

// Flags returns the status flags recorded by the most recent transfer.
func (s *stream) Flags() StreamFlags {
	return StreamFlags(s.flags)
}

// Activate enables the stream. timeNs optionally gives an absolute start
// time in nanoseconds; nil starts immediately. Activating an already
// active stream is an error and leaves it unchanged.
func (s *stream) Activate(timeNs *int64) error {
	if s.active {
		return &Error{Code: Other, Message: "stream is already active"}
	}
	flags, t := timeFlags(timeNs)
	if err := s.d.doCode(func() int { return s.h.Activate(flags, t, 0) }); err != nil {
		return err
	}
	s.active = true
	return nil
}

// Deactivate halts the data flow. timeNs optionally gives an absolute
// stop time in nanoseconds; nil stops immediately. Deactivating a stream
// that is not active is an error and leaves it unchanged.
func (s *stream) Deactivate(timeNs *int64) error {
	if !s.active {
		return &Error{Code: Other, Message: "stream is not active"}
	}
	flags, t := timeFlags(timeNs)
	if err := s.d.doCode(func() int { return s.h.Deactivate(flags, t) }); err != nil {
		return err
	}
	s.active = false
	return nil
}

// Close tears the stream down: a still-active stream gets one best-effort
// deactivate whose result is discarded, then the native handle is closed
// and the device reference released. Close is idempotent; calling other
// methods on a closed stream may panic.
func (s *stream) Close() error {
	if s.h == nil {
		return nil
	}
	if s.active {
		s.Deactivate(nil)
		s.active = false
	}
	err := s.d.doCode(s.h.Close)
	s.h = nil
	s.d.unref()
	return err
}

func timeFlags(timeNs *int64) (flags int, t int64) {
	if timeNs != nil {
		return hal.FlagHasTime, *timeNs
	}
	return 0, 0
}
