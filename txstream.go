package soapysdr

import (
	"fmt"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// A stream open for transmitting.
//
// Obtain a TxStream with NewTxStream. The type parameter E fixes the
// sample format the stream negotiates with the device; it cannot change
// after creation.
type TxStream[E Sample] struct {
	stream
}

// NewTxStream initializes a transmit stream on the given channels. The
// stream is created inactive; call Activate before writing. The returned
// stream holds a reference on the device and must be closed.
func NewTxStream[E Sample](d *Device, channels []int, args Args) (*TxStream[E], error) {
	h, err := setupStream[E](d.d, Tx, channels, args)
	if err != nil {
		return nil, err
	}
	return &TxStream[E]{stream: newStream(d.d, h, len(channels))}, nil
}

// setupStream negotiates the wire format for element type E and opens the
// native stream. The host type's size is validated against the format's
// reported element size before any trust is placed in the layout mapping.
func setupStream[E Sample](d *dev, dir Direction, channels []int, args Args) (hal.Stream, error) {
	format := FormatOf[E]()
	if size := elementSize[E](); size != format.Size() {
		return nil, &Error{
			Code:    Other,
			Message: fmt.Sprintf("element size %d does not match %s element size %d", size, format, format.Size()),
		}
	}
	var h hal.Stream
	err := d.do(func() { h = d.h.SetupStream(dir, format.String(), channels, args.kwargs()) })
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Write sends samples to the device, one source slice per configured
// channel, all of equal length. It returns the number of elements
// consumed per channel, which may be less than offered when the device
// applies backpressure; a short write is not an error.
//
// timeNs optionally requests that transmission begin at an absolute
// hardware time. Supply it only on the first write of a burst;
// continuation writes must pass nil. endBurst marks the final chunk of a
// burst for devices that require explicit burst framing.
//
// Write panics if the number of buffers differs from the stream's channel
// count, or if the buffers are not all the same length.
func (s *TxStream[E]) Write(buffers [][]E, timeNs *int64, endBurst bool, timeoutUs int64) (int, error) {
	if len(buffers) != s.nchannels {
		panic("soapysdr: buffer count does not match stream channel count")
	}
	numElems := 0
	byteBufs := make([][]byte, len(buffers))
	for i, b := range buffers {
		if i == 0 {
			numElems = len(b)
		} else if len(b) != numElems {
			panic("soapysdr: channel buffers must all be the same length")
		}
		byteBufs[i] = sampleBytes(b)
	}
	flags, t := timeFlags(timeNs)
	if endBurst {
		flags |= hal.FlagEndBurst
	}
	s.flags = flags
	return s.d.doLen(func() int {
		return s.h.Write(byteBufs, numElems, &s.flags, t, timeoutUs)
	})
}

// WriteAll sends the entire contents of the buffers, calling Write as
// often as the device's backpressure requires and advancing every channel
// slice by the previous call's count. timeNs, if any, is supplied only to
// the first underlying write. It returns the first error encountered;
// success means the full input was transferred.
func (s *TxStream[E]) WriteAll(buffers [][]E, timeNs *int64, endBurst bool, timeoutUs int64) error {
	remaining := make([][]E, len(buffers))
	copy(remaining, buffers)
	at := timeNs
	for {
		done := true
		for _, b := range remaining {
			if len(b) > 0 {
				done = false
				break
			}
		}
		if done {
			return nil
		}
		n, err := s.Write(remaining, at, endBurst, timeoutUs)
		if err != nil {
			return err
		}
		at = nil
		for i := range remaining {
			remaining[i] = remaining[i][n:]
		}
	}
}
