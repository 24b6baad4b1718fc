package soapysdr

// A stream open for receiving.
//
// Obtain an RxStream with NewRxStream. The type parameter E fixes the
// sample format the stream negotiates with the device; it cannot change
// after creation.
type RxStream[E Sample] struct {
	stream
	timeNs int64
}

// NewRxStream initializes a receive stream on the given channels. The
// stream is created inactive; call Activate before reading. The returned
// stream holds a reference on the device and must be closed.
func NewRxStream[E Sample](d *Device, channels []int, args Args) (*RxStream[E], error) {
	h, err := setupStream[E](d.d, Rx, channels, args)
	if err != nil {
		return nil, err
	}
	return &RxStream[E]{stream: newStream(d.d, h, len(channels))}, nil
}

// Read fills the provided buffers with samples, one destination slice per
// configured channel, and returns the number of elements transferred per
// channel. At most the length of the shortest buffer is requested, and
// fewer elements than requested may be returned; a short read is not an
// error. The transfer's timestamp and status flags are available from
// Timestamp and Flags afterwards.
//
// Read panics if the number of buffers differs from the stream's channel
// count.
func (s *RxStream[E]) Read(buffers [][]E, timeoutUs int64) (int, error) {
	if len(buffers) != s.nchannels {
		panic("soapysdr: buffer count does not match stream channel count")
	}
	numElems := 0
	for i, b := range buffers {
		if i == 0 || len(b) < numElems {
			numElems = len(b)
		}
	}
	byteBufs := make([][]byte, len(buffers))
	for i, b := range buffers {
		byteBufs[i] = sampleBytes(b)
	}
	s.flags = 0
	return s.d.doLen(func() int {
		return s.h.Read(byteBufs, numElems, &s.flags, &s.timeNs, timeoutUs)
	})
}

// Timestamp returns the hardware timestamp attached to the most recent
// read, and whether the device attached one at all.
func (s *RxStream[E]) Timestamp() (int64, bool) {
	return s.timeNs, s.Flags().HasTime()
}
