package haltest

import "github.com/kevinmehall/go-soapysdr/hal"

// A TransferCall records the parameters of one Read or Write call.
type TransferCall struct {
	NumElems int
	Flags    int
	TimeNs   int64
}

// Stream is one simulated stream handle. Transmitted data accumulates in
// per-channel buffers; received data is served from queued bytes, or
// generated as zeros when Generate is set.
type Stream struct {
	dev       *Device
	dir       hal.Direction
	format    string
	elemSize  int
	nchannels int
	active    bool

	// MaxChunk caps the number of elements served per Read or Write
	// call; zero means unlimited. Useful for exercising short-transfer
	// handling.
	MaxChunk int

	// Generate makes Read produce zero samples when no data is queued
	// instead of timing out.
	Generate bool

	// AttachTime makes Read report NextTimeNs as a hardware timestamp.
	AttachTime bool
	NextTimeNs int64

	// Injected error codes for the respective calls; zero means success.
	ActivateErr   int
	DeactivateErr int
	ReadErr       int
	WriteErr      int

	// Counters and call records.
	Activates   int
	Deactivates int
	Closes      int
	ReadCalls   []TransferCall
	WriteCalls  []TransferCall

	rx      [][]byte
	written [][]byte
}

// Format returns the wire format the stream was set up with.
func (s *Stream) Format() string { return s.format }

// Active reports whether the simulated device considers the stream
// active.
func (s *Stream) Active() bool { return s.active }

// EnqueueRx appends receive data for one channel. The data is served by
// subsequent Read calls, interleaved across channels element by element
// as the smallest queued amount allows.
func (s *Stream) EnqueueRx(channel int, data []byte) {
	s.rx[channel] = append(s.rx[channel], data...)
}

// Written returns the bytes transmitted so far on one channel.
func (s *Stream) Written(channel int) []byte {
	return s.written[channel]
}

func (s *Stream) MTU() int {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.dev.call()
	return s.dev.StreamMTU
}

func (s *Stream) Activate(flags int, timeNs int64, numElems int) int {
	s.Activates++
	if s.ActivateErr != 0 {
		s.dev.mu.Lock()
		s.dev.errMsg = "activate failed"
		s.dev.mu.Unlock()
		return s.ActivateErr
	}
	s.active = true
	return 0
}

func (s *Stream) Deactivate(flags int, timeNs int64) int {
	s.Deactivates++
	if s.DeactivateErr != 0 {
		s.dev.mu.Lock()
		s.dev.errMsg = "deactivate failed"
		s.dev.mu.Unlock()
		return s.DeactivateErr
	}
	s.active = false
	return 0
}

func (s *Stream) Read(buffers [][]byte, numElems int, flags *int, timeNs *int64, timeoutUs int64) int {
	s.ReadCalls = append(s.ReadCalls, TransferCall{NumElems: numElems, Flags: *flags})
	if s.ReadErr != 0 {
		s.dev.mu.Lock()
		s.dev.errMsg = "read failed"
		s.dev.mu.Unlock()
		return s.ReadErr
	}
	n := numElems
	if s.MaxChunk > 0 && n > s.MaxChunk {
		n = s.MaxChunk
	}
	queued := -1
	for _, q := range s.rx {
		if e := len(q) / s.elemSize; queued < 0 || e < queued {
			queued = e
		}
	}
	switch {
	case queued > 0:
		if n > queued {
			n = queued
		}
		for i := range buffers {
			copy(buffers[i], s.rx[i][:n*s.elemSize])
			s.rx[i] = s.rx[i][n*s.elemSize:]
		}
	case s.Generate:
		for i := range buffers {
			b := buffers[i][:n*s.elemSize]
			for j := range b {
				b[j] = 0
			}
		}
	default:
		return hal.ErrTimeout
	}
	*flags = 0
	if s.AttachTime {
		*flags |= hal.FlagHasTime
		*timeNs = s.NextTimeNs
	}
	return n
}

func (s *Stream) Write(buffers [][]byte, numElems int, flags *int, timeNs int64, timeoutUs int64) int {
	s.WriteCalls = append(s.WriteCalls, TransferCall{NumElems: numElems, Flags: *flags, TimeNs: timeNs})
	if s.WriteErr != 0 {
		s.dev.mu.Lock()
		s.dev.errMsg = "write failed"
		s.dev.mu.Unlock()
		return s.WriteErr
	}
	n := numElems
	if s.MaxChunk > 0 && n > s.MaxChunk {
		n = s.MaxChunk
	}
	for i := range buffers {
		s.written[i] = append(s.written[i], buffers[i][:n*s.elemSize]...)
	}
	return n
}

func (s *Stream) Close() int {
	s.Closes++
	s.active = false
	return 0
}
