package soapysdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmehall/go-soapysdr/hal"
	"github.com/kevinmehall/go-soapysdr/hal/haltest"
)

func TestRxStreamRead(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()
	assert.Equal(t, 1, rx.NumChannels())
	assert.Equal(t, "CF32", h.LastStream.Format())

	want := []complex64{1 + 2i, 3 + 4i, 5 + 6i}
	h.LastStream.EnqueueRx(0, sampleBytes(want))

	require.NoError(t, rx.Activate(nil))
	buf := make([]complex64, 8)
	n, err := rx.Read([][]complex64{buf}, 100_000)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, want, buf[:n])
}

func TestRxStreamReadTwoChannels(t *testing.T) {
	h := haltest.NewDevice()
	h.RxChannels = 2
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[ComplexInt16](d, []int{0, 1}, Args{})
	require.NoError(t, err)
	defer rx.Close()

	ch0 := []ComplexInt16{{1, 2}, {3, 4}}
	ch1 := []ComplexInt16{{5, 6}, {7, 8}}
	h.LastStream.EnqueueRx(0, sampleBytes(ch0))
	h.LastStream.EnqueueRx(1, sampleBytes(ch1))

	require.NoError(t, rx.Activate(nil))
	buf0 := make([]ComplexInt16, 4)
	buf1 := make([]ComplexInt16, 4)
	n, err := rx.Read([][]ComplexInt16{buf0, buf1}, 100_000)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, ch0, buf0[:n])
	assert.Equal(t, ch1, buf1[:n])
}

func TestRxStreamShortRead(t *testing.T) {
	h := haltest.NewDevice()
	h.GenerateRx = true
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()
	h.LastStream.MaxChunk = 5

	require.NoError(t, rx.Activate(nil))
	buf := make([]complex64, 64)
	n, err := rx.Read([][]complex64{buf}, 100_000)
	require.NoError(t, err, "a short read is not an error")
	assert.Equal(t, 5, n)
}

func TestRxStreamReadTimeout(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()

	require.NoError(t, rx.Activate(nil))
	buf := make([]complex64, 16)
	_, err = rx.Read([][]complex64{buf}, 100_000)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, Timeout, serr.Code)
}

func TestRxStreamTimestamp(t *testing.T) {
	h := haltest.NewDevice()
	h.GenerateRx = true
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()
	h.LastStream.AttachTime = true
	h.LastStream.NextTimeNs = 555_000_000

	require.NoError(t, rx.Activate(nil))
	buf := make([]complex64, 4)
	_, err = rx.Read([][]complex64{buf}, 100_000)
	require.NoError(t, err)

	tm, ok := rx.Timestamp()
	require.True(t, ok)
	assert.Equal(t, int64(555_000_000), tm)
	assert.True(t, rx.Flags().HasTime())

	// Flags are per transfer; a read without a timestamp clears them.
	h.LastStream.AttachTime = false
	_, err = rx.Read([][]complex64{buf}, 100_000)
	require.NoError(t, err)
	_, ok = rx.Timestamp()
	assert.False(t, ok)
}

func TestRxStreamBufferCountPanics(t *testing.T) {
	d := openTestDevice(t, haltest.NewDevice())
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()

	buf := make([]complex64, 4)
	assert.Panics(t, func() {
		rx.Read([][]complex64{buf, buf}, 100_000)
	}, "a buffer count mismatch is a caller bug, not an error value")
}

func TestActivateDeactivate(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()

	err = rx.Deactivate(nil)
	require.Error(t, err, "deactivating an inactive stream")
	assert.Equal(t, 0, h.LastStream.Deactivates)

	require.NoError(t, rx.Activate(nil))
	assert.True(t, h.LastStream.Active())

	err = rx.Activate(nil)
	require.Error(t, err, "activating an active stream")
	assert.True(t, h.LastStream.Active(), "failed activate leaves the stream active")
	assert.Equal(t, 1, h.LastStream.Activates, "the double activate never reaches the device")

	require.NoError(t, rx.Deactivate(nil))
	assert.False(t, h.LastStream.Active())
}

func TestActivateDeviceError(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()
	h.LastStream.ActivateErr = hal.ErrNotSupported

	err = rx.Activate(nil)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, NotSupported, serr.Code)
	assert.False(t, h.LastStream.Active())

	// The stream is still inactive, so a later activate may succeed.
	h.LastStream.ActivateErr = 0
	require.NoError(t, rx.Activate(nil))
}

func TestStreamSetupFailure(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	h.FailNext("no free DMA channels")
	_, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "no free DMA channels", serr.Message)
	assert.Equal(t, 0, h.Unmakes, "the device handle is unaffected")
}

func TestStreamMTU(t *testing.T) {
	h := haltest.NewDevice()
	h.StreamMTU = 4096
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer rx.Close()

	mtu, err := rx.MTU()
	require.NoError(t, err)
	assert.Equal(t, 4096, mtu)
}

func TestTxStreamWrite(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	tx, err := NewTxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer tx.Close()

	require.NoError(t, tx.Activate(nil))
	samples := []complex64{1, 2i, 3 + 3i}
	n, err := tx.Write([][]complex64{samples}, nil, false, 100_000)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, sampleBytes(samples), h.LastStream.Written(0))

	call := h.LastStream.WriteCalls[0]
	assert.Equal(t, 3, call.NumElems)
	assert.Zero(t, call.Flags&hal.FlagHasTime)
	assert.Zero(t, call.Flags&hal.FlagEndBurst)
}

func TestTxStreamWriteBurst(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	tx, err := NewTxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer tx.Close()
	require.NoError(t, tx.Activate(nil))

	at := int64(1_000_000)
	_, err = tx.Write([][]complex64{{1, 2, 3}}, &at, true, 100_000)
	require.NoError(t, err)

	call := h.LastStream.WriteCalls[0]
	assert.NotZero(t, call.Flags&hal.FlagHasTime)
	assert.NotZero(t, call.Flags&hal.FlagEndBurst)
	assert.Equal(t, at, call.TimeNs)
}

func TestTxStreamWritePanics(t *testing.T) {
	d := openTestDevice(t, haltest.NewDevice())
	defer d.Close()

	tx, err := NewTxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer tx.Close()

	assert.Panics(t, func() {
		tx.Write([][]complex64{{1}, {1}}, nil, false, 100_000)
	}, "buffer count mismatch")

	h2 := haltest.NewDevice()
	h2.TxChannels = 2
	d2 := openTestDevice(t, h2)
	defer d2.Close()
	tx2, err := NewTxStream[complex64](d2, []int{0, 1}, Args{})
	require.NoError(t, err)
	defer tx2.Close()

	assert.Panics(t, func() {
		tx2.Write([][]complex64{{1, 2}, {1}}, nil, false, 100_000)
	}, "unequal channel buffer lengths")
}

func TestTxStreamWriteAll(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	tx, err := NewTxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer tx.Close()
	require.NoError(t, tx.Activate(nil))
	h.LastStream.MaxChunk = 3

	samples := make([]complex64, 8)
	for i := range samples {
		samples[i] = complex(float32(i), 0)
	}
	at := int64(2_000_000)
	require.NoError(t, tx.WriteAll([][]complex64{samples}, &at, true, 100_000))

	assert.Equal(t, sampleBytes(samples), h.LastStream.Written(0), "every element arrives exactly once")

	calls := h.LastStream.WriteCalls
	require.Len(t, calls, 3)
	for i, call := range calls {
		if i == 0 {
			assert.NotZero(t, call.Flags&hal.FlagHasTime, "the start time goes with the first write only")
			assert.Equal(t, at, call.TimeNs)
		} else {
			assert.Zero(t, call.Flags&hal.FlagHasTime)
		}
		assert.NotZero(t, call.Flags&hal.FlagEndBurst)
	}
}

func TestTxStreamWriteError(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	tx, err := NewTxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	defer tx.Close()
	require.NoError(t, tx.Activate(nil))
	h.LastStream.WriteErr = hal.ErrUnderflow

	_, err = tx.Write([][]complex64{{1, 2}}, nil, false, 100_000)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, Underflow, serr.Code)
}

func TestStreamCloseActive(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	require.NoError(t, rx.Activate(nil))

	require.NoError(t, rx.Close())
	assert.Equal(t, 1, h.LastStream.Deactivates, "an active stream gets exactly one deactivate attempt")
	assert.Equal(t, 1, h.LastStream.Closes)

	require.NoError(t, rx.Close(), "closing twice is a no-op")
	assert.Equal(t, 1, h.LastStream.Closes)
}

func TestStreamCloseDeactivateFailureDiscarded(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	require.NoError(t, rx.Activate(nil))
	h.LastStream.DeactivateErr = hal.ErrTimeout

	require.NoError(t, rx.Close(), "a failing deactivate does not keep the stream from closing")
	assert.Equal(t, 1, h.LastStream.Deactivates)
	assert.Equal(t, 1, h.LastStream.Closes)
}

func TestStreamCloseInactive(t *testing.T) {
	h := haltest.NewDevice()
	d := openTestDevice(t, h)
	defer d.Close()

	rx, err := NewRxStream[complex64](d, []int{0}, Args{})
	require.NoError(t, err)
	require.NoError(t, rx.Close())
	assert.Equal(t, 0, h.LastStream.Deactivates, "an inactive stream is closed without deactivation")
	assert.Equal(t, 1, h.LastStream.Closes)
}
