package soapysdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	for _, tt := range []struct {
		format Format
		size   int
	}{
		{F32, 4},
		{CF32, 8},
		{S8, 1},
		{CS16, 4},
		{CS12, 3},
		{CS4, 1},
		{CF64, 16},
		{U16, 2},
	} {
		assert.Equal(t, tt.size, tt.format.Size(), "%s", tt.format)
	}
}

func TestFormatStringParse(t *testing.T) {
	for f := CF64; f <= U8; f++ {
		name := f.String()
		parsed, err := ParseFormat(name)
		require.NoError(t, err, "%s", name)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseFormat("CS24")
	assert.Error(t, err)
	_, err = ParseFormat("")
	assert.Error(t, err)
}

func TestFormatPacked(t *testing.T) {
	assert.True(t, CS12.Packed())
	assert.True(t, CU12.Packed())
	assert.True(t, CS4.Packed())
	assert.True(t, CU4.Packed())
	assert.False(t, CF32.Packed())
	assert.False(t, S8.Packed())
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, CF32, FormatOf[complex64]())
	assert.Equal(t, CF64, FormatOf[complex128]())
	assert.Equal(t, CS16, FormatOf[ComplexInt16]())
	assert.Equal(t, CS8, FormatOf[ComplexInt8]())
	assert.Equal(t, CU32, FormatOf[ComplexUint32]())
	assert.Equal(t, F32, FormatOf[float32]())
	assert.Equal(t, S16, FormatOf[int16]())
	assert.Equal(t, U8, FormatOf[uint8]())
}

// The whole point of the Sample constraint is that the in-memory size of
// every admitted element type equals its wire format's element size, so
// buffers can be reinterpreted without copying.
func TestSampleLayoutMatchesFormat(t *testing.T) {
	assert.Equal(t, CF32.Size(), elementSize[complex64]())
	assert.Equal(t, CF64.Size(), elementSize[complex128]())
	assert.Equal(t, CS8.Size(), elementSize[ComplexInt8]())
	assert.Equal(t, CS16.Size(), elementSize[ComplexInt16]())
	assert.Equal(t, CS32.Size(), elementSize[ComplexInt32]())
	assert.Equal(t, CU8.Size(), elementSize[ComplexUint8]())
	assert.Equal(t, CU16.Size(), elementSize[ComplexUint16]())
	assert.Equal(t, CU32.Size(), elementSize[ComplexUint32]())
	assert.Equal(t, F64.Size(), elementSize[float64]())
	assert.Equal(t, S32.Size(), elementSize[int32]())
}

func TestSampleBytes(t *testing.T) {
	buf := []ComplexInt16{{Re: 0x0102, Im: 0x0304}, {Re: -1, Im: 0x7fff}}
	b := sampleBytes(buf)
	require.Len(t, b, 8)

	// Mutating the byte view must be visible through the sample view.
	b[0] = 0x55
	b[1] = 0x55
	assert.Equal(t, ComplexInt16{Re: 0x5555, Im: 0x0304}, buf[0])

	assert.Nil(t, sampleBytes([]complex64(nil)))
}
