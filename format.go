package soapysdr

import (
	"fmt"
	"unsafe"
)

// A Format identifies the wire-level layout of one sample element.
type Format int

const (
	// CF64 is complex 64-bit floats (complex double).
	CF64 Format = iota
	// CF32 is complex 32-bit floats (complex float).
	CF32
	// CS32 is complex signed 32-bit integers.
	CS32
	// CU32 is complex unsigned 32-bit integers.
	CU32
	// CS16 is complex signed 16-bit integers.
	CS16
	// CU16 is complex unsigned 16-bit integers.
	CU16
	// CS12 is complex signed 12-bit integers, packed in 3 bytes.
	CS12
	// CU12 is complex unsigned 12-bit integers, packed in 3 bytes.
	CU12
	// CS8 is complex signed 8-bit integers.
	CS8
	// CU8 is complex unsigned 8-bit integers.
	CU8
	// CS4 is complex signed 4-bit integers, packed in 1 byte.
	CS4
	// CU4 is complex unsigned 4-bit integers, packed in 1 byte.
	CU4
	// F64 is real 64-bit floats (double).
	F64
	// F32 is real 32-bit floats (float).
	F32
	// S32 is real signed 32-bit integers.
	S32
	// U32 is real unsigned 32-bit integers.
	U32
	// S16 is real signed 16-bit integers.
	S16
	// U16 is real unsigned 16-bit integers.
	U16
	// S8 is real signed 8-bit integers.
	S8
	// U8 is real unsigned 8-bit integers.
	U8
)

var formatNames = [...]string{
	CF64: "CF64", CF32: "CF32", CS32: "CS32", CU32: "CU32",
	CS16: "CS16", CU16: "CU16", CS12: "CS12", CU12: "CU12",
	CS8: "CS8", CU8: "CU8", CS4: "CS4", CU4: "CU4",
	F64: "F64", F32: "F32", S32: "S32", U32: "U32",
	S16: "S16", U16: "U16", S8: "S8", U8: "U8",
}

var formatSizes = [...]int{
	CF64: 16, CF32: 8, CS32: 8, CU32: 8,
	CS16: 4, CU16: 4, CS12: 3, CU12: 3,
	CS8: 2, CU8: 2, CS4: 1, CU4: 1,
	F64: 8, F32: 4, S32: 4, U32: 4,
	S16: 2, U16: 2, S8: 1, U8: 1,
}

// ParseFormat returns the Format named by s, for example "CF32".
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("soapysdr: unknown sample format %q", s)
}

// String returns the format's name, for example "CS16".
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Size returns the number of bytes occupied by one element. For the
// packed sub-byte formats this is the packed size of one complex element,
// which does not correspond to any host numeric type.
func (f Format) Size() int {
	if f < 0 || int(f) >= len(formatSizes) {
		return 0
	}
	return formatSizes[f]
}

// Packed reports whether the format packs samples below byte granularity.
// Packed formats have no fixed-layout host representation and cannot be
// used with the Sample type mapping.
func (f Format) Packed() bool {
	switch f {
	case CS12, CU12, CS4, CU4:
		return true
	}
	return false
}

// ComplexInt8 is an I/Q pair of signed 8-bit integers, laid out to match
// the CS8 wire format.
type ComplexInt8 struct{ Re, Im int8 }

// ComplexInt16 is an I/Q pair of signed 16-bit integers, laid out to
// match the CS16 wire format.
type ComplexInt16 struct{ Re, Im int16 }

// ComplexInt32 is an I/Q pair of signed 32-bit integers, laid out to
// match the CS32 wire format.
type ComplexInt32 struct{ Re, Im int32 }

// ComplexUint8 is an I/Q pair of unsigned 8-bit integers, laid out to
// match the CU8 wire format.
type ComplexUint8 struct{ Re, Im uint8 }

// ComplexUint16 is an I/Q pair of unsigned 16-bit integers, laid out to
// match the CU16 wire format.
type ComplexUint16 struct{ Re, Im uint16 }

// ComplexUint32 is an I/Q pair of unsigned 32-bit integers, laid out to
// match the CU32 wire format.
type ComplexUint32 struct{ Re, Im uint32 }

// Sample is the closed set of host element types that may carry stream
// samples. Each type's size, alignment, and component ordering match the
// wire layout of exactly one Format; the packed sub-byte formats are
// deliberately excluded because no host type can represent them.
type Sample interface {
	int8 | int16 | int32 | uint8 | uint16 | uint32 |
		float32 | float64 | complex64 | complex128 |
		ComplexInt8 | ComplexInt16 | ComplexInt32 |
		ComplexUint8 | ComplexUint16 | ComplexUint32
}

// FormatOf returns the wire format negotiated for element type E.
func FormatOf[E Sample]() Format {
	var e E
	switch any(e).(type) {
	case int8:
		return S8
	case int16:
		return S16
	case int32:
		return S32
	case uint8:
		return U8
	case uint16:
		return U16
	case uint32:
		return U32
	case float32:
		return F32
	case float64:
		return F64
	case complex64:
		return CF32
	case complex128:
		return CF64
	case ComplexInt8:
		return CS8
	case ComplexInt16:
		return CS16
	case ComplexInt32:
		return CS32
	case ComplexUint8:
		return CU8
	case ComplexUint16:
		return CU16
	case ComplexUint32:
		return CU32
	}
	panic("soapysdr: unmapped sample type")
}

// elementSize returns the in-memory size of one element of type E.
func elementSize[E Sample]() int {
	var e E
	return int(unsafe.Sizeof(e))
}

// sampleBytes reinterprets a sample slice as the byte buffer passed to
// the HAL. The element types admitted by Sample make this cast safe.
func sampleBytes[E Sample](buf []E) []byte {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*int(unsafe.Sizeof(buf[0])))
}
