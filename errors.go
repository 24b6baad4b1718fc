package soapysdr

import (
	"fmt"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// An ErrorCode identifies a class of device or stream failure.
type ErrorCode int

const (
	// Returned when a stream call exceeded its timeout.
	Timeout ErrorCode = hal.ErrTimeout

	// Returned for non-specific stream errors.
	StreamError ErrorCode = hal.ErrStream

	// Returned when a read saw data corruption, for example a malformed
	// packet from the driver.
	Corruption ErrorCode = hal.ErrCorruption

	// Returned when a read saw an overflow condition, for example a full
	// internal buffer.
	Overflow ErrorCode = hal.ErrOverflow

	// Returned when the requested operation or flag setting is not
	// supported by the underlying implementation.
	NotSupported ErrorCode = hal.ErrNotSupported

	// Returned when the device encountered a stream time that was late
	// or too early to process.
	TimeError ErrorCode = hal.ErrTimeError

	// Returned when a write caused an underflow condition, for example
	// an interrupted continuous stream.
	Underflow ErrorCode = hal.ErrUnderflow

	// Error without a specific code, see the error message.
	Other ErrorCode = 0
)

func (c ErrorCode) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case StreamError:
		return "stream error"
	case Corruption:
		return "corruption"
	case Overflow:
		return "overflow"
	case NotSupported:
		return "not supported"
	case TimeError:
		return "time error"
	case Underflow:
		return "underflow"
	case Other:
		return "error"
	}
	return "error"
}

// codeFromHAL translates a native status code. Codes this binding does not
// recognize collapse to Other.
func codeFromHAL(code int) ErrorCode {
	switch code {
	case hal.ErrTimeout, hal.ErrStream, hal.ErrCorruption, hal.ErrOverflow,
		hal.ErrNotSupported, hal.ErrTimeError, hal.ErrUnderflow:
		return ErrorCode(code)
	}
	return Other
}

// An Error combines an error code with the message recorded by the native
// layer.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("soapysdr: %s: %s", e.Code, e.Message)
}
