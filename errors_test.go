package soapysdr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevinmehall/go-soapysdr/hal"
)

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "timeout", Timeout.String())
	assert.Equal(t, "overflow", Overflow.String())
	assert.Equal(t, "underflow", Underflow.String())
	assert.Equal(t, "not supported", NotSupported.String())
	assert.Equal(t, "error", Other.String())
	assert.Equal(t, "error", ErrorCode(-42).String())
}

func TestCodeFromHAL(t *testing.T) {
	assert.Equal(t, Timeout, codeFromHAL(hal.ErrTimeout))
	assert.Equal(t, Underflow, codeFromHAL(hal.ErrUnderflow))
	assert.Equal(t, Other, codeFromHAL(-99))
	assert.Equal(t, Other, codeFromHAL(0))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Code: Timeout, Message: "read timed out"}
	assert.Equal(t, "soapysdr: timeout: read timed out", err.Error())
}
