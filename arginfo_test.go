package soapysdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmehall/go-soapysdr/hal"
)

func TestArgInfoFromHAL(t *testing.T) {
	info := argInfoFromHAL(hal.ArgInfo{
		Key:         "latency",
		Value:       "normal",
		Name:        "Latency",
		Description: "Buffering latency",
		Units:       "",
		Type:        hal.ArgInfoString,
		Options:     []string{"low", "normal", "high"},
		OptionNames: []string{"Low", "", "High"},
	})
	assert.Equal(t, "latency", info.Key)
	assert.Equal(t, "normal", info.Value)
	assert.Equal(t, ArgTypeString, info.Type)
	require.Len(t, info.Options, 3)
	assert.Equal(t, ArgInfoOption{Value: "low", Name: "Low"}, info.Options[0])
	assert.Equal(t, ArgInfoOption{Value: "normal", Name: ""}, info.Options[1])
}

func TestArgInfoOptionalFieldsEmpty(t *testing.T) {
	info := argInfoFromHAL(hal.ArgInfo{Key: "gain", Type: hal.ArgInfoFloat})
	assert.Equal(t, "gain", info.Key)
	assert.Equal(t, "", info.Name)
	assert.Equal(t, "", info.Description)
	assert.Equal(t, "", info.Units)
	assert.Nil(t, info.Options)
}

func TestArgInfoUnknownType(t *testing.T) {
	info := argInfoFromHAL(hal.ArgInfo{Key: "x", Type: hal.ArgInfoType(99)})
	assert.Equal(t, ArgTypeUnknown, info.Type)
	assert.Equal(t, "unknown", info.Type.String())
}

func TestArgInfoMalformedPanics(t *testing.T) {
	assert.Panics(t, func() {
		argInfoFromHAL(hal.ArgInfo{Type: hal.ArgInfoBool})
	}, "missing key")
	assert.Panics(t, func() {
		argInfoFromHAL(hal.ArgInfo{
			Key:         "x",
			Options:     []string{"a", "b"},
			OptionNames: []string{"A"},
		})
	}, "mismatched option arrays")
}

func TestArgTypeString(t *testing.T) {
	assert.Equal(t, "bool", ArgTypeBool.String())
	assert.Equal(t, "int", ArgTypeInt.String())
	assert.Equal(t, "float", ArgTypeFloat.String())
	assert.Equal(t, "string", ArgTypeString.String())
}
