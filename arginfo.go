package soapysdr

import "github.com/kevinmehall/go-soapysdr/hal"

// ArgType is the data type of a configurable argument.
type ArgType int

const (
	ArgTypeBool ArgType = iota
	ArgTypeInt
	ArgTypeFloat
	ArgTypeString

	// ArgTypeUnknown is reported for native type tags this binding does
	// not recognize, so that newer drivers degrade gracefully.
	ArgTypeUnknown
)

func (t ArgType) String() string {
	switch t {
	case ArgTypeBool:
		return "bool"
	case ArgTypeInt:
		return "int"
	case ArgTypeFloat:
		return "float"
	case ArgTypeString:
		return "string"
	}
	return "unknown"
}

// An ArgInfoOption is one entry of an argument's discrete option set.
type ArgInfoOption struct {
	// Value is the option as passed in arguments.
	Value string

	// Name is an optional displayable name; empty if the driver provides
	// none.
	Name string
}

// ArgInfo describes one configurable argument: its type, default, display
// hints, and allowed options.
type ArgInfo struct {
	// Key identifies the argument.
	Key string

	// Value is the default used when the argument is not specified.
	Value string

	// Name is an optional displayable name.
	Name string

	// Description is an optional brief description.
	Description string

	// Units is an optional unit string: dB, Hz, etc.
	Units string

	// Type is the argument's data type.
	Type ArgType

	// Options is a discrete set of possible values. When non-empty, the
	// argument should be restricted to this set.
	Options []ArgInfoOption
}

// argInfoFromHAL marshals one native descriptor record. A record with an
// empty key, or with mismatched option arrays, is malformed collaborator
// data and panics.
func argInfoFromHAL(rec hal.ArgInfo) ArgInfo {
	if rec.Key == "" {
		panic("soapysdr: HAL returned arg info without a key")
	}
	if len(rec.Options) != len(rec.OptionNames) {
		panic("soapysdr: HAL returned mismatched arg info option arrays")
	}
	info := ArgInfo{
		Key:         rec.Key,
		Value:       rec.Value,
		Name:        rec.Name,
		Description: rec.Description,
		Units:       rec.Units,
		Type:        argTypeFromHAL(rec.Type),
	}
	if len(rec.Options) > 0 {
		info.Options = make([]ArgInfoOption, len(rec.Options))
		for i, v := range rec.Options {
			info.Options[i] = ArgInfoOption{Value: v, Name: rec.OptionNames[i]}
		}
	}
	return info
}

func argTypeFromHAL(t hal.ArgInfoType) ArgType {
	switch t {
	case hal.ArgInfoBool:
		return ArgTypeBool
	case hal.ArgInfoInt:
		return ArgTypeInt
	case hal.ArgInfoFloat:
		return ArgTypeFloat
	case hal.ArgInfoString:
		return ArgTypeString
	}
	return ArgTypeUnknown
}

func argInfoListFromHAL(recs []hal.ArgInfo) []ArgInfo {
	infos := make([]ArgInfo, len(recs))
	for i, rec := range recs {
		infos[i] = argInfoFromHAL(rec)
	}
	return infos
}
