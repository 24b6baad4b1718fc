// Package hal defines the hardware-abstraction surface that SDR drivers
// implement and the soapysdr package wraps.
//
// The interfaces in this package mirror the native, handle-based HAL
// convention: property calls return bare values and record success or
// failure in the handle's last-status/last-error pair, while stream calls
// return an integer status or length code directly. Drivers are expected
// to be linked into the application and register themselves with Register,
// usually from an init function.
package hal

// Direction selects the transmit or receive path of a channel.
type Direction int

const (
	Rx Direction = iota
	Tx
)

func (d Direction) String() string {
	if d == Tx {
		return "Tx"
	}
	return "Rx"
}

// Error codes returned by stream calls. Zero and positive values are
// success; these negative values select a specific failure.
const (
	ErrTimeout      = -1
	ErrStream       = -2
	ErrCorruption   = -3
	ErrOverflow     = -4
	ErrNotSupported = -5
	ErrTimeError    = -6
	ErrUnderflow    = -7
)

// Flag bits passed to and returned from stream calls.
const (
	FlagEndBurst      = 1 << 1
	FlagHasTime       = 1 << 2
	FlagEndAbrupt     = 1 << 3
	FlagOnePacket     = 1 << 4
	FlagMoreFragments = 1 << 5
	FlagWaitTrigger   = 1 << 6
)

// Kwargs is the native key/value list representation: two parallel slices
// of equal length. An empty Kwargs has both slices nil.
type Kwargs struct {
	Keys []string
	Vals []string
}

// Get returns the value for the first matching key.
func (k Kwargs) Get(key string) (string, bool) {
	for i, kk := range k.Keys {
		if kk == key {
			return k.Vals[i], true
		}
	}
	return "", false
}

// Set overwrites the value of the first matching key, or appends the pair
// if the key is absent.
func (k *Kwargs) Set(key, value string) {
	for i, kk := range k.Keys {
		if kk == key {
			k.Vals[i] = value
			return
		}
	}
	k.Keys = append(k.Keys, key)
	k.Vals = append(k.Vals, value)
}

// Clone returns a deep copy of k.
func (k Kwargs) Clone() Kwargs {
	if len(k.Keys) == 0 {
		return Kwargs{}
	}
	c := Kwargs{
		Keys: make([]string, len(k.Keys)),
		Vals: make([]string, len(k.Vals)),
	}
	copy(c.Keys, k.Keys)
	copy(c.Vals, k.Vals)
	return c
}

// ArgInfoType is the native data-type tag of an ArgInfo record. Values
// outside the defined set may appear when the driver is newer than this
// binding.
type ArgInfoType int

const (
	ArgInfoBool ArgInfoType = iota
	ArgInfoInt
	ArgInfoFloat
	ArgInfoString
)

// ArgInfo is the native argument-descriptor record. Key and Value are
// required; Name, Description and Units may be empty. Options and
// OptionNames are parallel arrays of equal length.
type ArgInfo struct {
	Key         string
	Value       string
	Name        string
	Description string
	Units       string
	Type        ArgInfoType
	Options     []string
	OptionNames []string
}

// Range describes the bounds of a numeric device property. A Step of zero
// means the range is continuous.
type Range struct {
	Minimum float64
	Maximum float64
	Step    float64
}

// Device is one opened native device handle.
//
// Property calls report success or failure through the LastStatus and
// LastError pair, which reflects the most recent call issued on the
// handle. A caller sharing a handle must serialize each call with its
// status check; the soapysdr package does this for every call site.
//
// Streams created by SetupStream record their status on this handle too.
type Device interface {
	// Identification
	DriverKey() string
	HardwareKey() string
	HardwareInfo() Kwargs

	// Channels
	FrontendMapping(dir Direction) string
	SetFrontendMapping(dir Direction, mapping string)
	NumChannels(dir Direction) int
	ChannelInfo(dir Direction, channel int) Kwargs
	FullDuplex(dir Direction, channel int) bool

	// Stream negotiation
	StreamFormats(dir Direction, channel int) []string
	NativeStreamFormat(dir Direction, channel int) (format string, fullScale float64)
	StreamArgsInfo(dir Direction, channel int) []ArgInfo
	SetupStream(dir Direction, format string, channels []int, args Kwargs) Stream

	// Antennas
	Antennas(dir Direction, channel int) []string
	SetAntenna(dir Direction, channel int, name string)
	Antenna(dir Direction, channel int) string

	// Frontend corrections
	HasDCOffsetMode(dir Direction, channel int) bool
	SetDCOffsetMode(dir Direction, channel int, automatic bool)
	DCOffsetMode(dir Direction, channel int) bool
	HasDCOffset(dir Direction, channel int) bool
	SetDCOffset(dir Direction, channel int, offsetI, offsetQ float64)
	DCOffset(dir Direction, channel int) (offsetI, offsetQ float64)
	HasIQBalance(dir Direction, channel int) bool
	SetIQBalance(dir Direction, channel int, balanceI, balanceQ float64)
	IQBalance(dir Direction, channel int) (balanceI, balanceQ float64)

	// Gain
	ListGains(dir Direction, channel int) []string
	HasGainMode(dir Direction, channel int) bool
	SetGainMode(dir Direction, channel int, automatic bool)
	GainMode(dir Direction, channel int) bool
	SetGain(dir Direction, channel int, gain float64)
	Gain(dir Direction, channel int) float64
	GainRange(dir Direction, channel int) Range
	SetGainElement(dir Direction, channel int, name string, gain float64)
	GainElement(dir Direction, channel int, name string) float64
	GainElementRange(dir Direction, channel int, name string) Range

	// Frequency
	FrequencyRange(dir Direction, channel int) []Range
	Frequency(dir Direction, channel int) float64
	SetFrequency(dir Direction, channel int, frequency float64, args Kwargs)
	ListFrequencies(dir Direction, channel int) []string
	FrequencyRangeComponent(dir Direction, channel int, name string) []Range
	FrequencyComponent(dir Direction, channel int, name string) float64
	SetFrequencyComponent(dir Direction, channel int, name string, frequency float64, args Kwargs)
	FrequencyArgsInfo(dir Direction, channel int) []ArgInfo

	// Sample rate and bandwidth
	SampleRate(dir Direction, channel int) float64
	SetSampleRate(dir Direction, channel int, rate float64)
	SampleRateRange(dir Direction, channel int) []Range
	Bandwidth(dir Direction, channel int) float64
	SetBandwidth(dir Direction, channel int, bandwidth float64)
	BandwidthRange(dir Direction, channel int) []Range

	// Clocking and time
	ListClockSources() []string
	SetClockSource(source string)
	ClockSource() string
	ListTimeSources() []string
	SetTimeSource(source string)
	TimeSource() string
	HasHardwareTime(what string) bool
	HardwareTime(what string) int64
	SetHardwareTime(what string, timeNs int64)

	// Opaque settings
	SettingInfo() []ArgInfo
	ReadSetting(key string) string
	WriteSetting(key, value string)

	// Per-call status of the most recent property call on this handle.
	LastStatus() int
	LastError() string

	// Unmake releases the handle. No calls may follow.
	Unmake()
}

// Stream is one native stream handle. Stream calls return the error code
// constants above; Read and Write return the element count on success.
// A Stream is not safe for concurrent use.
type Stream interface {
	// MTU reports the recommended maximum elements per transfer. Status
	// is recorded on the owning Device handle.
	MTU() int

	Activate(flags int, timeNs int64, numElems int) int
	Deactivate(flags int, timeNs int64) int

	// Read fills one byte buffer per channel with up to numElems elements
	// and returns the element count or a negative error code. flags and
	// timeNs receive the transfer's status flags and hardware timestamp.
	Read(buffers [][]byte, numElems int, flags *int, timeNs *int64, timeoutUs int64) int

	// Write consumes up to numElems elements from one byte buffer per
	// channel and returns the element count or a negative error code.
	Write(buffers [][]byte, numElems int, flags *int, timeNs int64, timeoutUs int64) int

	Close() int
}
