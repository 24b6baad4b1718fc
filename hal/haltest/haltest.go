// Package haltest provides an in-memory HAL driver for testing and for
// running the demos without hardware.
//
// A Driver serves a fixed set of simulated Devices. Devices honor the
// full property surface with plain stored values, and their streams loop
// transmitted data into an internal buffer and produce either queued or
// generated receive data. Chunk limits, error codes, and property-call
// failures can be injected to exercise the wrapper's transfer and error
// paths.
package haltest

import (
	"fmt"
	"sync"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// Driver is an in-memory hal.Driver.
type Driver struct {
	devices []*Device

	// MakeErr, when set, is returned by every Make call.
	MakeErr error
}

// NewDriver returns a driver serving the given simulated devices.
func NewDriver(devices ...*Device) *Driver {
	return &Driver{devices: devices}
}

// Enumerate returns the identification arguments of every device whose
// pairs match all filter pairs. The "driver" key of the filter is ignored
// here; the registry dispatches on it.
func (d *Driver) Enumerate(filter hal.Kwargs) ([]hal.Kwargs, error) {
	var found []hal.Kwargs
	for _, dev := range d.devices {
		if dev.matches(filter) {
			found = append(found, dev.ID.Clone())
		}
	}
	return found, nil
}

// Make opens the first device matching args.
func (d *Driver) Make(args hal.Kwargs) (hal.Device, error) {
	if d.MakeErr != nil {
		return nil, d.MakeErr
	}
	for _, dev := range d.devices {
		if dev.matches(args) {
			dev.mu.Lock()
			dev.Makes++
			dev.mu.Unlock()
			hal.Log(hal.LogInfo, "haltest: opened "+dev.label())
			return dev, nil
		}
	}
	return nil, hal.ErrNoDevice
}

func (dev *Device) matches(filter hal.Kwargs) bool {
	for i, k := range filter.Keys {
		if k == "driver" {
			continue
		}
		v, ok := dev.ID.Get(k)
		if !ok || v != filter.Vals[i] {
			return false
		}
	}
	return true
}

func (dev *Device) label() string {
	if s, ok := dev.ID.Get("serial"); ok {
		return "device serial=" + s
	}
	return "device"
}

type chanKey struct {
	dir hal.Direction
	ch  int
}

type chanState struct {
	antenna   string
	frequency float64
	rate      float64
	bandwidth float64
	gain      float64
	gainMode  bool
	dcMode    bool
	dcI, dcQ  float64
	iqI, iqQ  float64
	gains     map[string]float64
	comps     map[string]float64
}

// Device is one simulated device handle. The exported configuration
// fields should be set before the device is used; the counters may be
// read at any time.
type Device struct {
	// ID holds the identification arguments matched by Enumerate and
	// Make, for example a serial number.
	ID hal.Kwargs

	// Info is returned by HardwareInfo.
	Info hal.Kwargs

	Driver   string // returned by DriverKey
	Hardware string // returned by HardwareKey

	RxChannels int
	TxChannels int

	AntennaNames []string
	GainNames    []string
	FreqRanges   []hal.Range
	RateRanges   []hal.Range
	BWRanges     []hal.Range
	GainSpan     hal.Range
	Formats      []string
	NativeFmt    string
	FullScale    float64
	ClockSources []string
	TimeSources  []string
	StreamMTU    int

	// StreamArgs and Settings descriptors returned by the respective
	// info calls.
	StreamArgs  []hal.ArgInfo
	SettingDesc []hal.ArgInfo

	// GenerateRx presets the Generate flag of new streams, so receive
	// calls produce samples without queued data.
	GenerateRx bool

	// Counters.
	Makes   int
	Unmakes int

	// LastStream is the most recently set up stream, for inspection by
	// tests.
	LastStream *Stream

	mu       sync.Mutex
	status   int
	errMsg   string
	failMsg  string
	failNext bool

	chans       map[chanKey]*chanState
	clockSource string
	timeSource  string
	hwTime      map[string]int64
	settings    map[string]string
}

// NewDevice returns a simulated device with one Rx and one Tx channel and
// generic defaults.
func NewDevice() *Device {
	d := &Device{
		Driver:       "test",
		Hardware:     "haltest0",
		RxChannels:   1,
		TxChannels:   1,
		AntennaNames: []string{"RX", "TX"},
		GainNames:    []string{"LNA", "PGA"},
		FreqRanges:   []hal.Range{{Minimum: 70e6, Maximum: 6e9}},
		RateRanges:   []hal.Range{{Minimum: 1e5, Maximum: 61.44e6}},
		BWRanges:     []hal.Range{{Minimum: 2e5, Maximum: 56e6}},
		GainSpan:     hal.Range{Minimum: 0, Maximum: 73, Step: 1},
		Formats:      []string{"CF32", "CS16", "CS8"},
		NativeFmt:    "CS16",
		FullScale:    32768,
		ClockSources: []string{"internal", "external"},
		TimeSources:  []string{"internal"},
		StreamMTU:    1024,
	}
	d.ID.Set("serial", "00000000")
	d.Info.Set("origin", "haltest")
	return d
}

// FailNext makes the next property call on the handle record a failure
// with the given message.
func (d *Device) FailNext(message string) {
	d.mu.Lock()
	d.failNext = true
	d.failMsg = message
	d.mu.Unlock()
}

// call records the status of one property call, consuming a pending
// injected failure.
func (d *Device) call() bool {
	if d.failNext {
		d.failNext = false
		d.status = 1
		d.errMsg = d.failMsg
		return false
	}
	d.status = 0
	return true
}

func (d *Device) state(dir hal.Direction, ch int) *chanState {
	key := chanKey{dir, ch}
	if d.chans == nil {
		d.chans = make(map[chanKey]*chanState)
	}
	s, ok := d.chans[key]
	if !ok {
		s = &chanState{
			frequency: 100e6,
			rate:      1e6,
			bandwidth: 1e6,
			gains:     make(map[string]float64),
			comps:     make(map[string]float64),
		}
		if len(d.AntennaNames) > 0 {
			s.antenna = d.AntennaNames[0]
		}
		d.chans[key] = s
	}
	return s
}

func (d *Device) LastStatus() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Device) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

func (d *Device) Unmake() {
	d.mu.Lock()
	d.Unmakes++
	d.mu.Unlock()
}

func (d *Device) DriverKey() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.Driver
}

func (d *Device) HardwareKey() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.Hardware
}

func (d *Device) HardwareInfo() hal.Kwargs {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.call() {
		return hal.Kwargs{}
	}
	return d.Info.Clone()
}

func (d *Device) FrontendMapping(dir hal.Direction) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return ""
}

func (d *Device) SetFrontendMapping(dir hal.Direction, mapping string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
}

func (d *Device) NumChannels(dir hal.Direction) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	if dir == hal.Tx {
		return d.TxChannels
	}
	return d.RxChannels
}

func (d *Device) ChannelInfo(dir hal.Direction, ch int) hal.Kwargs {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	var kw hal.Kwargs
	kw.Set("channel", fmt.Sprintf("%s%d", dir, ch))
	return kw
}

func (d *Device) FullDuplex(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.RxChannels > 0 && d.TxChannels > 0
}

func (d *Device) StreamFormats(dir hal.Direction, ch int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]string(nil), d.Formats...)
}

func (d *Device) NativeStreamFormat(dir hal.Direction, ch int) (string, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.NativeFmt, d.FullScale
}

func (d *Device) StreamArgsInfo(dir hal.Direction, ch int) []hal.ArgInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.ArgInfo(nil), d.StreamArgs...)
}

func (d *Device) Antennas(dir hal.Direction, ch int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]string(nil), d.AntennaNames...)
}

func (d *Device) SetAntenna(dir hal.Direction, ch int, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.call() {
		return
	}
	for _, a := range d.AntennaNames {
		if a == name {
			d.state(dir, ch).antenna = name
			return
		}
	}
	d.status = 1
	d.errMsg = "unknown antenna " + name
}

func (d *Device) Antenna(dir hal.Direction, ch int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).antenna
}

func (d *Device) HasDCOffsetMode(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return true
}

func (d *Device) SetDCOffsetMode(dir hal.Direction, ch int, automatic bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).dcMode = automatic
	}
}

func (d *Device) DCOffsetMode(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).dcMode
}

func (d *Device) HasDCOffset(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return true
}

func (d *Device) SetDCOffset(dir hal.Direction, ch int, i, q float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		s := d.state(dir, ch)
		s.dcI, s.dcQ = i, q
	}
}

func (d *Device) DCOffset(dir hal.Direction, ch int) (float64, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	s := d.state(dir, ch)
	return s.dcI, s.dcQ
}

func (d *Device) HasIQBalance(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return true
}

func (d *Device) SetIQBalance(dir hal.Direction, ch int, i, q float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		s := d.state(dir, ch)
		s.iqI, s.iqQ = i, q
	}
}

func (d *Device) IQBalance(dir hal.Direction, ch int) (float64, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	s := d.state(dir, ch)
	return s.iqI, s.iqQ
}

func (d *Device) ListGains(dir hal.Direction, ch int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]string(nil), d.GainNames...)
}

func (d *Device) HasGainMode(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return true
}

func (d *Device) SetGainMode(dir hal.Direction, ch int, automatic bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).gainMode = automatic
	}
}

func (d *Device) GainMode(dir hal.Direction, ch int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).gainMode
}

func (d *Device) SetGain(dir hal.Direction, ch int, gain float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).gain = gain
	}
}

func (d *Device) Gain(dir hal.Direction, ch int) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).gain
}

func (d *Device) GainRange(dir hal.Direction, ch int) hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.GainSpan
}

func (d *Device) SetGainElement(dir hal.Direction, ch int, name string, gain float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).gains[name] = gain
	}
}

func (d *Device) GainElement(dir hal.Direction, ch int, name string) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).gains[name]
}

func (d *Device) GainElementRange(dir hal.Direction, ch int, name string) hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.GainSpan
}

func (d *Device) FrequencyRange(dir hal.Direction, ch int) []hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.Range(nil), d.FreqRanges...)
}

func (d *Device) Frequency(dir hal.Direction, ch int) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).frequency
}

func (d *Device) SetFrequency(dir hal.Direction, ch int, frequency float64, args hal.Kwargs) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).frequency = frequency
	}
}

func (d *Device) ListFrequencies(dir hal.Direction, ch int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return []string{"RF", "BB"}
}

func (d *Device) FrequencyRangeComponent(dir hal.Direction, ch int, name string) []hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.Range(nil), d.FreqRanges...)
}

func (d *Device) FrequencyComponent(dir hal.Direction, ch int, name string) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).comps[name]
}

func (d *Device) SetFrequencyComponent(dir hal.Direction, ch int, name string, frequency float64, args hal.Kwargs) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).comps[name] = frequency
	}
}

func (d *Device) FrequencyArgsInfo(dir hal.Direction, ch int) []hal.ArgInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return []hal.ArgInfo{{
		Key:         "OFFSET",
		Value:       "0",
		Units:       "Hz",
		Type:        hal.ArgInfoFloat,
		Description: "RF tuning offset",
	}}
}

func (d *Device) SampleRate(dir hal.Direction, ch int) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).rate
}

func (d *Device) SetSampleRate(dir hal.Direction, ch int, rate float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).rate = rate
	}
}

func (d *Device) SampleRateRange(dir hal.Direction, ch int) []hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.Range(nil), d.RateRanges...)
}

func (d *Device) Bandwidth(dir hal.Direction, ch int) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.state(dir, ch).bandwidth
}

func (d *Device) SetBandwidth(dir hal.Direction, ch int, bandwidth float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.state(dir, ch).bandwidth = bandwidth
	}
}

func (d *Device) BandwidthRange(dir hal.Direction, ch int) []hal.Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.Range(nil), d.BWRanges...)
}

func (d *Device) ListClockSources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]string(nil), d.ClockSources...)
}

func (d *Device) SetClockSource(source string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.clockSource = source
	}
}

func (d *Device) ClockSource() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	if d.clockSource == "" && len(d.ClockSources) > 0 {
		return d.ClockSources[0]
	}
	return d.clockSource
}

func (d *Device) ListTimeSources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]string(nil), d.TimeSources...)
}

func (d *Device) SetTimeSource(source string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		d.timeSource = source
	}
}

func (d *Device) TimeSource() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	if d.timeSource == "" && len(d.TimeSources) > 0 {
		return d.TimeSources[0]
	}
	return d.timeSource
}

func (d *Device) HasHardwareTime(what string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return true
}

func (d *Device) HardwareTime(what string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.hwTime[what]
}

func (d *Device) SetHardwareTime(what string, timeNs int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		if d.hwTime == nil {
			d.hwTime = make(map[string]int64)
		}
		d.hwTime[what] = timeNs
	}
}

func (d *Device) SettingInfo() []hal.ArgInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return append([]hal.ArgInfo(nil), d.SettingDesc...)
}

func (d *Device) ReadSetting(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.call()
	return d.settings[key]
}

func (d *Device) WriteSetting(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call() {
		if d.settings == nil {
			d.settings = make(map[string]string)
		}
		d.settings[key] = value
	}
}

func (d *Device) SetupStream(dir hal.Direction, format string, channels []int, args hal.Kwargs) hal.Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.call() {
		return nil
	}
	size, ok := elementSizes[format]
	if !ok {
		d.status = 1
		d.errMsg = "unsupported stream format " + format
		return nil
	}
	s := &Stream{
		dev:       d,
		dir:       dir,
		format:    format,
		elemSize:  size,
		nchannels: len(channels),
		Generate:  d.GenerateRx,
		rx:        make([][]byte, len(channels)),
		written:   make([][]byte, len(channels)),
	}
	d.LastStream = s
	return s
}

var elementSizes = map[string]int{
	"CF64": 16, "CF32": 8, "CS32": 8, "CU32": 8,
	"CS16": 4, "CU16": 4, "CS8": 2, "CU8": 2,
	"F64": 8, "F32": 4, "S32": 4, "U32": 4,
	"S16": 2, "U16": 2, "S8": 1, "U8": 1,
}
