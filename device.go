// Package soapysdr provides a typed, memory-safe access layer over a
// handle-based hardware-abstraction API for software-defined-radio
// devices.
//
// Applications discover devices with Enumerate, open them with Open,
// configure per-channel radio parameters through Device accessors, and
// exchange sample buffers through RxStream and TxStream sessions. Device
// drivers implement the interfaces of the hal subpackage and register
// themselves with hal.Register; they are linked into the application,
// typically with a blank import.
//
// All operations are synchronous and block the calling thread. A Device
// may be shared freely between goroutines; a stream must only be used by
// one goroutine at a time.
package soapysdr

import (
	"sync"
	"sync/atomic"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// Direction selects the transmit or receive path of a channel.
type Direction = hal.Direction

const (
	// Rx is the receive direction.
	Rx = hal.Rx
	// Tx is the transmit direction.
	Tx = hal.Tx
)

// Range describes the bounds of a numeric device property. A Step of zero
// means the range is continuous.
type Range = hal.Range

// Enumerate lists the available devices whose properties satisfy the
// filter arguments. Each result identifies one device and can be passed
// to Open. An empty result is success, not an error.
func Enumerate(filter Args) ([]Args, error) {
	found, err := hal.Enumerate(filter.kwargs())
	if err != nil {
		return nil, &Error{Code: Other, Message: err.Error()}
	}
	results := make([]Args, len(found))
	for i, kw := range found {
		results[i] = argsFromKwargs(kw)
	}
	return results, nil
}

// An opened SDR hardware device.
//
// The device handle is shared between the Device and every stream opened
// from it; it is released when the last holder is closed. A Device is safe
// for concurrent use from multiple goroutines.
type Device struct {
	d *dev
}

// dev owns the native handle. Each Device and stream holds one counted
// reference.
type dev struct {
	h    hal.Device
	mu   sync.Mutex
	refs atomic.Int32
}

func (d *dev) ref() {
	d.refs.Add(1)
}

func (d *dev) unref() {
	if d.refs.Add(-1) == 0 {
		d.h.Unmake()
	}
}

// do performs one native call and immediately checks the handle's status
// pair, holding the device mutex so no other call can interleave between
// the call and its check.
func (d *dev) do(f func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f()
	if d.h.LastStatus() != 0 {
		return &Error{Code: Other, Message: d.h.LastError()}
	}
	return nil
}

// doCode performs a native call returning a status code.
func (d *dev) doCode(f func() int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code := f(); code != 0 {
		return &Error{Code: codeFromHAL(code), Message: d.h.LastError()}
	}
	return nil
}

// doLen performs a native call returning an element count, where a
// negative result is an error code.
func (d *dev) doLen(f func() int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := f()
	if n < 0 {
		return 0, &Error{Code: codeFromHAL(n), Message: d.h.LastError()}
	}
	return n, nil
}

// Open finds and opens a device matching the given arguments.
func Open(args Args) (*Device, error) {
	h, err := hal.Make(args.kwargs())
	if err != nil {
		return nil, &Error{Code: Other, Message: err.Error()}
	}
	d := &dev{h: h}
	d.ref()
	return &Device{d: d}, nil
}

// Close releases the Device's reference on the hardware handle. The
// handle itself is released once every stream opened from this device is
// closed as well. Calling methods on a closed Device may panic.
func (d *Device) Close() error {
	dd := d.d
	d.d = nil
	dd.unref()
	return nil
}

// DriverKey returns a key that uniquely identifies the device driver.
// Several variants of a product may share a driver.
func (d *Device) DriverKey() (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.DriverKey() })
	return s, err
}

// HardwareKey returns a key that uniquely identifies the hardware.
// This key should be meaningful to the user to optimize for the
// underlying hardware.
func (d *Device) HardwareKey() (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.HardwareKey() })
	return s, err
}

// HardwareInfo queries a dictionary of device information: vendor name,
// product name, revisions, serials. It can be displayed to the user to
// help identify the instantiated device.
func (d *Device) HardwareInfo() (Args, error) {
	var kw hal.Kwargs
	err := d.d.do(func() { kw = d.d.h.HardwareInfo() })
	return argsFromKwargs(kw), err
}

// FrontendMapping returns the mapping configuration string.
func (d *Device) FrontendMapping(direction Direction) (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.FrontendMapping(direction) })
	return s, err
}

// SetFrontendMapping sets the frontend mapping of available DSP units to
// RF frontends. This controls channel mapping and channel availability.
func (d *Device) SetFrontendMapping(direction Direction, mapping string) error {
	mustNotContainNUL(mapping, "mapping")
	return d.d.do(func() { d.d.h.SetFrontendMapping(direction, mapping) })
}

// NumChannels returns the number of channels for the given direction.
func (d *Device) NumChannels(direction Direction) (int, error) {
	var n int
	err := d.d.do(func() { n = d.d.h.NumChannels(direction) })
	return n, err
}

// ChannelInfo returns channel metadata for the given direction.
func (d *Device) ChannelInfo(direction Direction, channel int) (Args, error) {
	var kw hal.Kwargs
	err := d.d.do(func() { kw = d.d.h.ChannelInfo(direction, channel) })
	return argsFromKwargs(kw), err
}

// FullDuplex reports whether the specified channel is full duplex.
func (d *Device) FullDuplex(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.FullDuplex(direction, channel) })
	return b, err
}

// StreamFormats queries the available stream formats of a channel.
func (d *Device) StreamFormats(direction Direction, channel int) ([]Format, error) {
	var names []string
	if err := d.d.do(func() { names = d.d.h.StreamFormats(direction, channel) }); err != nil {
		return nil, err
	}
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			// A format this binding does not know is not an error; the
			// channel simply offers more than we can represent.
			continue
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// NativeStreamFormat returns the hardware's native stream format and
// full-scale value for a channel. This is the format used by the
// underlying transport layer.
func (d *Device) NativeStreamFormat(direction Direction, channel int) (Format, float64, error) {
	var (
		name      string
		fullScale float64
	)
	if err := d.d.do(func() { name, fullScale = d.d.h.NativeStreamFormat(direction, channel) }); err != nil {
		return 0, 0, err
	}
	f, err := ParseFormat(name)
	if err != nil {
		return 0, 0, &Error{Code: Other, Message: err.Error()}
	}
	return f, fullScale, nil
}

// StreamArgsInfo queries the argument descriptions for stream args.
func (d *Device) StreamArgsInfo(direction Direction, channel int) ([]ArgInfo, error) {
	var recs []hal.ArgInfo
	err := d.d.do(func() { recs = d.d.h.StreamArgsInfo(direction, channel) })
	if err != nil {
		return nil, err
	}
	return argInfoListFromHAL(recs), nil
}

// Antennas lists the available antennas on a channel, in order RF to
// baseband.
func (d *Device) Antennas(direction Direction, channel int) ([]string, error) {
	var names []string
	err := d.d.do(func() { names = d.d.h.Antennas(direction, channel) })
	return names, err
}

// SetAntenna selects an antenna on a channel.
func (d *Device) SetAntenna(direction Direction, channel int, name string) error {
	mustNotContainNUL(name, "antenna name")
	return d.d.do(func() { d.d.h.SetAntenna(direction, channel, name) })
}

// Antenna returns the selected antenna on a channel.
func (d *Device) Antenna(direction Direction, channel int) (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.Antenna(direction, channel) })
	return s, err
}

// HasDCOffsetMode reports whether the device supports automatic DC offset
// corrections.
func (d *Device) HasDCOffsetMode(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.HasDCOffsetMode(direction, channel) })
	return b, err
}

// SetDCOffsetMode enables or disables automatic DC offset corrections.
func (d *Device) SetDCOffsetMode(direction Direction, channel int, automatic bool) error {
	return d.d.do(func() { d.d.h.SetDCOffsetMode(direction, channel, automatic) })
}

// DCOffsetMode reports whether automatic DC offset mode is enabled.
func (d *Device) DCOffsetMode(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.DCOffsetMode(direction, channel) })
	return b, err
}

// HasDCOffset reports whether the device supports manual frontend DC
// offset correction.
func (d *Device) HasDCOffset(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.HasDCOffset(direction, channel) })
	return b, err
}

// SetDCOffset sets the frontend DC offset correction for the I and Q
// components (1.0 max).
func (d *Device) SetDCOffset(direction Direction, channel int, offsetI, offsetQ float64) error {
	return d.d.do(func() { d.d.h.SetDCOffset(direction, channel, offsetI, offsetQ) })
}

// DCOffset returns the frontend DC offset correction for (I, Q), 1.0 max.
func (d *Device) DCOffset(direction Direction, channel int) (offsetI, offsetQ float64, err error) {
	err = d.d.do(func() { offsetI, offsetQ = d.d.h.DCOffset(direction, channel) })
	return
}

// HasIQBalance reports whether the device supports frontend IQ balance
// correction.
func (d *Device) HasIQBalance(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.HasIQBalance(direction, channel) })
	return b, err
}

// SetIQBalance sets the frontend IQ balance correction for the I and Q
// components (1.0 max).
func (d *Device) SetIQBalance(direction Direction, channel int, balanceI, balanceQ float64) error {
	return d.d.do(func() { d.d.h.SetIQBalance(direction, channel, balanceI, balanceQ) })
}

// IQBalance returns the frontend IQ balance correction for (I, Q).
func (d *Device) IQBalance(direction Direction, channel int) (balanceI, balanceQ float64, err error) {
	err = d.d.do(func() { balanceI, balanceQ = d.d.h.IQBalance(direction, channel) })
	return
}

// ListGains lists the available amplification elements, in order RF to
// baseband.
func (d *Device) ListGains(direction Direction, channel int) ([]string, error) {
	var names []string
	err := d.d.do(func() { names = d.d.h.ListGains(direction, channel) })
	return names, err
}

// HasGainMode reports whether the device supports automatic gain control.
func (d *Device) HasGainMode(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.HasGainMode(direction, channel) })
	return b, err
}

// SetGainMode enables or disables automatic gain control.
func (d *Device) SetGainMode(direction Direction, channel int, automatic bool) error {
	return d.d.do(func() { d.d.h.SetGainMode(direction, channel, automatic) })
}

// GainMode reports whether automatic gain control is enabled.
func (d *Device) GainMode(direction Direction, channel int) (bool, error) {
	var b bool
	err := d.d.do(func() { b = d.d.h.GainMode(direction, channel) })
	return b, err
}

// SetGain sets the overall amplification of a chain in dB. The gain is
// distributed automatically across available elements.
func (d *Device) SetGain(direction Direction, channel int, gain float64) error {
	return d.d.do(func() { d.d.h.SetGain(direction, channel, gain) })
}

// Gain returns the overall value of the gain elements in a chain in dB.
func (d *Device) Gain(direction Direction, channel int) (float64, error) {
	var g float64
	err := d.d.do(func() { g = d.d.h.Gain(direction, channel) })
	return g, err
}

// GainRange returns the overall range of possible gain values.
func (d *Device) GainRange(direction Direction, channel int) (Range, error) {
	var r Range
	err := d.d.do(func() { r = d.d.h.GainRange(direction, channel) })
	return r, err
}

// SetGainElement sets the value of an amplification element in a chain.
// name identifies an element from ListGains; gain is in dB.
func (d *Device) SetGainElement(direction Direction, channel int, name string, gain float64) error {
	mustNotContainNUL(name, "gain name")
	return d.d.do(func() { d.d.h.SetGainElement(direction, channel, name, gain) })
}

// GainElement returns the value of an individual amplification element in
// dB.
func (d *Device) GainElement(direction Direction, channel int, name string) (float64, error) {
	mustNotContainNUL(name, "gain name")
	var g float64
	err := d.d.do(func() { g = d.d.h.GainElement(direction, channel, name) })
	return g, err
}

// GainElementRange returns the range of possible gain values for a
// specific element.
func (d *Device) GainElementRange(direction Direction, channel int, name string) (Range, error) {
	mustNotContainNUL(name, "gain name")
	var r Range
	err := d.d.do(func() { r = d.d.h.GainElementRange(direction, channel, name) })
	return r, err
}

// FrequencyRange returns the ranges of overall frequency values.
func (d *Device) FrequencyRange(direction Direction, channel int) ([]Range, error) {
	var rs []Range
	err := d.d.do(func() { rs = d.d.h.FrequencyRange(direction, channel) })
	return rs, err
}

// Frequency returns the overall center frequency of the chain in Hz. For
// Rx this is the down-conversion frequency, for Tx the up-conversion
// frequency.
func (d *Device) Frequency(direction Direction, channel int) (float64, error) {
	var f float64
	err := d.d.do(func() { f = d.d.h.Frequency(direction, channel) })
	return f, err
}

// SetFrequency sets the center frequency of the chain in Hz.
//
// The default tuning algorithm tunes the "RF" component as close as
// possible to the requested frequency and compensates with the "BB"
// component. args can augment the algorithm:
//
//   - "OFFSET" specifies an RF tuning offset, usually to move the LO out
//     of the passband; it is compensated with the BB component.
//   - A component name with a frequency value enforces that frequency for
//     the component, with the others tuned to compensate.
//   - A component name with the value "IGNORE" keeps the tuning algorithm
//     from altering that component.
func (d *Device) SetFrequency(direction Direction, channel int, frequency float64, args Args) error {
	return d.d.do(func() { d.d.h.SetFrequency(direction, channel, frequency, args.kwargs()) })
}

// ListFrequencies lists the available tunable elements in the chain, in
// order RF to baseband.
func (d *Device) ListFrequencies(direction Direction, channel int) ([]string, error) {
	var names []string
	err := d.d.do(func() { names = d.d.h.ListFrequencies(direction, channel) })
	return names, err
}

// ComponentFrequencyRange returns the range of tunable values for a
// specific element.
func (d *Device) ComponentFrequencyRange(direction Direction, channel int, name string) ([]Range, error) {
	mustNotContainNUL(name, "component name")
	var rs []Range
	err := d.d.do(func() { rs = d.d.h.FrequencyRangeComponent(direction, channel, name) })
	return rs, err
}

// ComponentFrequency returns the frequency of a tunable element in the
// chain.
func (d *Device) ComponentFrequency(direction Direction, channel int, name string) (float64, error) {
	mustNotContainNUL(name, "component name")
	var f float64
	err := d.d.do(func() { f = d.d.h.FrequencyComponent(direction, channel, name) })
	return f, err
}

// SetComponentFrequency tunes the center frequency of a specific element.
// Recommended component names are "CORR" (frequency error correction in
// PPM), "RF" (RF frontend), and "BB" (baseband DSP).
func (d *Device) SetComponentFrequency(direction Direction, channel int, name string, frequency float64, args Args) error {
	mustNotContainNUL(name, "component name")
	return d.d.do(func() { d.d.h.SetFrequencyComponent(direction, channel, name, frequency, args.kwargs()) })
}

// FrequencyArgsInfo queries the argument descriptions for tune args.
func (d *Device) FrequencyArgsInfo(direction Direction, channel int) ([]ArgInfo, error) {
	var recs []hal.ArgInfo
	err := d.d.do(func() { recs = d.d.h.FrequencyArgsInfo(direction, channel) })
	if err != nil {
		return nil, err
	}
	return argInfoListFromHAL(recs), nil
}

// SampleRate returns the baseband sample rate of the chain in samples per
// second.
func (d *Device) SampleRate(direction Direction, channel int) (float64, error) {
	var r float64
	err := d.d.do(func() { r = d.d.h.SampleRate(direction, channel) })
	return r, err
}

// SetSampleRate sets the baseband sample rate of the chain in samples per
// second.
func (d *Device) SetSampleRate(direction Direction, channel int, rate float64) error {
	return d.d.do(func() { d.d.h.SetSampleRate(direction, channel, rate) })
}

// SampleRateRange returns the ranges of possible baseband sample rates.
func (d *Device) SampleRateRange(direction Direction, channel int) ([]Range, error) {
	var rs []Range
	err := d.d.do(func() { rs = d.d.h.SampleRateRange(direction, channel) })
	return rs, err
}

// Bandwidth returns the baseband filter width of the chain in Hz.
func (d *Device) Bandwidth(direction Direction, channel int) (float64, error) {
	var bw float64
	err := d.d.do(func() { bw = d.d.h.Bandwidth(direction, channel) })
	return bw, err
}

// SetBandwidth sets the baseband filter width of the chain in Hz.
func (d *Device) SetBandwidth(direction Direction, channel int, bandwidth float64) error {
	return d.d.do(func() { d.d.h.SetBandwidth(direction, channel, bandwidth) })
}

// BandwidthRange returns the ranges of possible baseband filter widths.
func (d *Device) BandwidthRange(direction Direction, channel int) ([]Range, error) {
	var rs []Range
	err := d.d.do(func() { rs = d.d.h.BandwidthRange(direction, channel) })
	return rs, err
}

// ListClockSources lists the available clock sources.
func (d *Device) ListClockSources() ([]string, error) {
	var names []string
	err := d.d.do(func() { names = d.d.h.ListClockSources() })
	return names, err
}

// SetClockSource selects the clock source.
func (d *Device) SetClockSource(source string) error {
	mustNotContainNUL(source, "clock source")
	return d.d.do(func() { d.d.h.SetClockSource(source) })
}

// ClockSource returns the selected clock source.
func (d *Device) ClockSource() (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.ClockSource() })
	return s, err
}

// ListTimeSources lists the available time sources.
func (d *Device) ListTimeSources() ([]string, error) {
	var names []string
	err := d.d.do(func() { names = d.d.h.ListTimeSources() })
	return names, err
}

// SetTimeSource selects the time source.
func (d *Device) SetTimeSource(source string) error {
	mustNotContainNUL(source, "time source")
	return d.d.do(func() { d.d.h.SetTimeSource(source) })
}

// TimeSource returns the selected time source.
func (d *Device) TimeSource() (string, error) {
	var s string
	err := d.d.do(func() { s = d.d.h.TimeSource() })
	return s, err
}

// HasHardwareTime reports whether the device has a hardware clock. what
// optionally names a specific time source; empty selects the default.
func (d *Device) HasHardwareTime(what string) (bool, error) {
	mustNotContainNUL(what, "time source")
	var b bool
	err := d.d.do(func() { b = d.d.h.HasHardwareTime(what) })
	return b, err
}

// HardwareTime reads the hardware time in nanoseconds.
func (d *Device) HardwareTime(what string) (int64, error) {
	mustNotContainNUL(what, "time source")
	var t int64
	err := d.d.do(func() { t = d.d.h.HardwareTime(what) })
	return t, err
}

// SetHardwareTime writes the hardware time in nanoseconds.
func (d *Device) SetHardwareTime(what string, timeNs int64) error {
	mustNotContainNUL(what, "time source")
	return d.d.do(func() { d.d.h.SetHardwareTime(what, timeNs) })
}

// SettingInfo describes the available opaque settings.
func (d *Device) SettingInfo() ([]ArgInfo, error) {
	var recs []hal.ArgInfo
	err := d.d.do(func() { recs = d.d.h.SettingInfo() })
	if err != nil {
		return nil, err
	}
	return argInfoListFromHAL(recs), nil
}

// ReadSetting reads an arbitrary setting.
func (d *Device) ReadSetting(key string) (string, error) {
	mustNotContainNUL(key, "setting key")
	var s string
	err := d.d.do(func() { s = d.d.h.ReadSetting(key) })
	return s, err
}

// WriteSetting writes an arbitrary setting.
func (d *Device) WriteSetting(key, value string) error {
	mustNotContainNUL(key, "setting key")
	mustNotContainNUL(value, "setting value")
	return d.d.do(func() { d.d.h.WriteSetting(key, value) })
}

// mustNotContainNUL panics when a caller passes a string that cannot be
// represented in the native call.
func mustNotContainNUL(s, what string) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			panic("soapysdr: " + what + " contains NUL byte")
		}
	}
}
