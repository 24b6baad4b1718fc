package main

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	soapysdr "github.com/kevinmehall/go-soapysdr"
)

// settings collects the tunable parameters applied to a channel before
// streaming. NaN and empty string mean "leave at device default".
type settings struct {
	frequency float64
	rate      float64
	bandwidth float64
	gain      float64
	antenna   string
	args      soapysdr.Args
}

// profile is the YAML form of settings, for reusable tuning files:
//
//	frequency: 97.3e6
//	sample_rate: 2e6
//	gain: 30
//	antenna: LNAW
//	args:
//	  latency: low
type profile struct {
	Frequency  *float64          `yaml:"frequency"`
	SampleRate *float64          `yaml:"sample_rate"`
	Bandwidth  *float64          `yaml:"bandwidth"`
	Gain       *float64          `yaml:"gain"`
	Antenna    string            `yaml:"antenna"`
	Args       map[string]string `yaml:"args"`
}

func loadProfile(fname string) (*profile, error) {
	raw, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var p profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fname, err)
	}
	return &p, nil
}

// merge overlays the profile under the command line settings. Flags win
// over profile values.
func (p *profile) merge(cli settings) settings {
	out := cli
	if math.IsNaN(out.frequency) && p.Frequency != nil {
		out.frequency = *p.Frequency
	}
	if math.IsNaN(out.rate) && p.SampleRate != nil {
		out.rate = *p.SampleRate
	}
	if math.IsNaN(out.bandwidth) && p.Bandwidth != nil {
		out.bandwidth = *p.Bandwidth
	}
	if math.IsNaN(out.gain) && p.Gain != nil {
		out.gain = *p.Gain
	}
	if out.antenna == "" {
		out.antenna = p.Antenna
	}
	if len(p.Args) > 0 {
		out.args = soapysdr.ArgsFromMap(p.Args)
	}
	return out
}

func (s settings) apply(dev *soapysdr.Device, dir soapysdr.Direction, channel int) error {
	if s.antenna != "" {
		if err := dev.SetAntenna(dir, channel, s.antenna); err != nil {
			return fmt.Errorf("setting antenna: %w", err)
		}
	}
	if !math.IsNaN(s.frequency) {
		if err := dev.SetFrequency(dir, channel, s.frequency, s.args); err != nil {
			return fmt.Errorf("setting frequency: %w", err)
		}
	}
	if !math.IsNaN(s.rate) {
		if err := dev.SetSampleRate(dir, channel, s.rate); err != nil {
			return fmt.Errorf("setting sample rate: %w", err)
		}
	}
	if !math.IsNaN(s.bandwidth) {
		if err := dev.SetBandwidth(dir, channel, s.bandwidth); err != nil {
			return fmt.Errorf("setting bandwidth: %w", err)
		}
	}
	if !math.IsNaN(s.gain) {
		if err := dev.SetGain(dir, channel, s.gain); err != nil {
			return fmt.Errorf("setting gain: %w", err)
		}
	}
	return nil
}
