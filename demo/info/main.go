// Command info lists the available SDR devices and prints a summary of
// each channel's properties.
//
// Hardware driver packages must be linked into the binary, usually with
// blank imports. When no driver is registered, a simulated device is used
// so there is something to show.
package main

import (
	"fmt"
	"os"

	soapysdr "github.com/kevinmehall/go-soapysdr"
	"github.com/kevinmehall/go-soapysdr/hal"
	"github.com/kevinmehall/go-soapysdr/hal/haltest"
)

func main() {
	if len(hal.Drivers()) == 0 {
		hal.Register("test", haltest.NewDriver(haltest.NewDevice()))
	}

	var filter soapysdr.Args
	if len(os.Args) > 1 {
		filter = soapysdr.ParseArgs(os.Args[1])
	}

	devices, err := soapysdr.Enumerate(filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error listing devices:", err)
		os.Exit(1)
	}

	for _, devArgs := range devices {
		fmt.Println(devArgs)

		dev, err := soapysdr.Open(devArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open device:", err)
			continue
		}

		for _, dir := range []soapysdr.Direction{soapysdr.Rx, soapysdr.Tx} {
			n, err := dev.NumChannels(dir)
			if err != nil {
				continue
			}
			for channel := 0; channel < n; channel++ {
				printChannelInfo(dev, dir, channel)
			}
		}
		dev.Close()
	}
}

func printChannelInfo(dev *soapysdr.Device, dir soapysdr.Direction, channel int) {
	fmt.Printf("\t%s Channel %d\n", dir, channel)

	if ranges, err := dev.FrequencyRange(dir, channel); err == nil && len(ranges) > 0 {
		fmt.Printf("\t\tFreq range: %g to %g MHz\n", ranges[0].Minimum/1e6, ranges[0].Maximum/1e6)
	}

	if ranges, err := dev.SampleRateRange(dir, channel); err == nil {
		fmt.Print("\t\tSample rates:")
		for _, r := range ranges {
			fmt.Printf(" %g-%g", r.Minimum, r.Maximum)
		}
		fmt.Println()
	}

	if antennas, err := dev.Antennas(dir, channel); err == nil {
		fmt.Println("\t\tAntennas:")
		for _, antenna := range antennas {
			fmt.Printf("\t\t\t%s\n", antenna)
		}
	}

	if gains, err := dev.ListGains(dir, channel); err == nil {
		fmt.Println("\t\tGains:")
		for _, gain := range gains {
			fmt.Printf("\t\t\t%s\n", gain)
		}
	}

	if formats, err := dev.StreamFormats(dir, channel); err == nil {
		fmt.Print("\t\tFormats:")
		for _, f := range formats {
			fmt.Printf(" %s", f)
		}
		fmt.Println()
	}
}
