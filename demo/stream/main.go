// Command stream records samples from a device to a file, or transmits
// samples from a file.
//
// Files hold raw interleaved little-endian 32-bit float I/Q pairs, 8
// bytes per complex sample, no header. With -wav, received samples are
// written as a 16-bit PCM WAV file instead, I and Q as the two channels.
//
// Hardware driver packages must be linked into the binary, usually with
// blank imports. When no driver is registered, a simulated device is
// used.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	soapysdr "github.com/kevinmehall/go-soapysdr"
	"github.com/kevinmehall/go-soapysdr/hal"
	"github.com/kevinmehall/go-soapysdr/hal/haltest"
)

func main() {
	var (
		device    = flag.String("device", "", "device filter arguments, e.g. \"driver=lime\"")
		receive   = flag.String("receive", "", "receive samples into `file`")
		transmit  = flag.String("transmit", "", "transmit samples from `file`")
		channel   = flag.Int("channel", 0, "channel of the device")
		frequency = flag.String("frequency", "", "center frequency in Hz (k/M/G suffixes allowed)")
		rate      = flag.String("rate", "", "sample rate in Hz (k/M/G suffixes allowed)")
		antenna   = flag.String("antenna", "", "antenna name")
		bandwidth = flag.String("bandwidth", "", "baseband filter bandwidth in Hz (k/M/G suffixes allowed)")
		gain      = flag.Float64("gain", math.NaN(), "overall gain in dB")
		count     = flag.Int64("n", 0, "with -receive: number of samples (0 = unlimited); with -transmit: number of times to repeat the file (0 = once)")
		profile   = flag.String("profile", "", "YAML tuning profile `file`")
		wavOut    = flag.Bool("wav", false, "with -receive: write a 16-bit PCM WAV file")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	soapysdr.ConfigureLogging(log)

	if (*receive == "") == (*transmit == "") {
		fatal("specify exactly one of -receive FILE or -transmit FILE")
	}

	if len(hal.Drivers()) == 0 {
		sim := haltest.NewDevice()
		sim.GenerateRx = true
		hal.Register("test", haltest.NewDriver(sim))
	}

	dev, devArgs := openDevice(*device)
	defer dev.Close()
	log.Info("opened device", "args", devArgs.String())

	direction := soapysdr.Rx
	if *transmit != "" {
		direction = soapysdr.Tx
	}

	cfg := settings{
		antenna: *antenna,
		gain:    *gain,
	}
	cfg.frequency = parseOptNum(*frequency, "frequency")
	cfg.rate = parseOptNum(*rate, "sample rate")
	cfg.bandwidth = parseOptNum(*bandwidth, "bandwidth")
	if *profile != "" {
		p, err := loadProfile(*profile)
		if err != nil {
			fatal("loading profile: %v", err)
		}
		cfg = p.merge(cfg)
	}
	if err := cfg.apply(dev, direction, *channel); err != nil {
		fatal("configuring device: %v", err)
	}

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)

	switch direction {
	case soapysdr.Rx:
		runReceive(dev, *channel, *receive, *count, *wavOut, interrupted)
	case soapysdr.Tx:
		repeat := *count
		if repeat < 1 {
			repeat = 1
		}
		runTransmit(dev, *channel, *transmit, repeat, interrupted)
	}
	fmt.Fprintln(os.Stderr, "exiting")
}

func openDevice(filter string) (*soapysdr.Device, soapysdr.Args) {
	devices, err := soapysdr.Enumerate(soapysdr.ParseArgs(filter))
	if err != nil {
		fatal("error listing devices: %v", err)
	}
	switch len(devices) {
	case 0:
		fatal("no matching devices found")
	case 1:
	default:
		fmt.Fprintf(os.Stderr, "%d devices found. Try one of:\n", len(devices))
		for _, d := range devices {
			fmt.Fprintf(os.Stderr, "\t-device '%s'\n", d)
		}
		os.Exit(1)
	}
	dev, err := soapysdr.Open(devices[0])
	if err != nil {
		fatal("error opening device: %v", err)
	}
	return dev, devices[0]
}

func runReceive(dev *soapysdr.Device, channel int, fname string, num int64, asWav bool, interrupted <-chan os.Signal) {
	stream, err := soapysdr.NewRxStream[complex64](dev, []int{channel}, soapysdr.Args{})
	if err != nil {
		fatal("failed to open rx stream: %v", err)
	}
	defer stream.Close()

	mtu, err := stream.MTU()
	if err != nil || mtu <= 0 {
		mtu = 8192
	}
	buf := make([]complex64, mtu)

	var sink sampleSink
	if asWav {
		rate, err := dev.SampleRate(soapysdr.Rx, channel)
		if err != nil {
			fatal("reading sample rate: %v", err)
		}
		sink, err = createWavFile(fname, int(rate))
		if err != nil {
			fatal("error opening output file: %v", err)
		}
	} else {
		sink, err = createRawFile(fname)
		if err != nil {
			fatal("error opening output file: %v", err)
		}
	}
	defer sink.Close()

	if err := stream.Activate(nil); err != nil {
		fatal("failed to activate stream: %v", err)
	}
	defer stream.Deactivate(nil)

	if num == 0 {
		num = math.MaxInt64
	}
	for num > 0 {
		select {
		case <-interrupted:
			return
		default:
		}
		readSize := int64(len(buf))
		if num < readSize {
			readSize = num
		}
		n, err := stream.Read([][]complex64{buf[:readSize]}, 1_000_000)
		if err != nil {
			fatal("read failed: %v", err)
		}
		if err := sink.Write(buf[:n]); err != nil {
			fatal("error writing output: %v", err)
		}
		num -= int64(n)
	}
}

func runTransmit(dev *soapysdr.Device, channel int, fname string, repeat int64, interrupted <-chan os.Signal) {
	stream, err := soapysdr.NewTxStream[complex64](dev, []int{channel}, soapysdr.Args{})
	if err != nil {
		fatal("failed to open tx stream: %v", err)
	}
	defer stream.Close()

	mtu, err := stream.MTU()
	if err != nil || mtu <= 0 {
		mtu = 8192
	}
	buf := make([]complex64, mtu)

	if err := stream.Activate(nil); err != nil {
		fatal("failed to activate stream: %v", err)
	}
	defer stream.Deactivate(nil)

	for ; repeat > 0; repeat-- {
		f, err := os.Open(fname)
		if err != nil {
			fatal("error opening input file: %v", err)
		}
		in := bufio.NewReader(f)
		for {
			select {
			case <-interrupted:
				f.Close()
				return
			default:
			}
			n, last, err := readChunk(in, buf)
			if err != nil {
				f.Close()
				fatal("error reading input file: %v", err)
			}
			if n == 0 {
				break
			}
			endBurst := last && repeat == 1
			if err := stream.WriteAll([][]complex64{buf[:n]}, nil, endBurst, 1_000_000); err != nil {
				f.Close()
				fatal("write failed: %v", err)
			}
			if last {
				break
			}
		}
		f.Close()
	}
}

// readChunk fills buf with as many complete complex samples as the reader
// yields, reporting whether the file is exhausted.
func readChunk(r io.Reader, buf []complex64) (n int, last bool, err error) {
	raw := make([]byte, len(buf)*8)
	read, err := io.ReadFull(r, raw)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		last = true
		err = nil
	default:
		return 0, false, err
	}
	n = read / 8
	for i := 0; i < n; i++ {
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		buf[i] = complex(re, im)
	}
	return n, last, nil
}

// parseNum parses a float with an optional k, M, or G suffix.
func parseNum(s string) (float64, error) {
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		s, mult = s[:len(s)-1], 1e3
	case strings.HasSuffix(s, "M"):
		s, mult = s[:len(s)-1], 1e6
	case strings.HasSuffix(s, "G"):
		s, mult = s[:len(s)-1], 1e9
	}
	x, err := strconv.ParseFloat(s, 64)
	return x * mult, err
}

func parseOptNum(s, what string) float64 {
	if s == "" {
		return math.NaN()
	}
	x, err := parseNum(s)
	if err != nil {
		fatal("invalid %s %q", what, s)
	}
	return x
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
