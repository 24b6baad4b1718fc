package main

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// sampleSink writes received complex samples to a file in some encoding.
type sampleSink interface {
	Write(samples []complex64) error
	Close() error
}

// rawFile writes interleaved little-endian float32 I/Q pairs.
type rawFile struct {
	f *os.File
	w *bufio.Writer
}

func createRawFile(fname string) (*rawFile, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	return &rawFile{f: f, w: bufio.NewWriter(f)}, nil
}

func (r *rawFile) Write(samples []complex64) error {
	var scratch [8]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint32(scratch[0:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(scratch[4:], math.Float32bits(imag(s)))
		if _, err := r.w.Write(scratch[:]); err != nil {
			return err
		}
	}
	return nil
}

func (r *rawFile) Close() error {
	if err := r.w.Flush(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// wavFile writes a two-channel 16-bit PCM WAV file, I on the left
// channel and Q on the right. Samples are assumed to be in the -1..1
// range and are clipped otherwise.
type wavFile struct {
	f   *os.File
	enc *wav.Encoder
}

func createWavFile(fname string, sampleRate int) (*wavFile, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	return &wavFile{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, 16, 2, 1),
	}, nil
}

func (w *wavFile) Write(samples []complex64) error {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: w.enc.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, 2*len(samples)),
	}
	for i, s := range samples {
		buf.Data[2*i] = pcm16(real(s))
		buf.Data[2*i+1] = pcm16(imag(s))
	}
	return w.enc.Write(buf)
}

func (w *wavFile) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

func pcm16(x float32) int {
	v := int(x * 32767)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
