package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavInput holds a validated WAV file and its format.
type wavInput struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
}

// openWAVInput opens and validates a WAV file.
func openWAVInput(path string) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		_ = f.Close()
		return nil, fmt.Errorf("unsupported bit depth %d in %s", bitDepth, path)
	}

	return &wavInput{
		file:     f,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
	}, nil
}

// Close closes the input file.
func (w *wavInput) Close() error {
	return w.file.Close()
}

// readMono decodes the PCM data in blocks of about blockSize frames, mixes
// the channels down to mono in [-1, 1) and passes each block to fn. The
// slice handed to fn is reused between calls.
func (w *wavInput) readMono(blockSize int, fn func(block []float64) error) (int64, error) {
	buf := &audio.IntBuffer{
		Format:         w.decoder.Format(),
		Data:           make([]int, blockSize*w.channels),
		SourceBitDepth: w.bitDepth,
	}
	mix := newDownmixer(w.channels, w.bitDepth)
	mono := make([]float64, 0, blockSize+1)

	var frames int64
	for {
		n, err := w.decoder.PCMBuffer(buf)
		if err != nil {
			return frames, fmt.Errorf("failed to decode PCM data: %w", err)
		}
		if n == 0 {
			return frames, nil
		}

		mono = mix.append(mono[:0], buf.Data[:n])
		frames += int64(len(mono))
		if len(mono) == 0 {
			continue
		}
		if err := fn(mono); err != nil {
			return frames, err
		}
	}
}

// downmixer averages interleaved integer samples into mono floats. It keeps
// a partial frame between calls so reads need not end on a frame boundary.
type downmixer struct {
	channels int
	offset   float64
	scale    float64
	ch       int
	acc      float64
}

func newDownmixer(channels, bitDepth int) *downmixer {
	d := &downmixer{
		channels: channels,
		scale:    1 / float64(int64(1)<<(bitDepth-1)) / float64(channels),
	}
	if bitDepth == 8 {
		// 8-bit PCM is unsigned.
		d.offset = 128
	}
	return d
}

func (d *downmixer) append(dst []float64, data []int) []float64 {
	for _, v := range data {
		d.acc += float64(v) - d.offset
		d.ch++
		if d.ch == d.channels {
			dst = append(dst, d.acc*d.scale)
			d.acc = 0
			d.ch = 0
		}
	}
	return dst
}
