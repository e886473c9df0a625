package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

const wavFormatPCM = 1

// writeTestWAV writes interleaved integer samples to a PCM WAV file in a
// temporary directory and returns its path.
func writeTestWAV(t *testing.T, rate, bitDepth, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM)
	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

// clickTrain returns mono 16-bit samples with a burst of one hop every
// period samples.
func clickTrain(length, period, hop int) []int {
	data := make([]int, length)
	for start := 0; start < length; start += period {
		for i := start; i < start+hop && i < length; i++ {
			data[i] = 24000
		}
	}
	return data
}
